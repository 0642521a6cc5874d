package resultlog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single record line; very large n produce long forms.
const maxLineSize = 1 << 20

// Read parses every non-blank line of r.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	var records []Record

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read result log: %w", err)
	}

	return records, nil
}

// Last returns the highest n in records, or 0 when empty.
func Last(records []Record) int {
	last := 0
	for _, rec := range records {
		last = max(last, rec.N)
	}

	return last
}
