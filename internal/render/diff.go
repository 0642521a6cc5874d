package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineDiff diffs two texts line by line.
func LineDiff(a, b string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()

	charsA, charsB, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffMain(charsA, charsB, false)

	return dmp.DiffCharsToLines(diffs, lines)
}

// Diff writes diffs in unified style with removed lines in red and added
// lines in green. Equal lines are omitted unless withContext is set. It returns
// the number of changed lines.
func Diff(w io.Writer, diffs []diffmatchpatch.Diff, withContext bool) (int, error) {
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	changed := 0

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			var err error

			switch d.Type {
			case diffmatchpatch.DiffDelete:
				changed++
				_, err = removed.Fprintf(w, "- %s\n", line)
			case diffmatchpatch.DiffInsert:
				changed++
				_, err = added.Fprintf(w, "+ %s\n", line)
			case diffmatchpatch.DiffEqual:
				if withContext {
					_, err = fmt.Fprintf(w, "  %s\n", line)
				}
			}

			if err != nil {
				return changed, fmt.Errorf("write diff: %w", err)
			}
		}
	}

	return changed, nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}

	return strings.Split(s, "\n")
}
