// Package export converts result records into spreadsheet and data formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// formulaPrefix makes a spreadsheet evaluate the index form as a product.
const formulaPrefix = "="

// ErrUnknownFormat is returned by Write for an unsupported format.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatCSV, FormatJSON, FormatYAML}
}

// IsFormat reports whether name is a supported format.
func IsFormat(name string) bool {
	return slices.Contains(Formats(), name)
}

// Write exports records in the named format.
func Write(w io.Writer, format string, records []resultlog.Record) error {
	switch format {
	case FormatCSV:
		return CSV(w, records)
	case FormatJSON:
		return JSON(w, records)
	case FormatYAML:
		return YAML(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// CSV writes one row per record: n, =form, form. A spreadsheet evaluates the
// second column to Un and keeps the third as text.
func CSV(w io.Writer, records []resultlog.Record) error {
	cw := csv.NewWriter(w)

	for _, rec := range records {
		form := rec.Form()

		if err := cw.Write([]string{strconv.Itoa(rec.N), formulaPrefix + form, form}); err != nil {
			return fmt.Errorf("csv record %d: %w", rec.N, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}

	return nil
}

// JSON writes records as an indented JSON array.
func JSON(w io.Writer, records []resultlog.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if records == nil {
		records = []resultlog.Record{}
	}

	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("json export: %w", err)
	}

	return nil
}

// YAML writes records as a YAML sequence.
func YAML(w io.Writer, records []resultlog.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if records == nil {
		records = []resultlog.Record{}
	}

	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("yaml export: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("yaml export: %w", err)
	}

	return nil
}
