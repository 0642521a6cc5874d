package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/pkg/export"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <log|->",
		Short: "Convert a result log to CSV, JSON or YAML",
		Long: `Convert a result log to another format. CSV rows are "n,=form,form" so a
spreadsheet evaluates the second column to Un.

Examples:
  mindiv export Un.txt -f csv -o Un.csv
  mindiv export - -f json < Un.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], format, output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV,
		"export format: "+strings.Join(export.Formats(), ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, input, format, output string) error {
	if !export.IsFormat(format) {
		return fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
	}

	records, err := readLog(cmd, input)
	if err != nil {
		return err
	}

	w, closeFn, err := createOutput(cmd, output)
	if err != nil {
		return err
	}

	err = export.Write(w, format, records)

	return errors.Join(err, closeFn())
}
