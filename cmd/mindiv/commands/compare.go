package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/mindiv/internal/render"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
)

// ErrLogsDiffer is returned by compare when the logs disagree.
var ErrLogsDiffer = errors.New("result logs differ")

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	var withContext bool

	cmd := &cobra.Command{
		Use:   "compare <log-a> <log-b>",
		Short: "Diff two result logs",
		Long: `Compare two result logs line by line, ignoring timestamps. Lines only in
the first log are printed with "-", lines only in the second with "+".
The command fails when the logs differ.

Examples:
  mindiv compare Un.txt reference.txt
  mindiv compare old.txt new.txt --context`,
		Args: cobra.ExactArgs(2), //nolint:mnd // two logs
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args[0], args[1], withContext)
		},
	}

	cmd.Flags().BoolVar(&withContext, "context", false, "also print equal lines")

	return cmd
}

func runCompare(cmd *cobra.Command, pathA, pathB string, withContext bool) error {
	a, err := readLog(cmd, pathA)
	if err != nil {
		return err
	}

	b, err := readLog(cmd, pathB)
	if err != nil {
		return err
	}

	changed, err := render.Diff(cmd.OutOrStdout(), render.LineDiff(normalized(a), normalized(b)), withContext)
	if err != nil {
		return err
	}

	if changed > 0 {
		return fmt.Errorf("%w: %d line(s)", ErrLogsDiffer, changed)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d records identical\n", len(a))

	return nil
}

// normalized renders records without timestamps.
func normalized(records []resultlog.Record) string {
	var b strings.Builder

	for _, rec := range records {
		rec.Time = time.Time{}
		b.WriteString(rec.Line())
		b.WriteByte('\n')
	}

	return b.String()
}
