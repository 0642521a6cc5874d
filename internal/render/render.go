// Package render formats results, verifications and run summaries for the terminal.
package render

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/mindiv/pkg/driver"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

// maxValueDigits is the widest Un printed in full; longer values show only their digit count.
const maxValueDigits = 40

// SetColor forces color on or off. Color is otherwise auto-detected.
func SetColor(enabled bool) {
	color.NoColor = !enabled //nolint:reassign // intentional override of library global
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	// "Un" and rule tags read wrong upper-cased.
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

// Value formats Un with thousands separators, or as a digit count when it is too long.
func Value(rec resultlog.Record) string {
	v := rec.Factorization.Value()

	digits := len(v.String())
	if digits > maxValueDigits {
		return fmt.Sprintf("(%s digits)", humanize.Comma(int64(digits)))
	}

	return humanize.BigComma(v)
}

// Results writes one row per record.
func Results(w io.Writer, records []resultlog.Record) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"n", "Un", "factorization", "rule", "partitions"})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, rec := range records {
		partitions := ""
		if rec.Partitions > 0 {
			partitions = strconv.Itoa(rec.Partitions)
		}

		tbl.AppendRow(table.Row{rec.N, Value(rec), rec.Form(), rec.Rule.String(), partitions})
	}

	tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("Total: %d", len(records))})
	tbl.Render()
}

// Verifications writes one row per n with the agreement colored.
func Verifications(w io.Writer, results []sequence.Verification) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"n", "rule", "rule result", "enumeration", "partitions", "brute force", "status"})

	agreed := 0

	for _, v := range results {
		ruleResult := ""
		if v.RuleResult != nil {
			ruleResult = v.RuleResult.String()
		}

		if v.Agree {
			agreed++
		}

		tbl.AppendRow(table.Row{
			v.N, v.Rule.String(), ruleResult, v.Enumeration.String(),
			v.Partitions, humanize.Comma(int64(v.BruteForce)), Status(v.Agree), //nolint:gosec // fits for every n a scan can reach
		})
	}

	tbl.AppendFooter(table.Row{"", "", "", "", "", "agree", fmt.Sprintf("%d/%d", agreed, len(results))})
	tbl.Render()
}

// Status renders a colored pass/fail marker.
func Status(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint("ok")
	}

	return color.New(color.FgRed).Sprint("MISMATCH")
}

// Summary writes a run summary.
func Summary(w io.Writer, s driver.Summary) {
	tbl := newTable(w)
	tbl.SetTitle("run " + s.RunID)

	rangeText := fmt.Sprintf("%d..%d", s.Start, s.End)
	if s.End == 0 {
		rangeText = fmt.Sprintf("%d..", s.Start)
	}

	tbl.AppendRow(table.Row{"range", rangeText})
	tbl.AppendRow(table.Row{"next", s.Next})
	tbl.AppendRow(table.Row{"resumed", s.Resumed})
	tbl.AppendRow(table.Row{"solved", humanize.Comma(int64(s.Solved))})

	failed := humanize.Comma(int64(len(s.Failed)))
	if len(s.Failed) > 0 {
		failed = color.New(color.FgRed).Sprint(failed)
	}

	tbl.AppendRow(table.Row{"failed", failed})

	for _, method := range slices.Sorted(maps.Keys(s.ByMethod)) {
		tbl.AppendRow(table.Row{"method " + string(method), s.ByMethod[method]})
	}

	for _, rule := range slices.Sorted(maps.Keys(s.ByRule)) {
		tbl.AppendRow(table.Row{"rule " + rule, s.ByRule[rule]})
	}

	if s.Timing.Count > 0 {
		tbl.AppendRow(table.Row{"mean / p95 / max", fmt.Sprintf("%s / %s / %s", s.Timing.Mean, s.Timing.P95, s.Timing.Max)})
	}

	tbl.AppendRow(table.Row{"elapsed", s.Elapsed.Round(time.Millisecond).String()})
	tbl.Render()
}
