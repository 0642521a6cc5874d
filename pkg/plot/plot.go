// Package plot renders result logs as interactive HTML charts.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
)

// ErrNoRecords is returned when there is nothing to plot.
var ErrNoRecords = errors.New("no records to plot")

const (
	defaultTitle = "Smallest number with n divisors"
	lineWidth    = 2
	symbolSize   = 8
	fullZoomPct  = 100
	chartHeight  = "480px"
)

// Theme selects the chart palette.
type Theme string

// Themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type palette struct {
	background string
	text       string
	muted      string
	grid       string
	value      string
	rule       string
	partitions string
	echarts    string
}

var palettes = map[Theme]palette{
	ThemeDark: {
		background: "#1e1e2e",
		text:       "#cdd6f4",
		muted:      "#a6adc8",
		grid:       "#45475a",
		value:      "#89b4fa",
		rule:       "#f9e2af",
		partitions: "#a6e3a1",
		echarts:    "dark",
	},
	ThemeLight: {
		background: "#ffffff",
		text:       "#1f2328",
		muted:      "#59636e",
		grid:       "#d1d9e0",
		value:      "#0969da",
		rule:       "#bf8700",
		partitions: "#1a7f37",
		echarts:    "white",
	},
}

type options struct {
	title string
	theme Theme
}

// Option configures Render.
type Option func(*options)

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithTheme selects the palette. Unknown themes fall back to dark.
func WithTheme(theme Theme) Option {
	return func(o *options) { o.theme = theme }
}

// Render writes an HTML page with the growth of log10(Un) over n and, when
// the records carry them, the multiplicative partition counts.
func Render(w io.Writer, records []resultlog.Record, opt ...Option) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	o := options{title: defaultTitle, theme: ThemeDark}
	for _, apply := range opt {
		apply(&o)
	}

	pal, ok := palettes[o.theme]
	if !ok {
		pal = palettes[ThemeDark]
	}

	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b resultlog.Record) int { return a.N - b.N })

	page := components.NewPage()
	page.SetPageTitle(o.title)
	page.AddCharts(growthChart(sorted, o.title, pal))

	if hasPartitions(sorted) {
		page.AddCharts(partitionChart(sorted, pal))
	}

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

func labels(records []resultlog.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = strconv.Itoa(rec.N)
	}

	return out
}

// Log10 returns log10(Un) for the record.
func Log10(rec resultlog.Record) float64 {
	return rec.Factorization.Log() / math.Ln10
}

func growthChart(records []resultlog.Record, title string, pal palette) *charts.Line {
	values := make([]opts.LineData, len(records))
	ruled := make([]opts.LineData, len(records))

	for i, rec := range records {
		v := math.Round(Log10(rec)*1000) / 1000
		values[i] = opts.LineData{Value: v, Name: rec.Form()}

		if rec.Rule != rules.None {
			ruled[i] = opts.LineData{Value: v, Name: rec.Rule.String(), Symbol: "diamond", SymbolSize: symbolSize}
		} else {
			ruled[i] = opts.LineData{Value: "-"}
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "100%",
			Height:          chartHeight,
			BackgroundColor: pal.background,
			Theme:           pal.echarts,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         title,
			Subtitle:      "log10(Un)",
			Left:          "center",
			TitleStyle:    &opts.TextStyle{Color: pal.text},
			SubtitleStyle: &opts.TextStyle{Color: pal.muted},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:      opts.Bool(true),
			Top:       "10%",
			Left:      "center",
			TextStyle: &opts.TextStyle{Color: pal.muted},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct},
			opts.DataZoom{Type: "inside"},
		),
		charts.WithXAxisOpts(axisX("n", pal)),
		charts.WithYAxisOpts(axisY("log10(Un)", pal)),
		charts.WithGridOpts(grid()),
	)
	line.SetXAxis(labels(records))
	line.AddSeries("log10(Un)", values,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: pal.value}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	line.AddSeries("Rule shortcut", ruled,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: pal.rule}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 0, Opacity: opts.Float(0)}),
	)

	return line
}

func partitionChart(records []resultlog.Record, pal palette) *charts.Bar {
	counts := make([]opts.BarData, len(records))
	for i, rec := range records {
		counts[i] = opts.BarData{Value: rec.Partitions}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "100%",
			Height:          chartHeight,
			BackgroundColor: pal.background,
			Theme:           pal.echarts,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      "Multiplicative partitions of n",
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: pal.text},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(axisX("n", pal)),
		charts.WithYAxisOpts(axisY("partitions", pal)),
		charts.WithGridOpts(grid()),
	)
	bar.SetXAxis(labels(records))
	bar.AddSeries("partitions", counts,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: pal.partitions}),
	)

	return bar
}

func hasPartitions(records []resultlog.Record) bool {
	return slices.ContainsFunc(records, func(r resultlog.Record) bool { return r.Partitions > 0 })
}

func axisX(name string, pal palette) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: pal.muted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: pal.grid}},
	}
}

func axisY(name string, pal palette) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: pal.muted},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: pal.grid},
		},
	}
}

func grid() opts.Grid {
	return opts.Grid{
		Top:          "22%",
		Bottom:       "15%",
		Left:         "5%",
		Right:        "5%",
		ContainLabel: opts.Bool(true),
	}
}
