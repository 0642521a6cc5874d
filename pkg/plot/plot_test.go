package plot_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/plot"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
)

func sampleRecords() []resultlog.Record {
	return []resultlog.Record{
		{N: 6, Factorization: factor.Of(12), Partitions: 2},
		{N: 2, Factorization: factor.Of(2), Rule: rules.Prime, Partitions: 1},
		{N: 4, Factorization: factor.Of(6), Rule: rules.PrimeSquare, Partitions: 2},
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, plot.Render(&buf, sampleRecords(), plot.WithTitle("Un growth")))

	html := buf.String()
	assert.Contains(t, html, "Un growth")
	assert.Contains(t, html, "log10(Un)")
	assert.Contains(t, html, "Multiplicative partitions of n")
	assert.Contains(t, html, "echarts")
}

func TestRender_WithoutPartitions(t *testing.T) {
	t.Parallel()

	records := []resultlog.Record{{N: 3, Factorization: factor.Of(4)}}

	var buf bytes.Buffer

	require.NoError(t, plot.Render(&buf, records, plot.WithTheme(plot.ThemeLight)))
	assert.NotContains(t, buf.String(), "Multiplicative partitions of n")
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.ErrorIs(t, plot.Render(&buf, nil), plot.ErrNoRecords)
	assert.Zero(t, buf.Len())
}

func TestLog10(t *testing.T) {
	t.Parallel()

	rec := resultlog.Record{N: 12, Factorization: factor.Of(60)}
	assert.InDelta(t, math.Log10(60), plot.Log10(rec), 1e-12)
}
