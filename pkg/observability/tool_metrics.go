package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricToolRequestsTotal = "mindiv.mcp.requests.total"
	metricToolDuration      = "mindiv.mcp.request.duration.seconds"

	attrTool   = "tool"
	attrStatus = "status"
)

// ToolMetrics records MCP tool calls. A nil *ToolMetrics records nothing.
type ToolMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewToolMetrics creates the MCP tool instruments from mt.
func NewToolMetrics(mt metric.Meter) (*ToolMetrics, error) {
	in := newInstruments(mt)

	tm := &ToolMetrics{
		requests: in.counter(metricToolRequestsTotal, "MCP tool calls", "{call}"),
		duration: in.histogram(metricToolDuration, "MCP tool call latency", "s", durationBucketBoundaries...),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	return tm, nil
}

// RecordRequest records one tool call with its final status ("ok" or "error").
func (tm *ToolMetrics) RecordRequest(ctx context.Context, tool, status string, elapsed time.Duration) {
	if tm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)

	tm.requests.Add(ctx, 1, attrs)
	tm.duration.Record(ctx, elapsed.Seconds(), attrs)
}
