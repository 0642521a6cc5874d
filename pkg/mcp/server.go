// Package mcp serves the mindiv solvers as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/mindiv/pkg/bruteforce"
	"github.com/Sumatoshi-tech/mindiv/pkg/observability"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
	"github.com/Sumatoshi-tech/mindiv/pkg/version"
)

const (
	serverName = "mindiv"

	// MaxBruteForceCandidates bounds brute-force scans started from a tool call.
	MaxBruteForceCandidates = 100_000_000
)

// ServerDeps holds injectable dependencies. Zero-value fields use defaults.
type ServerDeps struct {
	Logger *slog.Logger

	// Solver answers smallest_with_divisors. Nil builds one whose
	// brute-force scans stop at MaxBruteForceCandidates.
	Solver *sequence.Solver

	Metrics *observability.ToolMetrics
	Tracer  trace.Tracer
}

// Server wraps the MCP SDK server with the mindiv tools registered.
type Server struct {
	inner   *mcpsdk.Server
	solver  *sequence.Solver
	logger  *slog.Logger
	metrics *observability.ToolMetrics
	tracer  trace.Tracer

	// tools is fixed once NewServer returns.
	tools []string
}

// NewServer creates a server with every tool registered.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	solver := deps.Solver
	if solver == nil {
		solver = sequence.New(
			sequence.WithSearcher(bruteforce.New(
				bruteforce.WithLimit(MaxBruteForceCandidates),
				bruteforce.WithLogger(logger),
			)),
			sequence.WithLogger(logger),
		)
	}

	srv := &Server{
		inner: mcpsdk.NewServer(
			&mcpsdk.Implementation{Name: serverName, Version: version.Version},
			&mcpsdk.ServerOptions{Logger: logger},
		),
		solver:  solver,
		logger:  logger,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	addTool[SmallestInput](srv, ToolNameSmallest, smallestToolDescription, srv.handleSmallest)
	addTool[DivisorCountInput](srv, ToolNameDivisorCount, divisorCountToolDescription, handleDivisorCount)
	addTool[PartitionsInput](srv, ToolNamePartitions, partitionsToolDescription, handlePartitions)

	slices.Sort(srv.tools)

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	return slices.Clone(s.tools)
}

// Run serves on stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.inner.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func addTool[In any](s *Server, name, description string, handler mcpsdk.ToolHandlerFor[In, ToolOutput]) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{Name: name, Description: description}, instrument(s, name, handler))

	s.tools = append(s.tools, name)
}

const (
	statusOK       = "ok"
	statusError    = "error"
	traceIDMetaKey = "trace_id"
)

// instrument records a span and the request metrics around every call.
// Sampled results get the trace id appended as an extra text block.
func instrument[In any](
	s *Server, name string, handler mcpsdk.ToolHandlerFor[In, ToolOutput],
) mcpsdk.ToolHandlerFor[In, ToolOutput] {
	if s.tracer == nil && s.metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		started := time.Now()

		var span trace.Span
		if s.tracer != nil {
			ctx, span = s.tracer.Start(ctx, "mcp."+name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", name)),
			)
			defer span.End()
		}

		result, output, err := handler(ctx, req, input)

		status := statusOK
		if err != nil || (result != nil && result.IsError) {
			status = statusError
		}

		if span != nil {
			span.SetAttributes(attribute.String("mcp.status", status))

			if sc := span.SpanContext(); sc.IsSampled() && result != nil {
				result.Content = append(result.Content, &mcpsdk.TextContent{
					Text: traceIDMetaKey + "=" + sc.TraceID().String(),
				})
			}
		}

		s.metrics.RecordRequest(ctx, name, status, time.Since(started))

		return result, output, err
	}
}

const (
	smallestToolDescription = "Compute Un, the smallest positive integer with exactly n divisors. " +
		"Returns the prime factorization, the decimal value and how it was found."

	divisorCountToolDescription = "Count the positive divisors of m, optionally listing them."

	partitionsToolDescription = "Enumerate the multiplicative partitions of n " +
		"(unordered factorizations into factors >= 2) and report the one that yields Un."
)
