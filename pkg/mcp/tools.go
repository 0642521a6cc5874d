package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/mindiv/pkg/divisor"
	"github.com/Sumatoshi-tech/mindiv/pkg/partition"
	"github.com/Sumatoshi-tech/mindiv/pkg/selector"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

// Tool names.
const (
	ToolNameSmallest     = "smallest_with_divisors"
	ToolNameDivisorCount = "divisor_count"
	ToolNamePartitions   = "multiplicative_partitions"
)

// Input limits.
const (
	// MaxN bounds n for smallest_with_divisors and multiplicative_partitions.
	MaxN = 100_000
	// MaxDivisorInput bounds m for divisor_count; trial division runs to sqrt(m).
	MaxDivisorInput = 1_000_000_000_000
	// DefaultPartitionLimit is how many partitions are listed when no limit is given.
	DefaultPartitionLimit = 100
)

// Sentinel errors for tool input validation.
var (
	ErrNOutOfRange = errors.New("n out of range")
	ErrMOutOfRange = errors.New("m out of range")
	ErrNegativeCap = errors.New("limit must not be negative")
)

// SmallestInput is the input of smallest_with_divisors.
type SmallestInput struct {
	N          int    `json:"n"                     jsonschema:"number of divisors, 1 to 100000"`
	Method     string `json:"method,omitempty"      jsonschema:"auto (default), enumeration or bruteforce"`
	CrossCheck bool   `json:"cross_check,omitempty" jsonschema:"re-derive a rule shortcut by partition enumeration and fail on disagreement"`
}

// DivisorCountInput is the input of divisor_count.
type DivisorCountInput struct {
	M    uint64 `json:"m"              jsonschema:"positive integer up to 10^12"`
	List bool   `json:"list,omitempty" jsonschema:"also return the divisors in ascending order"`
}

// PartitionsInput is the input of multiplicative_partitions.
type PartitionsInput struct {
	N     int `json:"n"               jsonschema:"integer to factor, 1 to 100000"`
	Limit int `json:"limit,omitempty" jsonschema:"maximum partitions listed (default 100, 0 lists the default)"`
}

// ToolOutput wraps structured tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// SmallestOutput describes Un.
type SmallestOutput struct {
	N             int    `json:"n"`
	Value         string `json:"value"`
	Factorization string `json:"factorization"`
	Rule          string `json:"rule,omitempty"`
	Method        string `json:"method"`
	Partitions    int    `json:"partitions,omitempty"`
}

// DivisorCountOutput is d(m) and optionally the divisors.
type DivisorCountOutput struct {
	M        uint64   `json:"m"`
	Count    int      `json:"count"`
	Divisors []uint64 `json:"divisors,omitempty"`
}

// PartitionsOutput lists partitions of n and the selected one.
type PartitionsOutput struct {
	N          int      `json:"n"`
	Count      int      `json:"count"`
	Partitions []string `json:"partitions"`
	Truncated  bool     `json:"truncated,omitempty"`
	Selected   string   `json:"selected"`
	Un         string   `json:"un"`
}

func (s *Server) handleSmallest(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input SmallestInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.N < 1 || input.N > MaxN {
		return errorResult(fmt.Errorf("%w: %d (want 1..%d)", ErrNOutOfRange, input.N, MaxN))
	}

	strategy, err := sequence.ParseStrategy(input.Method)
	if err != nil {
		return errorResult(err)
	}

	solver := s.solver
	if strategy != solver.Strategy() || input.CrossCheck {
		solver = s.solver.With(sequence.WithStrategy(strategy), sequence.WithCrossCheck(input.CrossCheck))
	}

	res, err := solver.Solve(ctx, input.N)
	if err != nil {
		s.logger.WarnContext(ctx, "mcp solve failed", "n", input.N, "error", err)

		return errorResult(err)
	}

	return jsonResult(SmallestOutput{
		N:             res.N,
		Value:         res.Value().String(),
		Factorization: res.Factorization.String(),
		Rule:          res.Rule.String(),
		Method:        string(res.Method),
		Partitions:    res.Partitions,
	})
}

func handleDivisorCount(
	_ context.Context, _ *mcpsdk.CallToolRequest, input DivisorCountInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.M < 1 || input.M > MaxDivisorInput {
		return errorResult(fmt.Errorf("%w: %d (want 1..%d)", ErrMOutOfRange, input.M, uint64(MaxDivisorInput)))
	}

	out := DivisorCountOutput{M: input.M, Count: divisor.Count(input.M)}
	if input.List {
		out.Divisors = divisor.Divisors(input.M)
	}

	return jsonResult(out)
}

func handlePartitions(
	_ context.Context, _ *mcpsdk.CallToolRequest, input PartitionsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.N < 1 || input.N > MaxN {
		return errorResult(fmt.Errorf("%w: %d (want 1..%d)", ErrNOutOfRange, input.N, MaxN))
	}

	if input.Limit < 0 {
		return errorResult(fmt.Errorf("%w: %d", ErrNegativeCap, input.Limit))
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultPartitionLimit
	}

	parts, err := partition.Enumerate(input.N)
	if err != nil {
		return errorResult(err)
	}

	sel, err := selector.Select(parts)
	if err != nil {
		return errorResult(err)
	}

	out := PartitionsOutput{
		N:        input.N,
		Count:    len(parts),
		Selected: sel.Partition.String(),
		Un:       sel.Factorization.String(),
	}

	shown := min(limit, len(parts))
	out.Partitions = make([]string, shown)

	for i := range shown {
		out.Partitions[i] = parts[i].String()
	}

	out.Truncated = shown < len(parts)

	return jsonResult(out)
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
