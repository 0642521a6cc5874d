package driver

import (
	"errors"
	"time"

	"github.com/Sumatoshi-tech/mindiv/pkg/alg/stats"
	"github.com/Sumatoshi-tech/mindiv/pkg/checkpoint"
	"github.com/Sumatoshi-tech/mindiv/pkg/resultlog"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

// Failure is an n that could not be solved.
type Failure struct {
	N   int    `json:"n"     yaml:"n"`
	Err string `json:"error" yaml:"error"`
}

// Summary describes a finished (or interrupted) run.
type Summary struct {
	RunID   string `json:"run_id"  yaml:"run_id"`
	Start   int    `json:"start"   yaml:"start"`
	End     int    `json:"end"     yaml:"end"`
	Next    int    `json:"next"    yaml:"next"`
	Resumed bool   `json:"resumed" yaml:"resumed"`

	// Solved counts results emitted by this invocation only.
	Solved   int                     `json:"solved"    yaml:"solved"`
	Failed   []Failure               `json:"failed"    yaml:"failed"`
	ByMethod map[sequence.Method]int `json:"by_method" yaml:"by_method"`
	ByRule   map[string]int          `json:"by_rule"   yaml:"by_rule"`

	Timing  stats.Summary `json:"timing"  yaml:"timing"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Err joins the recorded failures, or returns nil.
func (s Summary) Err() error {
	errs := make([]error, 0, len(s.Failed))
	for _, f := range s.Failed {
		errs = append(errs, errors.New(f.Err))
	}

	return errors.Join(errs...)
}

// runState is owned by the collector goroutine once a run starts.
type runState struct {
	start int
	end   int
	next  int
	began time.Time

	records   []resultlog.Record
	durations []time.Duration
	summary   Summary

	priorCompleted int
	priorFailed    []int

	emitted         int
	sinceCheckpoint int

	throughput        *stats.Throughput
	lastProgress      time.Time
	lastProgressCount int
}

func newRunState(start, end int, runID string) *runState {
	now := time.Now()

	return &runState{
		start: start,
		end:   end,
		next:  start,
		began: now,
		summary: Summary{
			RunID:    runID,
			Start:    start,
			End:      end,
			ByMethod: make(map[sequence.Method]int),
			ByRule:   make(map[string]int),
		},
		throughput:   stats.NewThroughput(stats.DefaultAlpha),
		lastProgress: now,
	}
}

func (st *runState) resumeFrom(meta *checkpoint.Metadata, records []resultlog.Record) {
	st.next = max(meta.Progress.Next, st.start)
	st.records = records
	st.priorCompleted = meta.Progress.Completed
	st.priorFailed = meta.Progress.Failed
	st.summary.RunID = meta.RunID
	st.summary.Resumed = true
}

func (st *runState) record(res sequence.Result) {
	st.records = append(st.records, resultlog.FromResult(res, res.EmittedAt))
	st.durations = append(st.durations, res.Duration)

	st.summary.Solved++
	st.summary.ByMethod[res.Method]++

	if tag := res.Rule.String(); tag != "" {
		st.summary.ByRule[tag]++
	}

	st.emitted++
	st.sinceCheckpoint++
}

func (st *runState) fail(n int, err error) {
	st.summary.Failed = append(st.summary.Failed, Failure{N: n, Err: err.Error()})

	st.emitted++
	st.sinceCheckpoint++
}

func (st *runState) progress() checkpoint.Progress {
	failed := append([]int(nil), st.priorFailed...)
	for _, f := range st.summary.Failed {
		failed = append(failed, f.N)
	}

	return checkpoint.Progress{
		Start:     st.start,
		End:       st.end,
		Next:      st.next,
		Completed: st.priorCompleted + st.summary.Solved,
		Failed:    failed,
	}
}

func (st *runState) finish() Summary {
	s := st.summary
	s.Next = st.next
	s.Timing = stats.Summarize(st.durations)
	s.Elapsed = time.Since(st.began)

	return s
}
