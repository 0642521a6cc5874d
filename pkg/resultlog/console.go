package resultlog

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
)

// Console column widths: rule lines are narrower than plain records.
const (
	recordWidth = 50
	ruleWidth   = 30
	clockLayout = "15:04:05.000"
)

// Console prints records for a human watching a run, each followed by the
// wall-clock time it was printed.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, now: time.Now}
}

// NewConsoleWithClock creates a Console with a fixed time source.
func NewConsoleWithClock(w io.Writer, now func() time.Time) *Console {
	return &Console{w: w, now: now}
}

// Print writes one padded line.
func (c *Console) Print(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := io.WriteString(c.w, ConsoleLine(rec, c.now())+"\n"); err != nil {
		return fmt.Errorf("print record %d: %w", rec.N, err)
	}

	return nil
}

// ConsoleLine formats rec for the console at time at. Rule results use the
// "n  #r  form" layout; others use the log layout.
func ConsoleLine(rec Record, at time.Time) string {
	if rec.Rule != rules.None {
		text := strconv.Itoa(rec.N) + "  " + rec.Rule.String() + "  " + rec.Form()

		return fmt.Sprintf("%-*s%s", ruleWidth, text, at.Format(clockLayout))
	}

	text := strconv.Itoa(rec.N) + formSeparator + rec.Form()

	return fmt.Sprintf("%-*s%s", recordWidth, text, at.Format(clockLayout))
}
