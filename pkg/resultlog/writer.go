package resultlog

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"
)

// Writer appends records to an underlying stream. It is safe for concurrent use.
type Writer struct {
	mu         sync.Mutex
	w          *bufio.Writer
	timestamps bool
	now        func() time.Time
	written    int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithTimestamps stamps records that carry no time of their own.
func WithTimestamps(enabled bool) WriterOption {
	return func(w *Writer) {
		w.timestamps = enabled
	}
}

// WithClock overrides the time source used for stamping.
func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a Writer. Call Flush before closing the destination.
func NewWriter(dst io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		w:   bufio.NewWriter(dst),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write appends one record line.
func (w *Writer) Write(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timestamps && rec.Time.IsZero() {
		rec.Time = w.now()
	}

	if _, err := fmt.Fprintln(w.w, rec.Line()); err != nil {
		return fmt.Errorf("write record %d: %w", rec.N, err)
	}

	w.written++

	return nil
}

// Flush writes buffered records to the destination.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush result log: %w", err)
	}

	return nil
}

// Written returns the number of records written.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.written
}
