package observability

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instruments creates a batch of instruments on one meter and collects the
// failures, so a constructor checks a single error at the end.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func newInstruments(mt metric.Meter) *instruments {
	return &instruments{meter: mt}
}

func (in *instruments) counter(name, desc, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))

	return track(in, name, c, err)
}

// histogram uses bounds as explicit buckets when given.
func (in *instruments) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(desc), metric.WithUnit(unit)}
	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}

	h, err := in.meter.Float64Histogram(name, opts...)

	return track(in, name, h, err)
}

func (in *instruments) gauge(name, desc, unit string) metric.Int64ObservableGauge {
	g, err := in.meter.Int64ObservableGauge(name, metric.WithDescription(desc), metric.WithUnit(unit))

	return track(in, name, g, err)
}

func (in *instruments) observableCounter(name, desc, unit string) metric.Int64ObservableCounter {
	c, err := in.meter.Int64ObservableCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))

	return track(in, name, c, err)
}

func (in *instruments) err() error {
	return errors.Join(in.errs...)
}

func track[I any](in *instruments, name string, inst I, err error) I {
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("instrument %s: %w", name, err))
	}

	return inst
}
