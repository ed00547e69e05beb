package tickhist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// config holds the configuration options for a Recorder instance.
type config struct {
	tracer trace.Tracer
	now    func() time.Time
}

// Option is a type used to implement the Functional Options Pattern.
// It represents an option that can be passed to the NewRecorder function.
type Option func(*config)

// WithTracer configures OpenTelemetry tracing for a Recorder.
//
// Parameters:
// - tracer: An OpenTelemetry trace.Tracer instance.
//
// Returns:
// - An Option function that sets the internal tracer.
//
// Usage:
// Pass this to NewRecorder to wrap every Observe call in a span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithClock replaces the time source used to measure Observe durations.
//
// Parameters:
// - now: A function returning the current time.
//
// Returns:
// - An Option function that sets the internal clock.
//
// Usage:
// Pass this to NewRecorder in tests that need a deterministic clock.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// Recorder is a goroutine-safe recording front end over a Histogram. It
// clamps recordings into the trackable range, optionally traces timed
// executions, and rotates interval histograms through an internal pool so
// steady-state recording does not allocate.
type Recorder struct {
	config
	minRecordable time.Duration
	maxRecordable time.Duration

	mu struct {
		sync.Mutex
		active *Histogram
	}
	pool sync.Pool
}

// NewRecorder creates a new Recorder with the given configuration options.
//
// Parameters:
// - minRecordable: The smallest duration distinguishable from zero, at least 1ns.
// - maxRecordable: The largest recordable duration, at least twice minRecordable.
// - sigFigs: Number of significant decimal digits preserved, between 1 and 5.
// - options: Optional configuration options for the Recorder (Option...).
//
// Returns:
// - A pointer to a new Recorder instance and an error, if any.
//
// Usage:
// Call this function to create a new Recorder with the desired configuration.
func NewRecorder(minRecordable, maxRecordable time.Duration, sigFigs int, options ...Option) (*Recorder, error) {
	h, err := New(minRecordable.Nanoseconds(), maxRecordable.Nanoseconds(), sigFigs)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		config: config{
			tracer: nil,
			now:    time.Now,
		},
		minRecordable: minRecordable,
		maxRecordable: maxRecordable,
	}
	r.mu.active = h
	r.pool.New = func() any {
		// The parameters were validated above, so the error can only repeat
		// what New already ruled out.
		fresh, _ := New(minRecordable.Nanoseconds(), maxRecordable.Nanoseconds(), sigFigs)
		return fresh
	}

	for _, option := range options {
		option(&r.config)
	}

	return r, nil
}

// Record adds one elapsed duration to the current interval, clamping it into
// the recordable range so the hot path never returns an error.
func (r *Recorder) Record(elapsed time.Duration) {
	if elapsed < r.minRecordable {
		elapsed = r.minRecordable
	} else if elapsed > r.maxRecordable {
		elapsed = r.maxRecordable
	}

	r.mu.Lock()
	err := r.mu.active.RecordValue(elapsed.Nanoseconds())
	r.mu.Unlock()
	if err != nil {
		// The histogram only rejects values outside its trackable range,
		// and the clamp above keeps every value inside it.
		panic(fmt.Sprintf("recording value: %v", err))
	}
}

// Observe executes fn, records how long it took, and returns fn's error.
// If a tracer is configured, the execution is wrapped in a span named
// spanName.
func (r *Recorder) Observe(ctx context.Context, spanName string, fn func(context.Context) error) error {
	var span trace.Span
	if r.tracer != nil {
		ctx, span = r.tracer.Start(ctx, spanName)
		defer span.End()
	}

	t := r.now()
	err := fn(ctx)
	r.Record(r.now().Sub(t))

	return err
}

// Rotate swaps in a fresh histogram for the next interval and returns the
// finished one. The caller owns the returned histogram and should hand it
// back through Recycle once done reading it.
func (r *Recorder) Rotate() *Histogram {
	fresh := r.pool.Get().(*Histogram)

	r.mu.Lock()
	done := r.mu.active
	r.mu.active = fresh
	r.mu.Unlock()

	return done
}

// Recycle resets a rotated-out histogram and returns it to the internal pool
// for reuse by a later Rotate.
func (r *Recorder) Recycle(h *Histogram) {
	if h == nil {
		return
	}

	h.Reset()
	r.pool.Put(h)
}
