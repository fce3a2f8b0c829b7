// Package poller samples one OS metric on a fixed interval and publishes each
// reading to a sink.
package poller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

var logger = logging.Get("poller")

// Source reads the current value of a metric.
type Source interface {
	Read(ctx context.Context) (uint64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (uint64, error)

// Read calls f.
func (f SourceFunc) Read(ctx context.Context) (uint64, error) { return f(ctx) }

// Sink receives samples. notify.Queue implements it.
type Sink interface {
	Send(types.Sample) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Poller.
type Option func(*Poller)

// WithSleep replaces the wall-clock sleep.
func WithSleep(fn SleepFunc) Option {
	return func(p *Poller) { p.sleep = fn }
}

// WithClock replaces time.Now for sample timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// Poller reads Source, sends a Sample to Sink, then sleeps for the interval.
type Poller struct {
	kind     types.Kind
	source   Source
	sink     Sink
	interval atomic.Int64
	sleep    SleepFunc
	now      func() time.Time
}

// New returns a poller. interval must be positive.
func New(kind types.Kind, source Source, sink Sink, interval time.Duration, opts ...Option) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poller: interval must be positive, got %s", interval)
	}
	p := &Poller{
		kind:   kind,
		source: source,
		sink:   sink,
		sleep:  sleepContext,
		now:    time.Now,
	}
	p.interval.Store(int64(interval))
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Interval returns the current sleep interval.
func (p *Poller) Interval() time.Duration {
	return time.Duration(p.interval.Load())
}

// SetInterval changes the interval used from the next sleep on. Non-positive
// values are ignored.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.interval.Store(int64(d))
}

// Run loops until ctx is done or the sink rejects a sample. A failed read is
// logged and published as zero; it does not end the loop and is not retried
// early. The returned error is ctx.Err() or the sink error.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.sink.Send(p.sample(ctx)); err != nil {
			logger.Debug("receiver gone, stopping", "kind", p.kind, "error", err)
			return fmt.Errorf("poller: send %s sample: %w", p.kind, err)
		}

		if err := p.sleep(ctx, p.Interval()); err != nil {
			return err
		}
	}
}

func (p *Poller) sample(ctx context.Context) types.Sample {
	value, err := p.source.Read(ctx)
	if err != nil {
		logger.Warn("metric read failed, reporting zero", "kind", p.kind, "error", err)
		value = 0
	}
	return types.Sample{Kind: p.kind, Value: value, Time: p.now()}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
