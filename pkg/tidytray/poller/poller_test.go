package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/tidytray/pkg/tidytray/notify"
	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

type recordingSink struct {
	samples []types.Sample
	err     error
}

func (s *recordingSink) Send(sample types.Sample) error {
	if s.err != nil {
		return s.err
	}
	s.samples = append(s.samples, sample)
	return nil
}

// fakeClock advances virtual time on every sleep and cancels after limit sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	limit  int
	cancel context.CancelFunc
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if len(c.sleeps) >= c.limit {
		c.cancel()
	}
	return ctx.Err()
}

func sequence(values ...uint64) Source {
	i := 0
	return SourceFunc(func(context.Context) (uint64, error) {
		v := values[i%len(values)]
		i++
		return v, nil
	})
}

func TestNew_RejectsNonPositiveInterval(t *testing.T) {
	_, err := New(types.KindMemory, sequence(1), &recordingSink{}, 0)
	assert.Error(t, err)
}

func TestRun_OneSamplePerInterval(t *testing.T) {
	for _, interval := range []time.Duration{time.Second, 10 * time.Second} {
		t.Run(interval.String(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			clock := &fakeClock{now: time.Unix(0, 0), limit: 5, cancel: cancel}
			sink := &recordingSink{}
			p, err := New(types.KindBinSize, sequence(7), sink, interval,
				WithSleep(clock.Sleep), WithClock(clock.Now))
			require.NoError(t, err)

			err = p.Run(ctx)
			assert.ErrorIs(t, err, context.Canceled)

			require.Len(t, sink.samples, 5)
			for i, d := range clock.sleeps {
				assert.Equal(t, interval, d)
				if i > 0 {
					gap := sink.samples[i].Time.Sub(sink.samples[i-1].Time)
					assert.Equal(t, interval, gap, "exactly one sample per interval")
				}
			}
		})
	}
}

func TestRun_ReadFailureReportsZero(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	src := SourceFunc(func(context.Context) (uint64, error) {
		calls++
		if calls == 2 {
			return 99, errors.New("SHQueryRecycleBin: 0x80004005")
		}
		return 4096, nil
	})

	clock := &fakeClock{limit: 3, cancel: cancel}
	sink := &recordingSink{}
	p, err := New(types.KindBinSize, src, sink, 10*time.Second, WithSleep(clock.Sleep))
	require.NoError(t, err)

	_ = p.Run(ctx)

	require.Len(t, sink.samples, 3)
	assert.Equal(t, []uint64{4096, 0, 4096},
		[]uint64{sink.samples[0].Value, sink.samples[1].Value, sink.samples[2].Value})
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second, 10 * time.Second}, clock.sleeps,
		"a failed read is not retried sooner")
}

func TestRun_SinkGoneStopsLoop(t *testing.T) {
	q := notify.New()
	q.Close()

	p, err := New(types.KindMemory, sequence(1), q, time.Second,
		WithSleep(func(context.Context, time.Duration) error {
			t.Fatal("should not sleep after a failed send")
			return nil
		}))
	require.NoError(t, err)

	err = p.Run(context.Background())
	assert.ErrorIs(t, err, notify.ErrClosed)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	p, err := New(types.KindMemory, sequence(1), sink, time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
	assert.Empty(t, sink.samples)
}

func TestSetInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var p *Poller
	var sleeps []time.Duration
	sleep := func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		if len(sleeps) == 1 {
			p.SetInterval(30 * time.Second)
		}
		if len(sleeps) == 3 {
			cancel()
		}
		return ctx.Err()
	}

	var err error
	p, err = New(types.KindBinSize, sequence(1), &recordingSink{}, 10*time.Second, WithSleep(sleep))
	require.NoError(t, err)

	p.SetInterval(-time.Second)
	assert.Equal(t, 10*time.Second, p.Interval())

	_ = p.Run(ctx)
	assert.Equal(t, []time.Duration{10 * time.Second, 30 * time.Second, 30 * time.Second}, sleeps)
}

func TestRun_WallClock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	q := notify.New()
	defer q.Close()

	p, err := New(types.KindMemory, sequence(1000), q, 50*time.Millisecond)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	err = <-done
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// Samples at 0ms, 50ms and 100ms.
	assert.InDelta(t, 3, q.Len(), 1)
}
