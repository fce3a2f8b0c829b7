package recyclebin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBin struct {
	size     uint64
	emptyErr error
	opened   int
	deadline bool
}

func (f *fakeBin) Size(context.Context) (uint64, error) { return f.size, nil }

func (f *fakeBin) Open(ctx context.Context) error {
	_, f.deadline = ctx.Deadline()
	f.opened++
	return nil
}

func (f *fakeBin) Empty(context.Context) error {
	if f.emptyErr != nil {
		return f.emptyErr
	}
	f.size = 0
	return nil
}

func TestMetricSource(t *testing.T) {
	src := MetricSource{Bin: &fakeBin{size: 4096}}

	v, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), v)
}

func TestActions(t *testing.T) {
	bin := &fakeBin{size: 10}
	a := NewActions(bin)
	assert.Equal(t, commandTimeout, a.Timeout)

	require.NoError(t, a.Open())
	assert.Equal(t, 1, bin.opened)
	assert.True(t, bin.deadline)
	assert.Equal(t, uint64(10), bin.size, "open leaves the bin alone")

	require.NoError(t, a.Clear())
	assert.Zero(t, bin.size)
}

func TestActions_ClearError(t *testing.T) {
	bin := &fakeBin{size: 10, emptyErr: errors.New("access denied")}
	a := &Actions{Bin: bin, Timeout: time.Second}

	assert.EqualError(t, a.Clear(), "access denied")
	assert.Equal(t, uint64(10), bin.size)
}
