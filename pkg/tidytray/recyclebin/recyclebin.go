// Package recyclebin queries, opens and empties the platform recycle bin.
//
// On Windows the shell's Recycle Bin is driven through shell32. Elsewhere
// the freedesktop.org trash directory is used directly.
package recyclebin

import (
	"context"
	"errors"
	"time"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
)

var logger = logging.Get("recyclebin")

// ErrUnsupported is returned for operations the platform cannot perform.
var ErrUnsupported = errors.New("recyclebin: unsupported on this platform")

// commandTimeout bounds shell calls and helper processes.
const commandTimeout = 30 * time.Second

// Bin is a recycle bin.
type Bin interface {
	// Size returns the total size of the bin contents in bytes.
	Size(ctx context.Context) (uint64, error)

	// Open shows the bin in the platform file manager.
	Open(ctx context.Context) error

	// Empty permanently deletes the bin contents. Emptying an empty bin
	// succeeds.
	Empty(ctx context.Context) error
}

// MetricSource adapts a Bin to a poller source reporting its size.
type MetricSource struct {
	Bin Bin
}

// Read implements poller.Source.
func (m MetricSource) Read(ctx context.Context) (uint64, error) {
	return m.Bin.Size(ctx)
}

// Actions runs bin operations on behalf of the tray menu. Each call gets
// its own timeout since the tray handlers take no context.
type Actions struct {
	Bin     Bin
	Timeout time.Duration
}

// NewActions returns Actions using the default command timeout.
func NewActions(bin Bin) *Actions {
	return &Actions{Bin: bin, Timeout: commandTimeout}
}

// Open shows the bin.
func (a *Actions) Open() error {
	ctx, cancel := a.context()
	defer cancel()
	return a.Bin.Open(ctx)
}

// Clear empties the bin.
func (a *Actions) Clear() error {
	ctx, cancel := a.context()
	defer cancel()

	if err := a.Bin.Empty(ctx); err != nil {
		return err
	}
	logger.Info("recycle bin emptied")
	return nil
}

func (a *Actions) context() (context.Context, context.CancelFunc) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = commandTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Putter is implemented by bins that can move files into themselves.
type Putter interface {
	Put(path string) error
}
