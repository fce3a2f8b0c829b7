// Package instance keeps a single copy of an application running per user
// through a PID file.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
)

// ErrAlreadyRunning is returned by Acquire when another live process holds
// the PID file.
var ErrAlreadyRunning = errors.New("instance already running")

// WritePIDFile writes the current process ID to a file.
func WritePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644)
}

// ReadPIDFile reads a PID from a file.
func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}

	return pid, nil
}

// IsRunning reports whether the PID recorded at path belongs to a live
// process.
func IsRunning(path string) bool {
	pid, err := ReadPIDFile(path)
	if err != nil {
		return false
	}
	return IsProcessRunning(pid)
}

// Lock is a held PID file.
type Lock struct {
	path string
}

// Acquire claims the PID file at path. A file left behind by a dead
// process is replaced.
func Acquire(path string) (*Lock, error) {
	if pid, err := ReadPIDFile(path); err == nil {
		if pid != os.Getpid() && IsProcessRunning(pid) {
			return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
		logging.Get("instance").Warn("removing stale pid file", "stale_pid", pid, "path", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := WritePIDFile(path); err != nil {
		return nil, err
	}
	return &Lock{path: path}, nil
}

// Path returns the PID file path.
func (l *Lock) Path() string { return l.path }

// Release removes the PID file if it still names this process.
func (l *Lock) Release() error {
	pid, err := ReadPIDFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil && pid != os.Getpid() {
		return nil
	}
	return os.Remove(l.path)
}
