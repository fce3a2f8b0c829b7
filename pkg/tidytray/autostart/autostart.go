// Package autostart registers the running executable to start at login.
//
// The entry value is the quoted absolute path of the executable, the form
// Windows writes under the Run key and desktop entries accept in Exec.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
)

var logger = logging.Get("autostart")

// Store persists named autostart values.
type Store interface {
	// Get returns the value stored under name and whether it exists.
	Get(name string) (string, bool, error)

	// Set creates or replaces the value stored under name.
	Set(name, value string) error

	// Delete removes name. Deleting a missing entry is not an error.
	Delete(name string) error
}

// Manager checks and edits the autostart entry for one executable.
type Manager struct {
	store Store
	name  string

	// executable returns the absolute path of the running binary.
	executable func() (string, error)

	// foldCase compares paths case-insensitively.
	foldCase bool
}

// New returns a Manager for the current executable stored under name.
func New(store Store, name string) *Manager {
	return &Manager{
		store:      store,
		name:       name,
		executable: currentExecutable,
		foldCase:   runtime.GOOS == "windows",
	}
}

// Name returns the entry name.
func (m *Manager) Name() string { return m.name }

// Check reports whether an entry exists and names this executable. An
// entry pointing at another path reports false.
func (m *Manager) Check() (bool, error) {
	value, ok, err := m.store.Get(m.name)
	if err != nil {
		return false, fmt.Errorf("reading autostart entry %q: %w", m.name, err)
	}
	if !ok {
		return false, nil
	}

	exe, err := m.executable()
	if err != nil {
		return false, err
	}
	return m.samePath(commandPath(value), exe), nil
}

// Enable writes the entry for this executable, replacing any existing one.
func (m *Manager) Enable() error {
	exe, err := m.executable()
	if err != nil {
		return err
	}
	if err := m.store.Set(m.name, Quote(exe)); err != nil {
		return fmt.Errorf("writing autostart entry %q: %w", m.name, err)
	}
	logger.Info("autostart enabled", "name", m.name, "path", exe)
	return nil
}

// Disable removes the entry.
func (m *Manager) Disable() error {
	if err := m.store.Delete(m.name); err != nil {
		return fmt.Errorf("removing autostart entry %q: %w", m.name, err)
	}
	logger.Info("autostart disabled", "name", m.name)
	return nil
}

// Ensure enables the entry unless Check already reports it. It returns
// true when the entry was written.
func (m *Manager) Ensure() (bool, error) {
	ok, err := m.Check()
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	return true, m.Enable()
}

// Quote wraps path in double quotes.
func Quote(path string) string {
	return `"` + path + `"`
}

// commandPath extracts the executable from a command line: the text
// between leading quotes, or the first field of an unquoted value.
func commandPath(value string) string {
	value = strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(value, `"`); ok {
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	if fields := strings.Fields(value); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func (m *Manager) samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if m.foldCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Abs(exe)
}
