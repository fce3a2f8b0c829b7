//go:build !windows

package autostart

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// DesktopStore keeps entries as XDG autostart desktop files. The stored
// value is the Exec line.
type DesktopStore struct {
	Dir string
}

// DefaultStore returns the store for this platform.
func DefaultStore() Store {
	return DesktopStore{Dir: filepath.Join(xdg.ConfigHome, "autostart")}
}

func (s DesktopStore) path(name string) string {
	return filepath.Join(s.Dir, name+".desktop")
}

// Get implements Store. Entries marked Hidden=true count as absent.
func (s DesktopStore) Get(name string) (string, bool, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var exec string
	found := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Exec":
			exec, found = strings.TrimSpace(value), true
		case "Hidden":
			if strings.TrimSpace(value) == "true" {
				return "", false, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, err
	}
	return exec, found, nil
}

// Set implements Store.
func (s DesktopStore) Set(name, value string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	entry := fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Exec=%s
Terminal=false
X-GNOME-Autostart-enabled=true
`, name, value)
	return os.WriteFile(s.path(name), []byte(entry), 0o644)
}

// Delete implements Store.
func (s DesktopStore) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
