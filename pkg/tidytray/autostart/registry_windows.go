//go:build windows

package autostart

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

// RunKey is the per-user key Windows reads at login.
const RunKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// RegistryStore keeps entries as string values under HKCU\RunKey.
type RegistryStore struct {
	Path string
}

// DefaultStore returns the store for this platform.
func DefaultStore() Store {
	return RegistryStore{Path: RunKey}
}

// Get implements Store.
func (s RegistryStore) Get(name string) (string, bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, s.Path, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer key.Close()

	value, _, err := key.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set implements Store.
func (s RegistryStore) Set(name, value string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, s.Path, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()
	return key.SetStringValue(name, value)
}

// Delete implements Store.
func (s RegistryStore) Delete(name string) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, s.Path, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.DeleteValue(name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}
