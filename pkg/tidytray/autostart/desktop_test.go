//go:build !windows

package autostart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopStore(t *testing.T) {
	s := DesktopStore{Dir: filepath.Join(t.TempDir(), "autostart")}

	_, ok, err := s.Get("tidytray")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("tidytray", `"/opt/tidytray"`))
	value, ok, err := s.Get("tidytray")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"/opt/tidytray"`, value)

	data, err := os.ReadFile(filepath.Join(s.Dir, "tidytray.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Desktop Entry]")
	assert.Contains(t, string(data), "Name=tidytray")

	require.NoError(t, s.Delete("tidytray"))
	_, ok, err = s.Get("tidytray")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Delete("tidytray"))
}

func TestDesktopStore_Hidden(t *testing.T) {
	s := DesktopStore{Dir: t.TempDir()}
	entry := "[Desktop Entry]\nExec=/opt/tidytray\nHidden=true\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "tidytray.desktop"), []byte(entry), 0o644))

	_, ok, err := s.Get("tidytray")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_WithDesktopStore(t *testing.T) {
	s := DesktopStore{Dir: t.TempDir()}
	m := newTestManager(s)

	changed, err := m.Ensure()
	require.NoError(t, err)
	assert.True(t, changed)

	ok, err := m.Check()
	require.NoError(t, err)
	assert.True(t, ok)
}
