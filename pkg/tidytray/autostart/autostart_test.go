package autostart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
	err    error
}

func newMemStore() *memStore { return &memStore{values: map[string]string{}} }

func (s *memStore) Get(name string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.values[name]
	return v, ok, nil
}

func (s *memStore) Set(name, value string) error {
	if s.err != nil {
		return s.err
	}
	s.values[name] = value
	return nil
}

func (s *memStore) Delete(name string) error {
	delete(s.values, name)
	return nil
}

const testExe = "/opt/tidytray/bin/tidytray"

func newTestManager(store Store) *Manager {
	m := New(store, "tidytray")
	m.executable = func() (string, error) { return testExe, nil }
	m.foldCase = false
	return m
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  bool
	}{
		{name: "absent", value: nil, want: false},
		{name: "exact quoted", value: ptr(`"` + testExe + `"`), want: true},
		{name: "exact unquoted", value: ptr(testExe), want: true},
		{name: "quoted with args", value: ptr(`"` + testExe + `" --minimized`), want: true},
		{name: "elsewhere", value: ptr(`"/usr/local/bin/tidytray"`), want: false},
		{name: "containing but longer", value: ptr(`"` + testExe + `-old"`), want: false},
		{name: "prefix of a different path", value: ptr(`"/opt/old` + testExe + `"`), want: false},
		{name: "empty", value: ptr(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			if tt.value != nil {
				store.values["tidytray"] = *tt.value
			}

			got, err := newTestManager(store).Check()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheck_FoldCase(t *testing.T) {
	store := newMemStore()
	store.values["tidytray"] = `"C:\PROGRAM FILES\TidyTray\tidytray.exe"`

	m := New(store, "tidytray")
	m.executable = func() (string, error) { return `C:\Program Files\TidyTray\tidytray.exe`, nil }

	m.foldCase = true
	ok, err := m.Check()
	require.NoError(t, err)
	assert.True(t, ok)

	m.foldCase = false
	ok, err = m.Check()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_StoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("access denied")

	_, err := newTestManager(store).Check()
	assert.ErrorContains(t, err, "access denied")
}

func TestEnableDisable(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store)

	require.NoError(t, m.Enable())
	assert.Equal(t, `"`+testExe+`"`, store.values["tidytray"])

	ok, err := m.Check()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Disable())
	ok, err = m.Check()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Disable(), "disabling twice")
}

func TestEnsure(t *testing.T) {
	store := newMemStore()
	store.values["tidytray"] = `"/somewhere/else"`
	m := newTestManager(store)

	changed, err := m.Ensure()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, Quote(testExe), store.values["tidytray"])

	changed, err = m.Ensure()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCommandPath(t *testing.T) {
	assert.Equal(t, `C:\a b\c.exe`, commandPath(`"C:\a b\c.exe" -x`))
	assert.Equal(t, "/bin/x", commandPath("  /bin/x --flag "))
	assert.Equal(t, "/unterminated", commandPath(`"/unterminated`))
	assert.Equal(t, "", commandPath("   "))
}

func ptr(s string) *string { return &s }
