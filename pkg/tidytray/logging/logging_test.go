package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T, cfg Config) string {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "tidytray.log")
	}
	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Close() })
	return cfg.Path
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "debug", want: LevelDebug},
		{input: "INFO", want: LevelInfo},
		{input: "", want: LevelInfo},
		{input: "warning", want: LevelWarn},
		{input: "warn", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "loud", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(99).String())
}

func TestGet_BeforeInitIsSilent(t *testing.T) {
	logger := Get("silent-component")
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("nobody hears this") })
}

func TestGet_ReturnsSameLogger(t *testing.T) {
	assert.Same(t, Get("same"), Get("same"))
}

func TestInit_WritesToFile(t *testing.T) {
	path := initTemp(t, Config{Level: "info"})

	Get("poller").Info("sample published", "value", 1050)
	Get("poller").Debug("filtered out")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "sample published")
	assert.Contains(t, content, "poller")
	assert.Contains(t, content, "value=1050")
	assert.NotContains(t, content, "filtered out")
}

func TestInit_ComponentOverride(t *testing.T) {
	path := initTemp(t, Config{
		Level:      "warn",
		Components: map[string]string{"tray": "debug"},
	})

	Get("tray").Debug("tray detail")
	Get("server").Info("server detail")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tray detail")
	assert.NotContains(t, string(data), "server detail")
}

func TestInit_RebuildsExistingLoggers(t *testing.T) {
	early := Get("early-bird")
	path := initTemp(t, Config{Level: "info"})

	early.Info("after init")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "after init")
}

func TestInit_InvalidLevels(t *testing.T) {
	dir := t.TempDir()
	err := Init(Config{Level: "nope", Path: filepath.Join(dir, "a.log")})
	assert.ErrorIs(t, err, ErrInvalidLevel)

	err = Init(Config{Level: "info", Path: filepath.Join(dir, "b.log"), Components: map[string]string{"x": "bad"}})
	assert.ErrorIs(t, err, ErrInvalidLevel)

	err = Init(Config{Level: "info", Path: filepath.Join(dir, "c.log"), ConsoleLevel: "bad"})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestSubscribe(t *testing.T) {
	initTemp(t, Config{Level: "debug"})

	ch := Subscribe()
	defer Unsubscribe(ch)

	Get("loop").Warn("bin empty failed")

	select {
	case e := <-ch:
		assert.Equal(t, LevelWarn, e.Level)
		assert.Equal(t, "loop", e.Component)
		assert.Equal(t, "bin empty failed", e.Message)
	case <-time.After(time.Second):
		t.Fatal("no entry delivered")
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	initTemp(t, Config{Level: "debug"})

	ch := Subscribe()
	Unsubscribe(ch)
	Get("loop").Info("after unsubscribe")

	select {
	case <-ch:
		t.Fatal("entry delivered after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestClose_Idempotent(t *testing.T) {
	initTemp(t, Config{Level: "info"})
	require.NoError(t, Close())
	require.NoError(t, Close())
}

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()
	assert.True(t, strings.HasSuffix(path, filepath.Join("tidytray", "tidytray.log")))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, DefaultLogPath(), cfg.Path)
	assert.Equal(t, DefaultRotationConfig(), cfg.Rotation)
}
