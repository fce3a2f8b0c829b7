package trayicon

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPNG(t *testing.T) {
	data := renderPNG()
	require.True(t, bytes.HasPrefix(data, pngMagic))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, iconSize, img.Bounds().Dx())
	assert.Equal(t, iconSize, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corners are transparent")
	_, _, _, a = img.At(16, 20).RGBA()
	assert.NotZero(t, a, "body is opaque")
}

func TestDefault(t *testing.T) {
	assert.NotEmpty(t, Default())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("png is converted", func(t *testing.T) {
		path := filepath.Join(dir, "icon.png")
		require.NoError(t, os.WriteFile(path, renderPNG(), 0o644))

		data, err := Load(path)
		require.NoError(t, err)
		want, err := encodeNative(renderPNG())
		require.NoError(t, err)
		assert.Equal(t, want, data)
	})

	t.Run("other formats pass through", func(t *testing.T) {
		path := filepath.Join(dir, "icon.ico")
		raw := []byte{0, 0, 1, 0, 1, 0}
		require.NoError(t, os.WriteFile(path, raw, 0o644))

		data, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, raw, data)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.png"))
		assert.Error(t, err)
	})
}
