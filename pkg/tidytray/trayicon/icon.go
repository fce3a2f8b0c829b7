package trayicon

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

const iconSize = 32

var (
	binBody = color.RGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff}
	binLid  = color.RGBA{R: 0x2f, G: 0x6d, B: 0xb5, A: 0xff}
	binRib  = color.RGBA{R: 0xe8, G: 0xf1, B: 0xfb, A: 0xff}
)

// Default returns the built-in icon in the format the platform expects.
func Default() []byte {
	data, err := encodeNative(renderPNG())
	if err != nil {
		logger.Error("encoding default icon", "error", err)
		return nil
	}
	return data
}

// Load reads an icon file. PNG files are converted to the platform format;
// anything else is passed through untouched.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading icon: %w", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return data, nil
	}
	return encodeNative(data)
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// renderPNG draws a small waste bin: a lid, a tapered body and three ribs.
func renderPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	fill(img, 12, 3, 20, 6, binLid)
	fill(img, 5, 6, 27, 9, binLid)
	for y := 10; y < 29; y++ {
		inset := (y - 10) / 6
		fill(img, 7+inset, y, 25-inset, y+1, binBody)
	}
	for _, x := range []int{11, 16, 21} {
		fill(img, x, 13, x+1, 26, binRib)
	}

	var buf bytes.Buffer
	// Encoding an in-memory RGBA image cannot fail.
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func fill(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
