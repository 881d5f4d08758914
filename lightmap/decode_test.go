package lightmap

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var testColors = []color.Color{
	color.NRGBA{A: 255},
	color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 128, G: 128, B: 128, A: 255},
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i, c := range testColors {
		img.Set(i%3, i/3, c)
	}
	return img
}

func encodeGIF(w *bytes.Buffer, img image.Image) error {
	p := image.NewPaletted(img.Bounds(), testColors)
	draw.Draw(p, p.Bounds(), img, image.Point{}, draw.Src)
	return gif.Encode(w, p, nil)
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		format string
		encode func(*bytes.Buffer, image.Image) error
	}{
		{"png", func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) }},
		{"gif", encodeGIF},
		{"bmp", func(b *bytes.Buffer, img image.Image) error { return bmp.Encode(b, img) }},
		{"tiff", func(b *bytes.Buffer, img image.Image) error { return tiff.Encode(b, img, nil) }},
		{"webp", func(b *bytes.Buffer, img image.Image) error { return nativewebp.Encode(b, img, nil) }},
		{"tga", func(b *bytes.Buffer, img image.Image) error { return tga.Encode(b, img) }},
	}
	want := FromImage(testImage())
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf, testImage()))
			data := buf.Bytes()

			img, format, err := Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)

			got := FromImage(img)
			require.Equal(t, want.W, got.W)
			require.Equal(t, want.H, got.H)
			for i := range want.Values {
				assert.InDelta(t, want.Values[i], got.Values[i], 1e-6, "sample %v", i)
			}

			cfg, format, err := DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 3, cfg.Width)
			assert.Equal(t, 2, cfg.Height)
		})
	}
}

func TestDecodeJPEG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 119, G: 119, B: 119, A: 255}), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))

	got, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	g := FromImage(got)
	for _, v := range g.Values {
		assert.InDelta(t, 0.5, v, 0.02)
	}
}

func TestDecodeUnknown(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("qoif not really")))
	assert.Error(t, err)
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	want := FromImage(testImage())

	var pngBuf, tgaBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, testImage()))
	require.NoError(t, tga.Encode(&tgaBuf, testImage()))
	files := map[string][]byte{
		"in.png": pngBuf.Bytes(),
		"in.tga": tgaBuf.Bytes(),
		"in.TGA": tgaBuf.Bytes(),
		"tga.img": tgaBuf.Bytes(), // no known magic, falls back to TGA
	}
	for name, data := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, data, 0644))

			img, err := LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
			got := FromImage(img)
			for i := range want.Values {
				assert.InDelta(t, want.Values[i], got.Values[i], 1e-6)
			}
		})
	}

	_, err := LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestLightnessOrdering(t *testing.T) {
	g := FromImage(testImage())
	// Green reads brightest of the primaries, blue darkest.
	assert.Greater(t, g.At(0, 1), g.At(2, 0))
	assert.Greater(t, g.At(2, 0), g.At(1, 1))
}

func TestFromImageIgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	g := FromImage(img)
	assert.InDelta(t, 1, g.At(0, 0), 1e-9, "transparent white keeps its color")
	assert.InDelta(t, 1, g.At(1, 0), 1e-9)
}
