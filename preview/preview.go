// Package preview renders brightness grids as grayscale images so the
// resampled input of a lithophane can be inspected.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"github.com/gmlewis/lithophane/lightmap"
)

// Image returns g as an 8-bit grayscale image. Values are clamped to
// [0,1]; non-finite values render black.
func Image(g *lightmap.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			img.SetGray(x, y, color.Gray{Y: toByte(g.At(x, y))})
		}
	}
	return img
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// Supported reports whether ext names a preview format.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".webp", ".png":
		return true
	}
	return false
}

// Encode writes img to w in the format named by ext (".webp" or ".png").
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".webp":
		if err := nativewebp.Encode(w, toNRGBA(img), nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	case ".png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("png encode: %w", err)
		}
	default:
		return fmt.Errorf("unsupported preview format %q", ext)
	}
	return nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(b)
	draw.Draw(n, b, img, b.Min, draw.Src)
	return n
}

// WriteFile writes the preview of g to path, picking the format from
// the extension. The file only appears once it is complete.
func WriteFile(path string, g *lightmap.Grid) error {
	ext := filepath.Ext(path)
	if !Supported(ext) {
		return fmt.Errorf("unsupported preview format %q", ext)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := f.Name()

	if err := Encode(f, Image(g), ext); err != nil {
		f.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%v: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
