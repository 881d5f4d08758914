package lightmap

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// codec is one supported input format. TGA has no magic number and is
// only tried by extension or when nothing else matches.
type codec struct {
	name         string
	magic        []string // '?' matches any byte
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

var (
	codecs = []codec{
		{"png", []string{"\x89PNG\r\n\x1a\n"}, png.Decode, png.DecodeConfig},
		{"jpeg", []string{"\xff\xd8"}, jpeg.Decode, jpeg.DecodeConfig},
		{"gif", []string{"GIF87a", "GIF89a"}, gif.Decode, gif.DecodeConfig},
		{"bmp", []string{"BM"}, bmp.Decode, bmp.DecodeConfig},
		{"tiff", []string{"II*\x00", "MM\x00*"}, tiff.Decode, tiff.DecodeConfig},
		{"webp", []string{"RIFF????WEBP"}, webp.Decode, webp.DecodeConfig},
	}
	tgaCodec = codec{name: "tga", decode: tga.Decode, decodeConfig: tga.DecodeConfig}
)

const maxMagic = 12

func match(magic string, b []byte) bool {
	if len(magic) > len(b) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != b[i] {
			return false
		}
	}
	return true
}

// sniff picks the codec whose magic number starts r, falling back to TGA.
func sniff(r *bufio.Reader) codec {
	head, _ := r.Peek(maxMagic)
	for _, c := range codecs {
		for _, m := range c.magic {
			if match(m, head) {
				return c
			}
		}
	}
	return tgaCodec
}

// Decode decodes a PNG, JPEG, GIF, BMP, TIFF, WebP or TGA image and
// returns it with its format name. The format is chosen from the
// leading bytes, never from the image package's registry.
func Decode(r io.Reader) (image.Image, string, error) {
	br := bufio.NewReader(r)
	return decodeWith(sniff(br), br)
}

// DecodeConfig returns the dimensions and format name of an image
// without decoding it.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	br := bufio.NewReader(r)
	c := sniff(br)
	cfg, err := c.decodeConfig(br)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode %v config: %w", c.name, err)
	}
	return cfg, c.name, nil
}

func decodeWith(c codec, r io.Reader) (image.Image, string, error) {
	img, err := c.decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode %v: %w", c.name, err)
	}
	return img, c.name, nil
}

// LoadImage opens and decodes the image at path. Files ending in .tga
// are decoded as TGA; everything else is sniffed.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, _, err = decodeWith(tgaCodec, bufio.NewReader(f))
	} else {
		img, _, err = Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return img, nil
}

// FromImage converts img into a grid of perceived lightness (CIE L*
// scaled to [0,1]). Alpha is ignored: non-premultiplied pixels keep
// their color even when fully transparent.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	g := &Grid{W: b.Dx(), H: b.Dy(), Values: make([]float64, b.Dx()*b.Dy())}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, gr, bl := rgb(img.At(x, y))
			g.Values[(y-b.Min.Y)*g.W+(x-b.Min.X)] = Lightness(r, gr, bl)
		}
	}
	return g
}

// rgb returns the straight (non-premultiplied) color channels of c in [0,1].
func rgb(c color.Color) (r, g, b float64) {
	switch c := c.(type) {
	case color.NRGBA:
		return float64(c.R) / 0xff, float64(c.G) / 0xff, float64(c.B) / 0xff
	case color.NRGBA64:
		return float64(c.R) / 0xffff, float64(c.G) / 0xffff, float64(c.B) / 0xffff
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return float64(n.R) / 0xffff, float64(n.G) / 0xffff, float64(n.B) / 0xffff
}

// Lightness returns the perceived lightness in [0,1] of an sRGB color
// whose channels are in [0,1].
func Lightness(r, g, b float64) float64 {
	y := 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b)
	var l float64
	if y < 216.0/24389.0 {
		l = y * 24389.0 / 27.0
	} else {
		l = 116*math.Cbrt(y) - 16
	}
	return math.Max(0, math.Min(1, l/100))
}

// linear undoes the sRGB transfer curve.
func linear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}
