package lightmap

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ScaleImage resizes img to targetWidth columns and the matching
// TargetHeight using one of the interpolating filters.
func ScaleImage(img image.Image, targetWidth int, filter Filter) (image.Image, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("scale image: empty image: %w", ErrInvalidDimension)
	}
	if targetWidth < MinTargetWidth {
		return nil, fmt.Errorf("scale image: target width %v < %v: %w", targetWidth, MinTargetWidth, ErrInvalidDimension)
	}

	var s draw.Scaler
	switch filter {
	case Nearest:
		s = draw.NearestNeighbor
	case ApproxBiLinear:
		s = draw.ApproxBiLinear
	case BiLinear:
		s = draw.BiLinear
	case CatmullRom:
		s = draw.CatmullRom
	default:
		return nil, fmt.Errorf("scale image: %v is not an image filter", filter)
	}

	dst := image.NewNRGBA64(image.Rect(0, 0, targetWidth, TargetHeight(b.Dx(), b.Dy(), targetWidth)))
	s.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}
