package lithophane

import (
	"github.com/pkg/errors"

	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/mesh"
	"github.com/gmlewis/lithophane/stl"
)

// MaxFitWidth bounds the widths FitWidth considers.
const MaxFitWidth = 1 << 16

// FileSize returns the binary STL size of a srcW×srcH image rendered
// at targetWidth, assuming no triangle is dropped.
func FileSize(srcW, srcH, targetWidth int, shape Shape) int64 {
	var opts []mesh.Option
	if shape == Cylinder {
		opts = append(opts, mesh.Cylinder(1, 1))
	}
	h := lightmap.TargetHeight(srcW, srcH, targetWidth)
	return stl.Size(mesh.MaxTriangles(targetWidth, h, opts...))
}

// FitWidth returns the largest target width, up to MaxFitWidth, whose
// STL for a srcW×srcH image is no larger than maxBytes. The search
// starts at lightmap.MinTargetWidth.
func FitWidth(srcW, srcH int, maxBytes int64, shape Shape) (int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, errors.Wrapf(ErrInvalidDimension, "%vx%v image", srcW, srcH)
	}
	size := func(w int) int64 { return FileSize(srcW, srcH, w, shape) }

	lo := lightmap.MinTargetWidth
	if size(lo) > maxBytes {
		return 0, errors.Errorf("smallest mesh needs %v bytes, more than %v", size(lo), maxBytes)
	}

	// Size never shrinks as width grows, so bracket then bisect.
	hi := 2 * lo
	for hi <= MaxFitWidth && size(hi) <= maxBytes {
		lo, hi = hi, 2*hi
	}
	if hi > MaxFitWidth {
		if size(MaxFitWidth) <= maxBytes {
			return MaxFitWidth, nil
		}
		hi = MaxFitWidth
	}
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if size(mid) <= maxBytes {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}
