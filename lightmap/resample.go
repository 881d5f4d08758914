package lightmap

import (
	"fmt"
	"math"
)

const (
	// MinTargetWidth is the smallest width Resample accepts.
	MinTargetWidth = 2
	// MinTargetHeight is the smallest height Resample will produce.
	MinTargetHeight = 2
)

// TargetHeight returns the output height that preserves the
// srcW:srcH aspect ratio at targetWidth columns, rounded to the
// nearest row and never less than MinTargetHeight.
func TargetHeight(srcW, srcH, targetWidth int) int {
	h := int(math.Round(float64(targetWidth) * float64(srcH) / float64(srcW)))
	if h < MinTargetHeight {
		return MinTargetHeight
	}
	return h
}

// Resample returns a targetWidth×TargetHeight copy of src using the
// given grid filter. Source coordinates are clamped to the grid.
func Resample(src *Grid, targetWidth int, filter Filter) (*Grid, error) {
	if src == nil || src.W <= 0 || src.H <= 0 || len(src.Values) != src.W*src.H {
		return nil, fmt.Errorf("resample: empty source: %w", ErrInvalidDimension)
	}
	if targetWidth < MinTargetWidth {
		return nil, fmt.Errorf("resample: target width %v < %v: %w", targetWidth, MinTargetWidth, ErrInvalidDimension)
	}
	targetHeight := TargetHeight(src.W, src.H, targetWidth)

	var xs, ys []span
	switch filter {
	case Area:
		xs = boxSpans(src.W, targetWidth)
		ys = boxSpans(src.H, targetHeight)
	case Nearest:
		xs = pointSpans(src.W, targetWidth)
		ys = pointSpans(src.H, targetHeight)
	default:
		return nil, fmt.Errorf("resample: %v is not a grid filter", filter)
	}

	values := make([]float64, targetWidth*targetHeight)
	for y, sy := range ys {
		for x, sx := range xs {
			var sum, weight float64
			for j, row := range sy.idx {
				for i, col := range sx.idx {
					w := sy.w[j] * sx.w[i]
					sum += w * src.Values[row*src.W+col]
					weight += w
				}
			}
			values[y*targetWidth+x] = sum / weight
		}
	}

	return &Grid{W: targetWidth, H: targetHeight, Values: values}, nil
}

// span lists the source indices (and their weights) that contribute
// to one output index along a single axis.
type span struct {
	idx []int
	w   []float64
}

func pointSpans(srcN, dstN int) []span {
	scale := float64(srcN) / float64(dstN)
	spans := make([]span, dstN)
	for i := range spans {
		spans[i] = span{idx: []int{clamp(int((float64(i)+0.5)*scale), srcN)}, w: []float64{1}}
	}
	return spans
}

// boxSpans computes area-average weights: each output cell covers
// [i*scale, (i+1)*scale) of the source axis and every source cell it
// overlaps contributes by the length of the overlap.
func boxSpans(srcN, dstN int) []span {
	scale := float64(srcN) / float64(dstN)
	spans := make([]span, dstN)
	for i := range spans {
		lo := float64(i) * scale
		hi := float64(i+1) * scale
		var s span
		for j := int(math.Floor(lo)); float64(j) < hi; j++ {
			overlap := math.Min(hi, float64(j+1)) - math.Max(lo, float64(j))
			if overlap <= 0 {
				continue
			}
			s.idx = append(s.idx, clamp(j, srcN))
			s.w = append(s.w, overlap)
		}
		if len(s.idx) == 0 { // rounding left nothing; fall back to a point sample
			s = span{idx: []int{clamp(int(lo), srcN)}, w: []float64{1}}
		}
		spans[i] = s
	}
	return spans
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
