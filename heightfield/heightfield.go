// Package heightfield turns brightness grids into height grids.
package heightfield

import (
	"errors"
	"fmt"
	"math"

	"github.com/gmlewis/lithophane/lightmap"
)

// ErrInvalidScale is returned when the height scale is not a positive,
// finite number.
var ErrInvalidScale = errors.New("invalid scale")

// Grid is a row-major W×H grid of heights, one per brightness sample.
type Grid struct {
	W, H   int
	Scale  float64
	Values []float64
}

// Option modifies how heights are derived from brightness.
type Option func(*options)

type options struct {
	invert bool
}

// Invert makes dark samples tall and bright samples short:
// height = (1-brightness)*scale.
func Invert() Option {
	return func(o *options) { o.invert = true }
}

// Build multiplies every brightness sample by scale. Finite samples are
// clamped to [0,1] first, so every finite height lies in [0, scale].
// Non-finite samples are passed through for the mesh builder to drop.
func Build(src *lightmap.Grid, scale float64, opts ...Option) (*Grid, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("scale %v: %w", scale, ErrInvalidScale)
	}
	if src == nil || src.W <= 0 || src.H <= 0 || len(src.Values) != src.W*src.H {
		return nil, fmt.Errorf("heightfield: empty source: %w", lightmap.ErrInvalidDimension)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	values := make([]float64, len(src.Values))
	for i, b := range src.Values {
		if !math.IsNaN(b) && !math.IsInf(b, 0) {
			b = math.Max(0, math.Min(1, b))
		}
		if o.invert {
			b = 1 - b
		}
		values[i] = b * scale
	}

	return &Grid{W: src.W, H: src.H, Scale: scale, Values: values}, nil
}

// At returns the height at column x, row y.
func (g *Grid) At(x, y int) float64 {
	return g.Values[y*g.W+x]
}

// Range returns the smallest and largest finite heights and the
// number of non-finite samples.
func (g *Grid) Range() (min, max float64, nonFinite int) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range g.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			nonFinite++
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max, nonFinite
}
