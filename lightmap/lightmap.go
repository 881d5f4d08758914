// Package lightmap holds grids of perceived brightness samples and
// converts decoded images into them.
package lightmap

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension is returned when a grid or a resample target
// does not have a usable size.
var ErrInvalidDimension = errors.New("invalid dimension")

// Grid is a row-major W×H grid of brightness samples in [0,1].
// A Grid is not modified after it is built.
type Grid struct {
	W, H   int
	Values []float64
}

// New returns a grid of the given dimensions backed by values.
// values is used as-is and must not be modified by the caller afterwards.
func New(w, h int, values []float64) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid %vx%v: %w", w, h, ErrInvalidDimension)
	}
	if len(values) != w*h {
		return nil, fmt.Errorf("grid %vx%v has %v values: %w", w, h, len(values), ErrInvalidDimension)
	}
	return &Grid{W: w, H: h, Values: values}, nil
}

// FromRows builds a grid from rows of samples, rows[y][x].
func FromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows: %w", ErrInvalidDimension)
	}
	w := len(rows[0])
	values := make([]float64, 0, w*len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("row %v has %v samples, want %v: %w", y, len(row), w, ErrInvalidDimension)
		}
		values = append(values, row...)
	}
	return New(w, len(rows), values)
}

// At returns the sample at column x, row y.
func (g *Grid) At(x, y int) float64 {
	return g.Values[y*g.W+x]
}
