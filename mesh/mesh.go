// Package mesh triangulates height grids into open STL surfaces.
//
// Only the height-mapped top surface is produced. There is no base,
// no side wall and no cap; closing the solid is left to the slicer.
package mesh

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gmlewis/lithophane/heightfield"
	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/stl"
)

// ErrDegenerateMesh is returned when every triangle was dropped.
var ErrDegenerateMesh = errors.New("degenerate mesh: no valid triangles")

// Buffer is the ordered triangle list of one generation run.
type Buffer struct {
	Tris []stl.Tri

	// Dropped counts triangles rejected for non-finite coordinates,
	// coincident vertices or a zero-area face.
	Dropped int
}

// Option configures Build.
type Option func(*options)

type options struct {
	workers int
	shape   surface
}

// Workers builds rows in up to n concurrent chunks. Output is identical
// to the serial build.
func Workers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Cylinder wraps the surface around a vertical cylinder of the given
// radius, with the image spanning length along -Z.
func Cylinder(radius, length float64) Option {
	return func(o *options) { o.shape = &cylinder{radius: radius, length: length} }
}

// Build triangulates hf. Each grid cell yields two triangles; invalid
// triangles are dropped and counted instead of emitted.
func Build(hf *heightfield.Grid, opts ...Option) (*Buffer, error) {
	if hf == nil || hf.W < 2 || hf.H < 2 || len(hf.Values) != hf.W*hf.H {
		var w, h int
		if hf != nil {
			w, h = hf.W, hf.H
		}
		return nil, fmt.Errorf("mesh: %vx%v grid: %w", w, h, lightmap.ErrInvalidDimension)
	}

	o := options{workers: 1, shape: flat{}}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.shape.check(); err != nil {
		return nil, err
	}

	rows := hf.H - 1
	workers := o.workers
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}

	chunks := make([]Buffer, workers)
	var wg sync.WaitGroup
	for i := range chunks {
		y0, y1 := i*rows/workers, (i+1)*rows/workers
		wg.Add(1)
		go func(b *Buffer) {
			defer wg.Done()
			buildRows(b, hf, o.shape, y0, y1)
		}(&chunks[i])
	}
	wg.Wait()

	buf := &Buffer{Tris: make([]stl.Tri, 0, 2*o.shape.columns(hf.W)*rows)}
	for _, c := range chunks {
		buf.Tris = append(buf.Tris, c.Tris...)
		buf.Dropped += c.Dropped
	}
	if len(buf.Tris) == 0 {
		return nil, fmt.Errorf("mesh: %v of %v triangles dropped: %w", buf.Dropped, buf.Dropped, ErrDegenerateMesh)
	}
	return buf, nil
}

// MaxTriangles returns the number of triangles Build emits for a W×H
// grid when nothing is dropped.
func MaxTriangles(w, h int, opts ...Option) int {
	o := options{shape: flat{}}
	for _, opt := range opts {
		opt(&o)
	}
	if w < 2 || h < 2 {
		return 0
	}
	return 2 * o.shape.columns(w) * (h - 1)
}

// buildRows emits the cells of rows [y0, y1) in row-major order.
func buildRows(b *Buffer, hf *heightfield.Grid, s surface, y0, y1 int) {
	cols := s.columns(hf.W)
	b.Tris = make([]stl.Tri, 0, 2*cols*(y1-y0))
	for y := y0; y < y1; y++ {
		for x := 0; x < cols; x++ {
			x1 := (x + 1) % hf.W
			a := s.vertex(hf, x, y)
			bv := s.vertex(hf, x1, y)
			c := s.vertex(hf, x, y+1)
			d := s.vertex(hf, x1, y+1)
			for _, t := range s.split(a, bv, c, d) {
				if tri, ok := triangle(t[0], t[1], t[2]); ok {
					b.Tris = append(b.Tris, tri)
				} else {
					b.Dropped++
				}
			}
		}
	}
}

// triangle validates v1, v2, v3 and computes their unit normal from
// the winding order.
func triangle(v1, v2, v3 mgl32.Vec3) (stl.Tri, bool) {
	for _, v := range [3]mgl32.Vec3{v1, v2, v3} {
		if !finite(v) {
			return stl.Tri{}, false
		}
	}
	if v1 == v2 || v2 == v3 || v1 == v3 {
		return stl.Tri{}, false
	}

	n := v2.Sub(v1).Cross(v3.Sub(v1))
	l := n.Len()
	if l == 0 || math.IsInf(float64(l), 0) || math.IsNaN(float64(l)) {
		return stl.Tri{}, false
	}
	return stl.Tri{N: n.Mul(1 / l), V1: v1, V2: v2, V3: v3}, true
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
