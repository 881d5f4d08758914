// Package lithophane runs the image-to-STL pipeline:
// resample, build heights, triangulate, serialize.
//
// Every call owns its grids and buffers from start to finish, so
// independent calls may run concurrently without locking.
package lithophane

import (
	"image"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/gmlewis/lithophane/heightfield"
	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/mesh"
	"github.com/gmlewis/lithophane/stl"
)

// Shape selects the surface layout.
type Shape string

const (
	Flat     Shape = "flat"
	Cylinder Shape = "cylinder"
)

// Request holds everything one generation needs.
type Request struct {
	// Grid is the decoded brightness image.
	Grid *lightmap.Grid

	// Scale is the height of a fully bright sample.
	Scale float64
	// TargetWidth is the number of columns after resampling.
	TargetWidth int
	// Filter is the resampling filter. Interpolating filters must
	// already have been applied with PrepareImage; the grid is then
	// point sampled.
	Filter lightmap.Filter
	// Invert makes dark samples tall instead of bright ones.
	Invert bool

	Shape  Shape
	Radius float64 // cylinder only
	Length float64 // cylinder only

	// Workers bounds mesh-building concurrency; 0 or 1 builds serially.
	Workers int
}

// Stats summarizes a generated mesh.
type Stats struct {
	Width, Height int
	Triangles     int
	Dropped       int
	MinHeight     float64
	MaxHeight     float64
	Elapsed       time.Duration
}

// Result is the output of one generation.
type Result struct {
	Brightness *lightmap.Grid
	Heights    *heightfield.Grid
	Mesh       *mesh.Buffer
	Stats      Stats
}

// Generator runs requests. The zero value is ready to use.
type Generator struct {
	Logger *zap.Logger
}

// Generate runs every pipeline stage for req and stops at the first
// failure. Dropped triangles are not a failure and are reported in
// Result.Stats.
func (g *Generator) Generate(req Request) (*Result, error) {
	log := g.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	filter := req.Filter
	if !filter.IsGridFilter() {
		filter = lightmap.Nearest
	}
	brightness, err := lightmap.Resample(req.Grid, req.TargetWidth, filter)
	if err != nil {
		return nil, errors.Wrap(err, "resample")
	}
	log.Debug("resampled",
		zap.Int("width", brightness.W),
		zap.Int("height", brightness.H),
		zap.Stringer("filter", filter))

	var hopts []heightfield.Option
	if req.Invert {
		hopts = append(hopts, heightfield.Invert())
	}
	heights, err := heightfield.Build(brightness, req.Scale, hopts...)
	if err != nil {
		return nil, errors.Wrap(err, "height field")
	}
	minH, maxH, nonFinite := heights.Range()
	log.Debug("built height field",
		zap.Float64("min", minH),
		zap.Float64("max", maxH),
		zap.Int("non_finite", nonFinite))

	mopts := []mesh.Option{mesh.Workers(req.Workers)}
	switch req.Shape {
	case "", Flat:
	case Cylinder:
		mopts = append(mopts, mesh.Cylinder(req.Radius, req.Length))
	default:
		return nil, errors.Errorf("unknown shape %q", req.Shape)
	}
	buf, err := mesh.Build(heights, mopts...)
	if err != nil {
		return nil, errors.Wrap(err, "mesh")
	}
	if buf.Dropped > 0 {
		log.Warn("dropped invalid triangles",
			zap.Int("dropped", buf.Dropped),
			zap.Int("kept", len(buf.Tris)))
	}

	res := &Result{
		Brightness: brightness,
		Heights:    heights,
		Mesh:       buf,
		Stats: Stats{
			Width:     brightness.W,
			Height:    brightness.H,
			Triangles: len(buf.Tris),
			Dropped:   buf.Dropped,
			MinHeight: minH,
			MaxHeight: maxH,
			Elapsed:   time.Since(start),
		},
	}
	log.Debug("generated mesh",
		zap.Int("triangles", res.Stats.Triangles),
		zap.Duration("elapsed", res.Stats.Elapsed))
	return res, nil
}

// Generate runs req with a Generator that does not log.
func Generate(req Request) (*Result, error) {
	var g Generator
	return g.Generate(req)
}

// PrepareImage converts a decoded image into the brightness grid for a
// request. Interpolating filters are applied to the image here; grid
// filters are left to Generate.
func PrepareImage(img image.Image, targetWidth int, filter lightmap.Filter) (*lightmap.Grid, error) {
	if filter.IsGridFilter() {
		return lightmap.FromImage(img), nil
	}
	scaled, err := lightmap.ScaleImage(img, targetWidth, filter)
	if err != nil {
		return nil, err
	}
	return lightmap.FromImage(scaled), nil
}

// Encode writes the mesh as a binary STL to w.
func (r *Result) Encode(w io.Writer, header string) (int64, error) {
	n, err := stl.Encode(w, header, r.Mesh.Tris)
	if err != nil {
		return n, &IOError{Op: "encode", Err: err}
	}
	return n, nil
}

// WriteFile writes the mesh as a binary STL to filename. The file only
// appears once it has been completely written.
func (r *Result) WriteFile(filename, header string) error {
	c, err := stl.New(filename, header)
	if err != nil {
		return &IOError{Op: "create", Path: filename, Err: err}
	}
	for i := range r.Mesh.Tris {
		if err := c.Write(&r.Mesh.Tris[i]); err != nil {
			c.Abort()
			return &IOError{Op: "write", Path: filename, Err: err}
		}
	}
	if err := c.Close(); err != nil {
		return &IOError{Op: "close", Path: filename, Err: err}
	}
	return nil
}
