package config

import "flag"

// Flags holds CLI flag values that override config file settings.
// Zero values leave the config untouched.
type Flags struct {
	Width   int
	Scale   float64
	Filter  string
	Invert  bool
	Shape   string
	Radius  float64
	Length  float64
	OutDir  string
	Preview bool
	Workers int
	Debug   bool
	LogFile string
}

// Register binds f to flags on fs and returns the -config flag.
func (f *Flags) Register(fs *flag.FlagSet) *string {
	fs.IntVar(&f.Width, "width", 0, "Output width in grid cells (default 80)")
	fs.Float64Var(&f.Scale, "scale", 0, "Height of a fully bright pixel (default 2.0)")
	fs.StringVar(&f.Filter, "filter", "", "Resampling filter: area, nearest, approx-bilinear, bilinear, catmull-rom")
	fs.BoolVar(&f.Invert, "invert", false, "Make dark pixels tall instead of bright ones")
	fs.StringVar(&f.Shape, "shape", "", "Surface shape: flat or cylinder")
	fs.Float64Var(&f.Radius, "radius", 0, "Cylinder radius (default 20)")
	fs.Float64Var(&f.Length, "length", 0, "Cylinder length (default 20)")
	fs.StringVar(&f.OutDir, "out", "", "Output directory (default: next to each image)")
	fs.BoolVar(&f.Preview, "preview", false, "Also write a WebP preview of the resampled image")
	fs.IntVar(&f.Workers, "workers", 0, "Number of images processed concurrently (default: NumCPU)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log", "", "Also log to this file")
	return fs.String("config", "", "Path to config.yaml")
}

// ApplyFlags applies CLI flag overrides to the config.
func (c *Config) ApplyFlags(f Flags) {
	if f.Width > 0 {
		c.Mesh.Width = f.Width
	}
	if f.Scale > 0 {
		c.Mesh.Scale = f.Scale
	}
	if f.Filter != "" {
		c.Mesh.Filter = f.Filter
	}
	if f.Invert {
		c.Mesh.Invert = true
	}
	if f.Shape != "" {
		c.Mesh.Shape = f.Shape
	}
	if f.Radius > 0 {
		c.Mesh.Radius = f.Radius
	}
	if f.Length > 0 {
		c.Mesh.Length = f.Length
	}
	if f.OutDir != "" {
		c.Output.Dir = f.OutDir
	}
	if f.Preview {
		c.Output.Preview = true
	}
	if f.Workers > 0 {
		c.Batch.Workers = f.Workers
	}
	if f.Debug {
		c.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		c.Logging.File = f.LogFile
	}
}
