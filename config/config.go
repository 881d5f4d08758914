// Package config handles lithophane configuration loading and management.
package config

import (
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/lithophane"
	"github.com/gmlewis/lithophane/logger"
	"github.com/gmlewis/lithophane/stl"
)

// Config holds all settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Output  OutputConfig  `yaml:"output"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds the generation parameters.
type MeshConfig struct {
	Width   int     `yaml:"width"`
	Scale   float64 `yaml:"scale"`
	Filter  string  `yaml:"filter"`
	Invert  bool    `yaml:"invert"`
	Shape   string  `yaml:"shape"`
	Radius  float64 `yaml:"radius"`
	Length  float64 `yaml:"length"`
	Workers int     `yaml:"workers"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir     string `yaml:"dir"` // empty writes next to the input
	Header  string `yaml:"header"`
	Preview bool   `yaml:"preview"`
}

// BatchConfig controls how many files are processed at once.
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 uses one per CPU
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with default values.
func Default() *Config {
	fc := logger.DefaultFileConfig("")
	return &Config{
		Mesh: MeshConfig{
			Width:  80,
			Scale:  2.0,
			Filter: lightmap.Area.String(),
			Shape:  string(lithophane.Flat),
			Radius: 20,
			Length: 20,
		},
		Output: OutputConfig{
			Header: stl.DefaultHeader,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  fc.MaxSizeMB,
			MaxBackups: fc.MaxBackups,
			MaxAgeDays: fc.MaxAgeDays,
			Compress:   fc.Compress,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "loading config from %s", path)
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that would make generation fail.
func (c *Config) Validate() error {
	m := c.Mesh
	if m.Width < lightmap.MinTargetWidth {
		return errors.Errorf("mesh.width %v must be at least %v", m.Width, lightmap.MinTargetWidth)
	}
	if !(m.Scale > 0) || math.IsInf(m.Scale, 0) {
		return errors.Errorf("mesh.scale %v must be a positive number", m.Scale)
	}
	if _, err := lightmap.ParseFilter(m.Filter); err != nil {
		return errors.Wrap(err, "mesh.filter")
	}
	switch lithophane.Shape(m.Shape) {
	case lithophane.Flat:
	case lithophane.Cylinder:
		if !(m.Radius > 0) || !(m.Length > 0) {
			return errors.Errorf("mesh.radius %v and mesh.length %v must be positive for a cylinder", m.Radius, m.Length)
		}
	default:
		return errors.Errorf("unknown mesh.shape %q", m.Shape)
	}
	return nil
}

// Request converts the mesh settings into a generation request for grid.
func (c *Config) Request(grid *lightmap.Grid) (lithophane.Request, error) {
	filter, err := lightmap.ParseFilter(c.Mesh.Filter)
	if err != nil {
		return lithophane.Request{}, err
	}
	return lithophane.Request{
		Grid:        grid,
		Scale:       c.Mesh.Scale,
		TargetWidth: c.Mesh.Width,
		Filter:      filter,
		Invert:      c.Mesh.Invert,
		Shape:       lithophane.Shape(c.Mesh.Shape),
		Radius:      c.Mesh.Radius,
		Length:      c.Mesh.Length,
		Workers:     c.Mesh.Workers,
	}, nil
}

// Logger returns the logger settings.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:   c.Logging.Level,
		Console: true,
		File: logger.FileConfig{
			Path:       c.Logging.File,
			MaxSizeMB:  c.Logging.MaxSizeMB,
			MaxBackups: c.Logging.MaxBackups,
			MaxAgeDays: c.Logging.MaxAgeDays,
			Compress:   c.Logging.Compress,
		},
	}
}
