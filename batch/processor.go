// Package batch turns many images into lithophanes concurrently.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gmlewis/lithophane/config"
	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/lithophane"
	"github.com/gmlewis/lithophane/preview"
	"github.com/gmlewis/lithophane/stl"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Settings *config.Config
	Logger   *zap.Logger

	// ProgressInterval is how often progress is logged; 0 disables it.
	ProgressInterval time.Duration
}

// Result holds the outcome of processing one input.
type Result struct {
	Input   string
	Output  string
	Preview string // empty unless a preview was written
	Stats   lithophane.Stats
	Bytes   int64
	Err     error
}

// Run processes inputs with at most Settings.Batch.Workers jobs at once
// and returns one Result per input, in input order. A failing input
// never affects the others. Inputs not started before ctx is done are
// reported with ctx's error.
func Run(ctx context.Context, cfg Config, inputs []string) ([]Result, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	workers := cfg.Settings.Batch.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	total := len(inputs)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	if cfg.ProgressInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if p := processed.Load(); p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						log.Info("progress",
							zap.Int64("done", p),
							zap.Int("total", total),
							zap.Float64("files_per_sec", rate))
					}
				}
			}
		}()
	}

	seen := make(map[string]string, total)
	var g errgroup.Group
	g.SetLimit(workers)
	for i, input := range inputs {
		results[i] = Result{Input: input, Output: OutputPath(cfg.Settings.Output.Dir, input, ".stl")}
		if prev, ok := seen[results[i].Output]; ok {
			results[i].Err = errors.Errorf("output %v would overwrite the mesh for %v", results[i].Output, prev)
			continue
		}
		seen[results[i].Output] = input

		if err := ctx.Err(); err != nil {
			results[i].Err = errors.Wrap(err, "not started")
			continue
		}
		g.Go(func() error {
			res := &results[i]
			if err := ctx.Err(); err != nil {
				res.Err = errors.Wrap(err, "not started")
				return nil
			}
			process(ctx, cfg.Settings, log.With(zap.String("input", input)), res)
			processed.Add(1)
			return nil
		})
	}
	g.Wait()
	close(done)

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("batch complete",
		zap.Int("files", total),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// OutputPath returns where the output for input goes: dir (or the
// input's own directory when dir is empty) joined with the input's
// base name and ext.
func OutputPath(dir, input, ext string) string {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+ext)
}

func process(ctx context.Context, cfg *config.Config, log *zap.Logger, res *Result) {
	if err := generate(ctx, cfg, log, res); err != nil {
		res.Err = err
		log.Error("failed", zap.Error(err))
		return
	}
	log.Info("wrote lithophane",
		zap.String("output", res.Output),
		zap.Int("width", res.Stats.Width),
		zap.Int("height", res.Stats.Height),
		zap.Int("triangles", res.Stats.Triangles),
		zap.Int("dropped", res.Stats.Dropped),
		zap.Int64("bytes", res.Bytes))
}

func generate(ctx context.Context, cfg *config.Config, log *zap.Logger, res *Result) error {
	req, err := cfg.Request(nil)
	if err != nil {
		return err
	}

	img, err := lightmap.LoadImage(res.Input)
	if err != nil {
		return errors.Wrap(err, "load")
	}
	req.Grid, err = lithophane.PrepareImage(img, req.TargetWidth, req.Filter)
	if err != nil {
		return errors.Wrap(err, "prepare")
	}

	gen := lithophane.Generator{Logger: log}
	out, err := gen.Generate(req)
	if err != nil {
		return errors.Wrapf(err, "generate %v", res.Input)
	}
	res.Stats = out.Stats

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "discarded")
	}
	if err := os.MkdirAll(filepath.Dir(res.Output), 0755); err != nil {
		return errors.Wrap(err, "output directory")
	}
	if err := out.WriteFile(res.Output, cfg.Output.Header); err != nil {
		return err
	}
	res.Bytes = stl.Size(out.Stats.Triangles)

	if cfg.Output.Preview {
		path := OutputPath(cfg.Output.Dir, res.Input, ".webp")
		if err := preview.WriteFile(path, out.Brightness); err != nil {
			return errors.Wrap(err, "preview")
		}
		res.Preview = path
	}
	return nil
}
