// lithophane converts one or more images into binary STL lithophanes.
//
// Each image is reduced to the requested width, its perceived
// brightness becomes surface height, and the resulting height-mapped
// surface is written next to the image (or into -out) as <name>.stl.
//
// Settings come from the defaults, then -config, then flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gmlewis/lithophane/batch"
	"github.com/gmlewis/lithophane/config"
	"github.com/gmlewis/lithophane/logger"
)

func main() {
	var flags config.Flags
	configPath := flags.Register(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] image...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyFlags(flags)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	log.Debug("config", zap.Any("settings", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	results, err := batch.Run(ctx, batch.Config{
		Settings:         cfg,
		Logger:           log,
		ProgressInterval: 2 * time.Second,
	}, flag.Args())
	stop()
	if err != nil {
		log.Error("batch failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("%v: FAILED: %v\n", r.Input, r.Err)
			continue
		}
		fmt.Printf("%v -> %v: %vx%v, %v triangles (%v dropped), %v bytes\n",
			r.Input, r.Output, r.Stats.Width, r.Stats.Height, r.Stats.Triangles, r.Stats.Dropped, r.Bytes)
	}

	log.Sync()
	if failed > 0 {
		os.Exit(1)
	}
}
