// lithophane-fit generates, for each image, the widest lithophane whose
// STL file is no larger than -max bytes.
//
// The file size of a lithophane depends only on the image's aspect
// ratio and the chosen width, so the width is found without meshing
// and only the final STL is generated.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gmlewis/lithophane/batch"
	"github.com/gmlewis/lithophane/config"
	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/lithophane"
	"github.com/gmlewis/lithophane/logger"
)

var (
	maxSize    = flag.Int64("max", 50000000, "Maximum STL file size")
	dryRun     = flag.Bool("n", false, "Only print the chosen width")
	configPath = flag.String("config", "", "Path to config.yaml")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	check("config.Load: %v", err)
	zl, err := logger.New(cfg.Logger())
	check("logger.New: %v", err)
	defer zl.Sync()

	var failed bool
	for _, arg := range flag.Args() {
		f, err := os.Open(arg)
		check("os.Open: %v", err)
		ic, _, err := lightmap.DecodeConfig(f)
		f.Close()
		check("%v: %v", arg, err)

		shape := lithophane.Shape(cfg.Mesh.Shape)
		width, err := lithophane.FitWidth(ic.Width, ic.Height, *maxSize, shape)
		check("%v: %v", arg, err)
		size := lithophane.FileSize(ic.Width, ic.Height, width, shape)
		fmt.Printf("%v\t%v\t%v\n", arg, width, size)
		if *dryRun {
			continue
		}

		run := *cfg
		run.Mesh.Width = width
		results, err := batch.Run(context.Background(), batch.Config{Settings: &run, Logger: zl}, []string{arg})
		check("batch.Run: %v", err)
		if err := results[0].Err; err != nil {
			log.Printf("%v: %v", arg, err)
			failed = true
			continue
		}
		log.Printf("Wrote %v (%v bytes)", results[0].Output, results[0].Bytes)
	}

	if failed {
		zl.Sync()
		os.Exit(1)
	}
	log.Printf("Done.")
}

func check(fmtStr string, args ...interface{}) {
	if err := args[len(args)-1]; err != nil {
		log.Fatalf(fmtStr, args...)
	}
}
