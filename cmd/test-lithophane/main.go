// -*- compile-command: "go run main.go"; -*-

// test-lithophane writes out simple STL example files.
package main

import (
	"log"
	"math"

	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/lithophane"
	"github.com/gmlewis/lithophane/stl"
)

func main() {
	checker, err := lightmap.FromRows([][]float64{{0, 1}, {1, 0}})
	check("lightmap.FromRows: %v", err)
	write("checker.stl", lithophane.Request{Grid: checker, Scale: 2, TargetWidth: 2})

	const w, h = 64, 48
	values := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x-w/2), float64(y-h/2)
			values[y*w+x] = 0.5 + 0.5*math.Cos(math.Hypot(dx, dy)/3)
		}
	}
	ripple, err := lightmap.New(w, h, values)
	check("lightmap.New: %v", err)
	write("ripple.stl", lithophane.Request{Grid: ripple, Scale: 2, TargetWidth: w})
	write("ripple-cylinder.stl", lithophane.Request{
		Grid: ripple, Scale: 2, TargetWidth: w,
		Shape: lithophane.Cylinder, Radius: 20, Length: 20,
	})

	log.Printf("Done.")
}

func write(filename string, req lithophane.Request) {
	res, err := lithophane.Generate(req)
	check("lithophane.Generate: %v", err)
	err = res.WriteFile(filename, stl.DefaultHeader)
	check("WriteFile: %v", err)
	log.Printf("Wrote %v: %v triangles", filename, res.Stats.Triangles)
}

func check(fmtStr string, args ...interface{}) {
	if err := args[len(args)-1]; err != nil {
		log.Fatalf(fmtStr, args...)
	}
}
