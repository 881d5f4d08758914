// stl-stats checks binary STL files against their length contract and
// prints their triangle count, bounding box and surface area.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/gmlewis/lithophane/stl"
)

func main() {
	flag.Parse()

	var failed bool
	for _, arg := range flag.Args() {
		fi, err := os.Stat(arg)
		check("os.Stat: %v", err)

		m, err := stl.ReadFile(arg)
		if err != nil {
			log.Printf("%v: %v", arg, err)
			failed = true
			continue
		}
		if err := stl.Validate(fi.Size(), uint32(len(m.Tris))); err != nil {
			log.Printf("%v: %v", arg, err)
			failed = true
			continue
		}

		s := measure(m)
		fmt.Printf("%v\n", arg)
		fmt.Printf("  header:    %q\n", m.Header)
		fmt.Printf("  triangles: %v\n", len(m.Tris))
		fmt.Printf("  size:      %v bytes\n", fi.Size())
		fmt.Printf("  min:       %v %v %v\n", s.Min.X, s.Min.Y, s.Min.Z)
		fmt.Printf("  max:       %v %v %v\n", s.Max.X, s.Max.Y, s.Max.Z)
		fmt.Printf("  area:      %v\n", s.Area)
	}

	if failed {
		os.Exit(1)
	}
	log.Printf("Done.")
}

type summary struct {
	Min, Max r3.Vec
	Area     float64
}

func vec(v [3]float32) r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// measure returns the bounding box and total area of m. An empty mesh
// has a zero box.
func measure(m *stl.Mesh) summary {
	if len(m.Tris) == 0 {
		return summary{}
	}
	inf := math.Inf(1)
	s := summary{
		Min: r3.Vec{X: inf, Y: inf, Z: inf},
		Max: r3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
	for _, t := range m.Tris {
		a, b, c := vec(t.V1), vec(t.V2), vec(t.V3)
		for _, v := range []r3.Vec{a, b, c} {
			s.Min = r3.Vec{X: math.Min(s.Min.X, v.X), Y: math.Min(s.Min.Y, v.Y), Z: math.Min(s.Min.Z, v.Z)}
			s.Max = r3.Vec{X: math.Max(s.Max.X, v.X), Y: math.Max(s.Max.Y, v.Y), Z: math.Max(s.Max.Z, v.Z)}
		}
		s.Area += r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
	}
	return s
}

func check(fmtStr string, args ...interface{}) {
	if err := args[len(args)-1]; err != nil {
		log.Fatalf(fmtStr, args...)
	}
}
