package mesh

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/gmlewis/lithophane/heightfield"
	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/stl"
)

func grid(w, h int, f func(x, y int) float64) *heightfield.Grid {
	g := &heightfield.Grid{W: w, H: h, Scale: 1, Values: make([]float64, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Values[y*w+x] = f(x, y)
		}
	}
	return g
}

func ripple(x, y int) float64 {
	return 1 + math.Sin(float64(x)*0.7)*math.Cos(float64(y)*0.3)
}

func near(a, b [3]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			return false
		}
	}
	return true
}

func TestBuildTwoByTwo(t *testing.T) {
	hf := &heightfield.Grid{W: 2, H: 2, Scale: 2, Values: []float64{0, 2, 2, 0}}

	buf, err := Build(hf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(buf.Tris) != 2 || buf.Dropped != 0 {
		t.Fatalf("got %v triangles (%v dropped), want 2 (0 dropped)", len(buf.Tris), buf.Dropped)
	}

	want := []stl.Tri{
		{
			N:  [3]float32{-2.0 / 3, -2.0 / 3, 1.0 / 3},
			V1: [3]float32{0, 0, 0},
			V2: [3]float32{1, 0, 2},
			V3: [3]float32{0, 1, 2},
		},
		{
			N:  [3]float32{2.0 / 3, 2.0 / 3, 1.0 / 3},
			V1: [3]float32{1, 0, 2},
			V2: [3]float32{1, 1, 0},
			V3: [3]float32{0, 1, 2},
		},
	}
	for i, got := range buf.Tris {
		if !near(got.N, want[i].N) || got.V1 != want[i].V1 || got.V2 != want[i].V2 || got.V3 != want[i].V3 {
			t.Errorf("triangle %v = %+v, want %+v", i, got, want[i])
		}
		for _, v := range [][3]float32{got.V1, got.V2, got.V3} {
			if v[2] != 0 && v[2] != 2 {
				t.Errorf("triangle %v has z=%v, want 0 or 2", i, v[2])
			}
		}
	}
}

func TestBuildTriangleCount(t *testing.T) {
	for _, dims := range [][2]int{{2, 2}, {2, 5}, {5, 2}, {3, 3}, {17, 9}, {80, 60}} {
		w, h := dims[0], dims[1]
		t.Run(fmt.Sprintf("%vx%v", w, h), func(t *testing.T) {
			buf, err := Build(grid(w, h, ripple))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			want := 2 * (w - 1) * (h - 1)
			if len(buf.Tris) != want || buf.Dropped != 0 {
				t.Errorf("got %v triangles (%v dropped), want %v", len(buf.Tris), buf.Dropped, want)
			}
			if got := MaxTriangles(w, h); got != want {
				t.Errorf("MaxTriangles = %v, want %v", got, want)
			}
		})
	}
}

func TestBuildNormals(t *testing.T) {
	buf, err := Build(grid(12, 7, ripple))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, tri := range buf.Tris {
		n := tri.N
		l := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		if math.Abs(l-1) > 1e-5 {
			t.Errorf("triangle %v: |N| = %v, want 1", i, l)
		}
		if n[2] <= 0 {
			t.Errorf("triangle %v: normal %v points away from +Z", i, n)
		}
	}
}

func TestBuildEmissionOrder(t *testing.T) {
	buf, err := Build(grid(3, 3, func(x, y int) float64 { return float64(x + 10*y) }))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Cells are visited row by row, two triangles per cell.
	wantFirst := [][3]float32{{0, 0, 0}, {1, 0, 1}, {1, 0, 1}, {2, 0, 2}, {0, 1, 10}, {1, 1, 11}, {1, 1, 11}, {2, 1, 12}}
	for i, want := range wantFirst {
		if got := buf.Tris[i].V1; got != want {
			t.Errorf("triangle %v starts at %v, want %v", i, got, want)
		}
	}
}

func TestBuildDropsNaN(t *testing.T) {
	hf := grid(3, 3, func(x, y int) float64 {
		if x == 1 && y == 1 {
			return math.NaN()
		}
		return 1
	})

	buf, err := Build(hf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Six of the eight triangles touch the centre sample.
	if len(buf.Tris) != 2 || buf.Dropped != 6 {
		t.Errorf("got %v triangles (%v dropped), want 2 (6 dropped)", len(buf.Tris), buf.Dropped)
	}
	if len(buf.Tris)+buf.Dropped != MaxTriangles(3, 3) {
		t.Errorf("kept+dropped = %v, want %v", len(buf.Tris)+buf.Dropped, MaxTriangles(3, 3))
	}
	for i, tri := range buf.Tris {
		for _, v := range [][3]float32{tri.N, tri.V1, tri.V2, tri.V3} {
			for _, c := range v {
				if math.IsNaN(float64(c)) {
					t.Errorf("triangle %v contains NaN: %+v", i, tri)
				}
			}
		}
	}
}

func TestBuildDropsInf(t *testing.T) {
	hf := grid(4, 4, func(x, y int) float64 {
		if x == 0 && y == 0 {
			return math.Inf(1)
		}
		return 0.5
	})
	buf, err := Build(hf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if buf.Dropped != 1 || len(buf.Tris) != MaxTriangles(4, 4)-1 {
		t.Errorf("got %v triangles (%v dropped)", len(buf.Tris), buf.Dropped)
	}
}

func TestBuildDegenerate(t *testing.T) {
	hf := grid(3, 2, func(x, y int) float64 { return math.NaN() })
	if _, err := Build(hf); !errors.Is(err, ErrDegenerateMesh) {
		t.Errorf("Build error = %v, want ErrDegenerateMesh", err)
	}
}

func TestBuildInvalidDimension(t *testing.T) {
	tests := []struct {
		name string
		hf   *heightfield.Grid
	}{
		{name: "nil"},
		{name: "1x5", hf: grid(1, 5, ripple)},
		{name: "5x1", hf: grid(5, 1, ripple)},
		{name: "short values", hf: &heightfield.Grid{W: 2, H: 2, Values: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.hf); !errors.Is(err, lightmap.ErrInvalidDimension) {
				t.Errorf("Build error = %v, want ErrInvalidDimension", err)
			}
		})
	}
}

func TestBuildWorkersMatchSerial(t *testing.T) {
	hf := grid(31, 23, func(x, y int) float64 {
		if x == 7 && y == 5 {
			return math.NaN()
		}
		return ripple(x, y)
	})
	serial, err := Build(hf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, n := range []int{0, 2, 3, 8, 22, 100} {
		t.Run(fmt.Sprintf("workers=%v", n), func(t *testing.T) {
			got, err := Build(hf, Workers(n))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got.Dropped != serial.Dropped || len(got.Tris) != len(serial.Tris) {
				t.Fatalf("got %v triangles (%v dropped), want %v (%v dropped)", len(got.Tris), got.Dropped, len(serial.Tris), serial.Dropped)
			}
			for i := range got.Tris {
				if got.Tris[i] != serial.Tris[i] {
					t.Fatalf("triangle %v differs: %+v vs %+v", i, got.Tris[i], serial.Tris[i])
				}
			}
		})
	}
}

func TestBuildCylinder(t *testing.T) {
	const w, h = 8, 3
	buf, err := Build(grid(w, h, ripple), Cylinder(10, 20))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := 2 * w * (h - 1); len(buf.Tris) != want || MaxTriangles(w, h, Cylinder(10, 20)) != want {
		t.Fatalf("got %v triangles, want %v", len(buf.Tris), want)
	}
	for i, tri := range buf.Tris {
		// Outward normals point the same way as the centroid's radial direction.
		cx := (tri.V1[0] + tri.V2[0] + tri.V3[0]) / 3
		cy := (tri.V1[1] + tri.V2[1] + tri.V3[1]) / 3
		if dot := tri.N[0]*cx + tri.N[1]*cy; dot <= 0 {
			t.Errorf("triangle %v: normal %v points inward", i, tri.N)
		}
		for _, v := range [][3]float32{tri.V1, tri.V2, tri.V3} {
			if v[2] > 0 || v[2] < -20 {
				t.Errorf("triangle %v: z=%v outside [-20, 0]", i, v[2])
			}
		}
	}
}

func TestBuildCylinderInvalid(t *testing.T) {
	for _, opt := range []Option{Cylinder(0, 10), Cylinder(-1, 10), Cylinder(10, 0), Cylinder(math.NaN(), 1), Cylinder(1, math.Inf(1))} {
		if _, err := Build(grid(4, 4, ripple), opt); err == nil {
			t.Error("Build: expected error for invalid cylinder")
		}
	}
}
