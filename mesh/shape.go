package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gmlewis/lithophane/heightfield"
)

// surface maps grid samples to vertices and splits each cell into two
// consistently wound triangles.
type surface interface {
	check() error
	// columns is the number of cells per row.
	columns(w int) int
	vertex(hf *heightfield.Grid, x, y int) mgl32.Vec3
	// split receives the cell corners a=(x,y) b=(x+1,y) c=(x,y+1) d=(x+1,y+1).
	split(a, b, c, d mgl32.Vec3) [2][3]mgl32.Vec3
}

// flat lays the grid out on the XY plane, one unit per sample, with
// the height on +Z.
type flat struct{}

func (flat) check() error { return nil }

func (flat) columns(w int) int { return w - 1 }

func (flat) vertex(hf *heightfield.Grid, x, y int) mgl32.Vec3 {
	return mgl32.Vec3{float32(x), float32(y), float32(hf.At(x, y))}
}

// split winds both triangles counter-clockwise seen from +Z.
func (flat) split(a, b, c, d mgl32.Vec3) [2][3]mgl32.Vec3 {
	return [2][3]mgl32.Vec3{{a, b, c}, {b, d, c}}
}

// cylinder wraps columns around the Z axis. The last column is joined
// back to the first.
type cylinder struct {
	radius float64
	length float64
}

func (c *cylinder) check() error {
	if !(c.radius > 0) || math.IsInf(c.radius, 0) {
		return fmt.Errorf("mesh: cylinder radius %v must be positive", c.radius)
	}
	if !(c.length > 0) || math.IsInf(c.length, 0) {
		return fmt.Errorf("mesh: cylinder length %v must be positive", c.length)
	}
	return nil
}

func (c *cylinder) columns(w int) int { return w }

func (c *cylinder) vertex(hf *heightfield.Grid, x, y int) mgl32.Vec3 {
	angle := 2 * math.Pi * float64(x) / float64(hf.W)
	sin, cos := math.Sincos(angle)
	r := c.radius + hf.At(x, y)
	z := -float64(y) / float64(hf.H) * c.length
	return mgl32.Vec3{float32(r * cos), float32(r * sin), float32(z)}
}

// split winds both triangles counter-clockwise seen from outside the
// cylinder.
func (c *cylinder) split(a, b, cc, d mgl32.Vec3) [2][3]mgl32.Vec3 {
	return [2][3]mgl32.Vec3{{a, cc, b}, {b, cc, d}}
}
