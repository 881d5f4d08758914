package lithophane

import (
	"errors"
	"fmt"

	"github.com/gmlewis/lithophane/heightfield"
	"github.com/gmlewis/lithophane/lightmap"
	"github.com/gmlewis/lithophane/mesh"
)

var (
	// ErrInvalidDimension reports a bad resample target or source grid.
	ErrInvalidDimension = lightmap.ErrInvalidDimension
	// ErrInvalidScale reports a non-positive or non-finite scale.
	ErrInvalidScale = heightfield.ErrInvalidScale
	// ErrDegenerateMesh reports that no triangle survived validation.
	ErrDegenerateMesh = mesh.ErrDegenerateMesh
	// ErrIOFailure reports that the output could not be written.
	ErrIOFailure = errors.New("i/o failure")
)

// IOError records a failed write of the output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%v %v: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIOFailure) true for every IOError.
func (e *IOError) Is(target error) bool { return target == ErrIOFailure }
