package lightmap

import (
	"fmt"
	"strings"
)

// Filter selects how an image is reduced to the target width.
//
// Area and Nearest work directly on brightness grids (see Resample).
// The remaining filters are interpolating kernels that are applied to
// the decoded image before it is converted (see ScaleImage).
type Filter int

const (
	Area Filter = iota
	Nearest
	ApproxBiLinear
	BiLinear
	CatmullRom
)

var filterNames = map[Filter]string{
	Area:           "area",
	Nearest:        "nearest",
	ApproxBiLinear: "approx-bilinear",
	BiLinear:       "bilinear",
	CatmullRom:     "catmull-rom",
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// IsGridFilter reports whether f can be passed to Resample.
func (f Filter) IsGridFilter() bool {
	return f == Area || f == Nearest
}

// ParseFilter returns the filter with the given name. The empty
// string selects Area.
func ParseFilter(name string) (Filter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Area, nil
	}
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return Area, fmt.Errorf("unknown filter %q", name)
}
