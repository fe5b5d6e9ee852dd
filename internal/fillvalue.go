// Internal API, not to be exported
package internal

import (
	"math"
)

// FillDouble is the NetCDF default fill value for doubles.
const FillDouble = 9.9692099683868690e+36

// ClampFill maps values at or beyond the double fill sentinel, and NaN, to 0.
func ClampFill(v float64) float64 {
	if v >= FillDouble || v < -FillDouble || math.IsNaN(v) {
		return 0
	}
	return v
}
