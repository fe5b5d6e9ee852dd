package scan

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"
)

// gaussianLatitudes returns the n Gaussian latitudes in degrees, south to
// north. They are the arcsines of the Gauss-Legendre nodes on [-1, 1].
func gaussianLatitudes(n int) []float64 {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	sort.Float64s(x)
	lats := make([]float64, n)
	for i, xi := range x {
		lats[i] = math.Asin(xi) * 180 / math.Pi
	}
	return lats
}

// isGaussianLatitudes reports whether lats are the Gaussian latitudes of
// their count, in either direction. The tolerance is a small fraction of
// the first spacing.
func isGaussianLatitudes(lats []float64) bool {
	n := len(lats)
	if n < 2 {
		return false
	}
	tol := math.Abs(lats[0]-lats[1]) / 500
	gauss := gaussianLatitudes(n)
	northToSouth := lats[0] > lats[n-1]
	for i, lat := range lats {
		g := gauss[i]
		if northToSouth {
			g = gauss[n-1-i]
		}
		if math.Abs(lat-g) > tol {
			return false
		}
	}
	return true
}
