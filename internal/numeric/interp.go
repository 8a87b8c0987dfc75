// Package numeric holds the small numerical helpers shared by the curve
// pipeline: clamped interpolation, grids, integration and rounding.
package numeric

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-vecmath"
)

// Interpolate evaluates the piecewise linear function through (xs, ys) at q.
// Queries outside [xs[0], xs[len-1]] are clamped to the nearest boundary value.
// xs must be non-decreasing; on duplicated abscissae the right-most point wins.
func Interpolate(xs, ys []float64, q float64) float64 {
	n := len(xs)
	if n == 0 || len(ys) != n {
		return 0
	}
	if q <= xs[0] {
		return ys[0]
	}
	if q >= xs[n-1] {
		return ys[n-1]
	}
	// first index with xs[i] > q
	i := sort.Search(n, func(i int) bool { return xs[i] > q })
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	if x1 == x0 {
		return y1
	}
	return y0 + (q-x0)*(y1-y0)/(x1-x0)
}

// InterpolateAll evaluates Interpolate for every query
func InterpolateAll(xs, ys, qs []float64) []float64 {
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = Interpolate(xs, ys, q)
	}
	return out
}

// Linspace returns n evenly spaced points over [start, stop]
func Linspace(start, stop float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("linspace needs at least 2 points, got %d", n)
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out, nil
}

// UniqueSorted returns the sorted set of values in all inputs
func UniqueSorted(inputs ...[]float64) []float64 {
	total := 0
	for _, in := range inputs {
		total += len(in)
	}
	all := make([]float64, 0, total)
	for _, in := range inputs {
		all = append(all, in...)
	}
	sort.Float64s(all)
	out := all[:0]
	for i, v := range all {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// CumulativeTrapezoid integrates ys over xs with trapezoids, starting at 0.
// The result has the same length as the input.
func CumulativeTrapezoid(xs, ys []float64) []float64 {
	out := make([]float64, len(ys))
	for i := 1; i < len(ys) && i < len(xs); i++ {
		out[i] = out[i-1] + (ys[i]+ys[i-1])*(xs[i]-xs[i-1])/2
	}
	return out
}

// Scale returns a copy of xs multiplied by s
func Scale(xs []float64, s float64) []float64 {
	out := make([]float64, len(xs))
	vecmath.ScaleBlock(out, xs, s)
	return out
}

// Shift adds offset to every element of xs in place
func Shift(xs []float64, offset float64) {
	if len(xs) == 0 {
		return
	}
	offsets := make([]float64, len(xs))
	for i := range offsets {
		offsets[i] = offset
	}
	vecmath.AddBlockInPlace(xs, offsets)
}

// MinMax returns the smallest and largest value of xs
func MinMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
