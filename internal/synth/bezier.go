package synth

import (
	"fmt"
	"math"

	"github.com/RMahshie/sparamgen/pkg/models"
)

// Bezier treats every point of c as a control point of one Bezier curve of
// degree len(c)-1 and samples it at steps evenly spaced parameters.
// Bernstein weights are evaluated in log space; binomials overflow otherwise.
func Bezier(c models.Curve, steps int) ([]float64, []float64, error) {
	n := c.Len() - 1
	if n < 1 {
		return nil, nil, fmt.Errorf("bezier fit needs at least 2 points, got %d", c.Len())
	}
	if steps < 2 {
		return nil, nil, fmt.Errorf("bezier fit needs at least 2 steps, got %d", steps)
	}

	lnBinom := make([]float64, n+1)
	lnN, _ := math.Lgamma(float64(n + 1))
	for i := 0; i <= n; i++ {
		a, _ := math.Lgamma(float64(i + 1))
		b, _ := math.Lgamma(float64(n - i + 1))
		lnBinom[i] = lnN - a - b
	}

	xs := make([]float64, steps)
	ys := make([]float64, steps)
	for k := 0; k < steps; k++ {
		t := float64(k) / float64(steps-1)
		switch k {
		case 0:
			xs[k], ys[k] = c.Frequencies[0], c.Values[0]
			continue
		case steps - 1:
			xs[k], ys[k] = c.Frequencies[n], c.Values[n]
			continue
		}
		lt, lu := math.Log(t), math.Log1p(-t)
		var x, y, total float64
		for i := 0; i <= n; i++ {
			w := math.Exp(lnBinom[i] + float64(i)*lt + float64(n-i)*lu)
			x += w * c.Frequencies[i]
			y += w * c.Values[i]
			total += w
		}
		xs[k], ys[k] = x/total, y/total
	}
	return xs, ys, nil
}
