// Package synth generates synthetic "measured" curves that track a spec
// curve from inside its envelope, standing in for lab data.
package synth

import (
	"fmt"
	"math"
	"sort"

	"github.com/RMahshie/sparamgen/internal/numeric"
	"github.com/RMahshie/sparamgen/pkg/models"
)

// Params tunes the fit and the resampling walk
type Params struct {
	Steps        int     // Bezier samples
	CoarseStep   float64 // hop far from the passband, MHz
	FineStep     float64 // hop within center ± bandwidth, MHz
	ShiftLimit   float64 // shifts at or above this magnitude are not applied
	VertexOffset float64 // nudge applied to hops landing on a spec vertex, MHz
}

// DefaultParams returns the parameters used by the input screen
func DefaultParams() Params {
	return Params{
		Steps:        200,
		CoarseStep:   50,
		FineStep:     10,
		ShiftLimit:   300,
		VertexOffset: 0.5,
	}
}

// WarningKind classifies a degenerate fit
type WarningKind string

const (
	// ShiftTooSmall means the fit already touched the spec extreme; a unit shift was used
	ShiftTooSmall WarningKind = "shift_too_small"
	// ShiftTooLarge means the fit is too distorted to shift; it is returned unshifted
	ShiftTooLarge WarningKind = "shift_too_large"
)

// DegenerateFitWarning is a recoverable fit problem. The curve is still produced.
type DegenerateFitWarning struct {
	Channel models.ChannelKind `json:"channel"`
	Kind    WarningKind        `json:"kind"`
	Shift   float64            `json:"shift"`
}

func (w DegenerateFitWarning) Error() string {
	switch w.Kind {
	case ShiftTooSmall:
		return fmt.Sprintf("%s: fit shift %.3g below 1, using unit shift", w.Channel, w.Shift)
	case ShiftTooLarge:
		return fmt.Sprintf("%s: fit shift %.3g exceeds limit, curve left unshifted", w.Channel, w.Shift)
	}
	return fmt.Sprintf("%s: degenerate fit", w.Channel)
}

// FitResult is the outcome of Fit
type FitResult struct {
	Curve        models.Curve
	Peak         bool
	AppliedShift float64
	Warning      *DegenerateFitWarning
}

// Fit smooths the spec curve with a Bezier fit, shifts it onto the spec
// extreme and resamples it onto a coarse grid derived from the spec frequencies.
func Fit(spec models.Curve, center, bandwidth float64, p Params) (*FitResult, error) {
	if p.CoarseStep <= 0 || p.FineStep <= 0 {
		return nil, fmt.Errorf("resample steps must be positive, got coarse %g fine %g", p.CoarseStep, p.FineStep)
	}
	xs, ys, err := Bezier(spec, p.Steps)
	if err != nil {
		return nil, err
	}

	res := &FitResult{Peak: spec.Values[spec.Len()/2] > spec.Values[0]}

	fitMin, fitMax := numeric.MinMax(ys)
	specMin, specMax := numeric.MinMax(spec.Values)
	var shift float64
	if res.Peak {
		shift = math.Abs(fitMax - specMax)
		if shift < 1 {
			res.Warning = &DegenerateFitWarning{Kind: ShiftTooSmall, Shift: shift}
			shift = 1
		}
	} else {
		shift = -math.Abs(fitMin - specMin)
		if shift == 0 {
			shift = 0 // no negative zero in warnings
		}
		if math.Abs(shift) < 1 {
			res.Warning = &DegenerateFitWarning{Kind: ShiftTooSmall, Shift: shift}
			shift = -1
		}
	}
	if math.Abs(shift) < p.ShiftLimit {
		numeric.Shift(ys, shift)
		res.AppliedShift = shift
	} else {
		res.Warning = &DegenerateFitWarning{Kind: ShiftTooLarge, Shift: shift}
	}

	res.Curve = resample(xs, ys, spec, center, bandwidth, p)
	return res, nil
}

// resample walks the gaps of the rounded spec frequencies in fixed hops and
// snaps each hop to the nearest fitted sample
func resample(xs, ys []float64, spec models.Curve, center, bandwidth float64, p Params) models.Curve {
	rounded := make([]float64, spec.Len())
	for i, f := range spec.Frequencies {
		rounded[i] = math.Round(f)
	}
	grid := numeric.UniqueSorted(rounded)

	out := models.NewCurve(len(grid))
	last := -1
	emit := func(x float64, vertex bool) {
		if vertex {
			if x < center {
				x -= p.VertexOffset
			} else {
				x += p.VertexOffset
			}
		}
		i := nearest(xs, x)
		if i == last {
			return
		}
		last = i
		out.Append(xs[i], ys[i])
	}

	for j := 0; j+1 < len(grid); j++ {
		x := grid[j]
		emit(x, true)
		for {
			hop := p.CoarseStep
			if math.Abs(x-center) <= bandwidth {
				hop = p.FineStep
			}
			x += hop
			if x >= grid[j+1] {
				break
			}
			emit(x, false)
		}
	}
	emit(grid[len(grid)-1], true)
	return out
}

// nearest returns the index of the sorted xs value closest to x
func nearest(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x)
	if i == 0 {
		return 0
	}
	if i == len(xs) {
		return len(xs) - 1
	}
	if x-xs[i-1] <= xs[i]-x {
		return i - 1
	}
	return i
}

// Synthesize generates the measurement curve of one channel. Loaded
// measurements are kept as they are.
func Synthesize(ch *models.ResponseChannel, data *models.NumericalData, p Params) (*DegenerateFitWarning, error) {
	if ch.Measurement.Source == models.SourceLoaded {
		return nil, nil
	}
	res, err := Fit(ch.Spec, float64(data.CenterFrequency), float64(data.Bandwidth), p)
	if err != nil {
		return nil, fmt.Errorf("failed to fit %s: %w", ch.Name, err)
	}
	ch.Measurement = models.MeasurementCurve{Curve: res.Curve, Source: models.SourceGenerated}
	if res.Warning != nil {
		res.Warning.Channel = ch.Kind
	}
	return res.Warning, nil
}

// SynthesizeAll generates measurements for every channel that has none, or
// for every channel not loaded from a file when force is set. Channels
// without a spec curve are skipped.
func SynthesizeAll(data *models.NumericalData, p Params, force bool) ([]DegenerateFitWarning, error) {
	var warnings []DegenerateFitWarning
	for _, ch := range data.Channels() {
		if ch.HasMeasurement() && !force || ch.Spec.Len() < 2 {
			continue
		}
		w, err := Synthesize(ch, data, p)
		if err != nil {
			return warnings, err
		}
		if w != nil {
			warnings = append(warnings, *w)
		}
	}
	return warnings, nil
}
