// Package curve converts parsed spec segments into dense step curves and
// back into segments for persistence.
package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/RMahshie/sparamgen/internal/specparse"
	"github.com/RMahshie/sparamgen/pkg/models"
)

const (
	// Epsilon separates the two points of a vertical step, in MHz
	Epsilon = 0.001
	// RangeScale converts out-of-band range bounds to curve frequency units
	RangeScale = 1000.0
	// InBandLossLimit is the widest percent that is still relative to the loss at center
	InBandLossLimit = 100
)

// FromInput parses the input form and builds the spec curves of all four channels
func FromInput(input models.FilterInput) (*models.NumericalData, error) {
	center, err := specparse.ParseFrequency("center frequency", input.CenterFrequency)
	if err != nil {
		return nil, err
	}
	bandwidth, err := specparse.ParseFrequency("bandwidth", input.Bandwidth)
	if err != nil {
		return nil, err
	}
	loss, err := specparse.ParseLoss("loss at center", input.LossAtCenter)
	if err != nil {
		return nil, err
	}

	ilIn, err := specparse.ParsePercent(input.InsertionLossInBand, models.InsertionLoss.Sign())
	if err != nil {
		return nil, fmt.Errorf("insertion loss in band: %w", err)
	}
	ilOut, err := specparse.ParseRange(input.InsertionLossOutOfBand, models.InsertionLoss.Sign())
	if err != nil {
		return nil, fmt.Errorf("insertion loss out of band: %w", err)
	}
	gdIn, err := specparse.ParsePercent(input.GroupDelayInBand, models.GroupDelay.Sign())
	if err != nil {
		return nil, fmt.Errorf("group delay in band: %w", err)
	}
	gdOut, err := specparse.ParseRange(input.GroupDelayOutOfBand, models.GroupDelay.Sign())
	if err != nil {
		return nil, fmt.Errorf("group delay out of band: %w", err)
	}
	irl, err := specparse.ParseRange(input.InputReturnLoss, models.InputReturnLoss.Sign())
	if err != nil {
		return nil, fmt.Errorf("input return loss: %w", err)
	}
	orl, err := specparse.ParseRange(input.OutputReturnLoss, models.OutputReturnLoss.Sign())
	if err != nil {
		return nil, fmt.Errorf("output return loss: %w", err)
	}

	return &models.NumericalData{
		CenterFrequency:  center,
		Bandwidth:        bandwidth,
		LossAtCenter:     loss,
		InsertionLoss:    BuildChannel(models.InsertionLoss, models.Segments{Percent: ilIn, Range: ilOut}, center, bandwidth, loss),
		GroupDelay:       BuildChannel(models.GroupDelay, models.Segments{Percent: gdIn, Range: gdOut}, center, bandwidth, 0),
		InputReturnLoss:  BuildChannel(models.InputReturnLoss, models.Segments{Range: irl}, center, bandwidth, 0),
		OutputReturnLoss: BuildChannel(models.OutputReturnLoss, models.Segments{Range: orl}, center, bandwidth, 0),
	}, nil
}

// BuildChannel builds the spec curve of one channel and wraps it in a ResponseChannel
func BuildChannel(kind models.ChannelKind, segs models.Segments, center, bandwidth int, lossAtCenter float64) *models.ResponseChannel {
	if !kind.HasCenterLoss() {
		lossAtCenter = 0
	}
	spec, halfWidth := Build(segs, float64(center), float64(bandwidth), lossAtCenter, kind.HasCenterLoss())
	ch := models.NewResponseChannel(kind, spec)
	ch.LossAtCenter = lossAtCenter
	ch.InBandHalfWidth = halfWidth
	ch.HasInBand = len(segs.Percent) > 0
	return ch
}

// Build stitches the out-of-band range halves around the in-band percent
// half and returns the curve plus the half width of the in-band region.
// Without percent segments the two range halves meet at a single vertical
// step at the center frequency.
func Build(segs models.Segments, center, bandwidth, lossAtCenter float64, applyLoss bool) (models.Curve, float64) {
	ranges := sortedRanges(segs.Range)

	if len(segs.Percent) == 0 {
		boundary := clean(center - Epsilon)
		before := rangeHalf(ranges, math.Inf(-1), boundary)
		closeBefore(&before, boundary)
		after := rangeHalf(ranges, center, math.Inf(1))
		openAfter(&after, center)
		return concat(before, after), 0
	}

	inBand, halfWidth := percentHalf(segs.Percent, center, bandwidth, lossAtCenter, applyLoss)
	lo := clean(center - halfWidth - Epsilon)
	hi := clean(center + halfWidth + Epsilon)

	before := rangeHalf(ranges, math.Inf(-1), lo)
	closeBefore(&before, lo)
	after := rangeHalf(ranges, hi, math.Inf(1))
	openAfter(&after, hi)

	return concat(before, inBand, after), halfWidth
}

// percentHalf builds the mirrored in-band steps outward from the center
func percentHalf(segs []models.PercentSegment, center, bandwidth, lossAtCenter float64, applyLoss bool) (models.Curve, float64) {
	sorted := make([]models.PercentSegment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Percent < sorted[j].Percent })

	adjust := func(s models.PercentSegment) float64 {
		if applyLoss && s.Percent <= InBandLossLimit {
			return s.Value + lossAtCenter
		}
		return s.Value
	}

	// right side as (offset, value), offset 0 is the center point
	offsets := []float64{0}
	values := []float64{adjust(sorted[0])}
	last := 0.0
	for _, s := range sorted {
		if s.Percent == 0 {
			values[0] = adjust(s)
			continue
		}
		off := float64(s.Percent) * bandwidth / 200
		if off <= last {
			continue
		}
		v := adjust(s)
		if len(offsets) > 1 || values[0] != v {
			offsets = append(offsets, last+Epsilon)
			values = append(values, v)
		}
		offsets = append(offsets, off)
		values = append(values, v)
		last = off
	}

	c := models.NewCurve(2*len(offsets) - 1)
	for i := len(offsets) - 1; i > 0; i-- {
		c.Append(clean(center-offsets[i]), values[i])
	}
	for i := range offsets {
		c.Append(clean(center+offsets[i]), values[i])
	}
	return c, last
}

// rangeHalf emits the step points of every range segment clipped to [lo, hi].
// Touching segments are separated by Epsilon so each boundary is vertical.
func rangeHalf(segs []models.RangeSegment, lo, hi float64) models.Curve {
	c := models.NewCurve(2 * len(segs))
	for _, s := range segs {
		start := math.Max(clean(s.Start*RangeScale), lo)
		end := math.Min(clean(s.End*RangeScale), hi)
		// a segment that only touches the window contributes nothing
		if end < start || (end == start && s.End > s.Start) {
			continue
		}
		if !c.Empty() {
			if last := c.Frequencies[c.Len()-1]; start <= last {
				start = clean(last + Epsilon)
			}
			if end < start {
				continue
			}
		}
		c.Append(start, s.Value)
		c.Append(end, s.Value)
	}
	return c
}

// closeBefore extends the before half up to its boundary
func closeBefore(c *models.Curve, boundary float64) {
	if c.Empty() {
		return
	}
	if n := c.Len(); c.Frequencies[n-1] < boundary {
		c.Append(boundary, c.Values[n-1])
	}
}

// openAfter extends the after half down to its boundary
func openAfter(c *models.Curve, boundary float64) {
	if c.Empty() || c.Frequencies[0] <= boundary {
		return
	}
	c.Frequencies = append([]float64{boundary}, c.Frequencies...)
	c.Values = append([]float64{c.Values[0]}, c.Values...)
}

func concat(parts ...models.Curve) models.Curve {
	total := 0
	for _, p := range parts {
		total += p.Len()
	}
	out := models.NewCurve(total)
	for _, p := range parts {
		out.Frequencies = append(out.Frequencies, p.Frequencies...)
		out.Values = append(out.Values, p.Values...)
	}
	return out
}

func sortedRanges(segs []models.RangeSegment) []models.RangeSegment {
	sorted := make([]models.RangeSegment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return sorted
}

// clean drops binary noise below a micro-MHz so scaled bounds compare exactly
func clean(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
