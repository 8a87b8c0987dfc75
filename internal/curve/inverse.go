package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/RMahshie/sparamgen/internal/numeric"
	"github.com/RMahshie/sparamgen/pkg/models"
)

// Layout describes how a curve was laid out around the center frequency
type Layout struct {
	Center       float64
	Bandwidth    float64
	LossAtCenter float64
	ApplyLoss    bool
	// InBand is false for range-only channels
	InBand bool
	// HalfWidth bounds the in-band window. Unless HalfWidthKnown, 0 falls
	// back to the full bandwidth.
	HalfWidth      float64
	HalfWidthKnown bool
}

// ChannelLayout returns the layout a channel was built with
func ChannelLayout(ch *models.ResponseChannel, data *models.NumericalData) Layout {
	return Layout{
		Center:         float64(data.CenterFrequency),
		Bandwidth:      float64(data.Bandwidth),
		LossAtCenter:   ch.LossAtCenter,
		ApplyLoss:      ch.Kind.HasCenterLoss(),
		InBand:         ch.HasInBand || ch.InBandHalfWidth > 0,
		HalfWidth:      ch.InBandHalfWidth,
		HalfWidthKnown: ch.HasInBand,
	}
}

// ToSegments approximately inverts Build. Percentages are rounded to whole
// numbers and values to 2 decimals, so irregular or edited curves do not
// reproduce their original text exactly.
func ToSegments(c models.Curve, layout Layout) models.Segments {
	const tol = Epsilon / 2
	center := layout.Center

	if !layout.InBand {
		var before, after models.Curve
		for i, f := range c.Frequencies {
			if f < center-tol {
				before.Append(f, c.Values[i])
			} else {
				after.Append(f, c.Values[i])
			}
		}
		ranges := runs(before, math.Inf(-1), center)
		ranges = append(ranges, runs(after, center, math.Inf(1))...)
		return models.Segments{Range: ranges}
	}

	width := layout.HalfWidth
	if width <= 0 && !layout.HalfWidthKnown {
		width = layout.Bandwidth
	}
	lo, hi := center-width, center+width

	var before, left, after models.Curve
	centerValue, hasCenter := 0.0, false
	for i, f := range c.Frequencies {
		v := c.Values[i]
		switch {
		case f < lo-tol:
			before.Append(f, v)
		case f > hi+tol:
			after.Append(f, v)
		case f < center-tol:
			left.Append(f, v)
		case math.Abs(f-center) <= tol && !hasCenter:
			centerValue, hasCenter = v, true
		}
	}

	adjust := func(percent int, v float64) float64 {
		if layout.ApplyLoss && percent <= InBandLossLimit {
			v -= layout.LossAtCenter
		}
		return numeric.Round(v, 2)
	}

	// the left side holds each step twice; even indices are the region edges
	var percents []models.PercentSegment
	for i := 0; i < left.Len(); i += 2 {
		f := left.Frequencies[i]
		p := int(math.Round((center - f) * 200 / layout.Bandwidth))
		seg := models.PercentSegment{Percent: p, Value: adjust(p, left.Values[i])}
		if n := len(percents); n > 0 && percents[n-1].Percent == p {
			continue
		}
		percents = append(percents, seg)
	}
	// outermost edge first on the left; segments are listed from the center out
	for i, j := 0, len(percents)-1; i < j; i, j = i+1, j-1 {
		percents[i], percents[j] = percents[j], percents[i]
	}
	if hasCenter {
		v := adjust(0, centerValue)
		if len(percents) == 0 || percents[0].Value != v {
			percents = append([]models.PercentSegment{{Percent: 0, Value: v}}, percents...)
		}
	}

	ranges := runs(before, math.Inf(-1), lo)
	ranges = append(ranges, runs(after, hi, math.Inf(1))...)
	return models.Segments{Percent: percents, Range: ranges}
}

// runs merges consecutive points of equal value into range segments and
// removes the epsilon offsets the builder introduced at run and region edges
func runs(c models.Curve, lo, hi float64) []models.RangeSegment {
	const snap = Epsilon * 1.5
	var out []models.RangeSegment
	for i, f := range c.Frequencies {
		v := c.Values[i]
		if n := len(out); n > 0 && out[n-1].Value == v {
			out[n-1].End = f
			continue
		}
		out = append(out, models.RangeSegment{Start: f, End: f, Value: v})
	}
	for i := range out {
		if i > 0 && out[i].Start-out[i-1].End <= snap {
			out[i].Start = out[i-1].End
		}
		if !math.IsInf(lo, 0) && math.Abs(out[i].Start-lo) <= snap {
			out[i].Start = lo
		}
		if !math.IsInf(hi, 0) && math.Abs(hi-out[i].End) <= snap {
			out[i].End = hi
		}
	}
	for i := range out {
		out[i].Start = numeric.Round(out[i].Start/RangeScale, 6)
		out[i].End = numeric.Round(out[i].End/RangeScale, 6)
		out[i].Value = numeric.Round(out[i].Value, 2)
	}
	return out
}

// Header carries the lines written above the segment blocks
type Header struct {
	Title           string
	CenterFrequency int
	Bandwidth       int
	// LossAtCenter is written only when set
	LossAtCenter *float64
}

// FormatSpecText renders segments back into the two-block spec text format
func FormatSpecText(h Header, segs models.Segments) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", h.Title)
	fmt.Fprintf(&b, "Center frequency: %d\n", h.CenterFrequency)
	fmt.Fprintf(&b, "Bandwidth: %d\n", h.Bandwidth)
	if h.LossAtCenter != nil {
		fmt.Fprintf(&b, "Loss at center: %s\n", numeric.FormatNumber(*h.LossAtCenter))
	}
	b.WriteString("In band:\n")
	b.WriteString(FormatPercent(segs.Percent))
	b.WriteString("Out of band:\n")
	b.WriteString(FormatRange(segs.Range))
	return b.String()
}

// FormatPercent renders percent segments, one "<p>% <value>" line each
func FormatPercent(segs []models.PercentSegment) string {
	var b strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&b, "%d%% %s\n", s.Percent, numeric.FormatNumber(s.Value))
	}
	return b.String()
}

// FormatRange renders range segments, one "<start> - <end> <value>" line each
func FormatRange(segs []models.RangeSegment) string {
	var b strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&b, "%s - %s %s\n", numeric.FormatNumber(s.Start), numeric.FormatNumber(s.End), numeric.FormatNumber(s.Value))
	}
	return b.String()
}

// ChannelSegments recovers the segments of the current spec curve of a channel
func ChannelSegments(ch *models.ResponseChannel, data *models.NumericalData) models.Segments {
	return ToSegments(ch.Spec, ChannelLayout(ch, data))
}

// SignMismatches returns the segment values whose sign the text format cannot
// carry. The parser strips every '-' and applies the channel sign, so a
// positive loss or a negative delay reads back with its sign flipped.
func SignMismatches(kind models.ChannelKind, segs models.Segments) []float64 {
	var out []float64
	for _, s := range segs.Percent {
		if s.Value*kind.Sign() < 0 {
			out = append(out, s.Value)
		}
	}
	for _, s := range segs.Range {
		if s.Value*kind.Sign() < 0 {
			out = append(out, s.Value)
		}
	}
	return out
}

// ChannelSpecText serializes the current spec curve of a channel
func ChannelSpecText(ch *models.ResponseChannel, data *models.NumericalData) string {
	h := Header{
		Title:           ch.Name,
		CenterFrequency: data.CenterFrequency,
		Bandwidth:       data.Bandwidth,
	}
	if ch.Kind.HasCenterLoss() {
		loss := ch.LossAtCenter
		h.LossAtCenter = &loss
	}
	return FormatSpecText(h, ChannelSegments(ch, data))
}
