package models

import (
	"fmt"
)

// Curve is a step response encoded as two parallel slices. Frequencies are
// non-decreasing; a vertical step is two points a tiny epsilon apart.
type Curve struct {
	Frequencies []float64 `json:"frequencies" doc:"Frequencies in MHz"`
	Values      []float64 `json:"values" doc:"Values paired positionally with frequencies"`
}

// NewCurve creates an empty curve with room for n points
func NewCurve(n int) Curve {
	return Curve{
		Frequencies: make([]float64, 0, n),
		Values:      make([]float64, 0, n),
	}
}

// Len returns the number of points
func (c Curve) Len() int {
	return len(c.Frequencies)
}

// Empty reports whether the curve has no points
func (c Curve) Empty() bool {
	return len(c.Frequencies) == 0
}

// Append adds a point at the end of the curve
func (c *Curve) Append(freq, value float64) {
	c.Frequencies = append(c.Frequencies, freq)
	c.Values = append(c.Values, value)
}

// Point returns the point at index i
func (c Curve) Point(i int) (FrequencyPoint, error) {
	if i < 0 || i >= c.Len() {
		return FrequencyPoint{}, fmt.Errorf("point index %d out of range [0, %d)", i, c.Len())
	}
	return FrequencyPoint{Frequency: c.Frequencies[i], Value: c.Values[i]}, nil
}

// SetPoint replaces the point at index i in place
func (c *Curve) SetPoint(i int, freq, value float64) error {
	if i < 0 || i >= c.Len() {
		return fmt.Errorf("point index %d out of range [0, %d)", i, c.Len())
	}
	c.Frequencies[i] = freq
	c.Values[i] = value
	return nil
}

// AdjustPoint moves the value at index i by delta, keeping its frequency
func (c *Curve) AdjustPoint(i int, delta float64) error {
	if i < 0 || i >= c.Len() {
		return fmt.Errorf("point index %d out of range [0, %d)", i, c.Len())
	}
	c.Values[i] += delta
	return nil
}

// Points returns the curve as a slice of frequency points
func (c Curve) Points() []FrequencyPoint {
	points := make([]FrequencyPoint, c.Len())
	for i := range c.Frequencies {
		points[i] = FrequencyPoint{Frequency: c.Frequencies[i], Value: c.Values[i]}
	}
	return points
}

// Clone returns a deep copy
func (c Curve) Clone() Curve {
	out := Curve{
		Frequencies: make([]float64, len(c.Frequencies)),
		Values:      make([]float64, len(c.Values)),
	}
	copy(out.Frequencies, c.Frequencies)
	copy(out.Values, c.Values)
	return out
}

// Validate checks the shape contract: equal lengths and non-decreasing frequencies
func (c Curve) Validate() error {
	if len(c.Frequencies) != len(c.Values) {
		return fmt.Errorf("curve has %d frequencies but %d values", len(c.Frequencies), len(c.Values))
	}
	for i := 1; i < len(c.Frequencies); i++ {
		if c.Frequencies[i] < c.Frequencies[i-1] {
			return fmt.Errorf("curve frequency decreases at index %d (%g < %g)", i, c.Frequencies[i], c.Frequencies[i-1])
		}
	}
	return nil
}

// Bounds returns the first and last frequency
func (c Curve) Bounds() (float64, float64) {
	if c.Empty() {
		return 0, 0
	}
	return c.Frequencies[0], c.Frequencies[len(c.Frequencies)-1]
}

// MeasurementSource tells where a measurement curve came from
type MeasurementSource string

const (
	// SourceNone means no measurement exists yet
	SourceNone MeasurementSource = ""
	// SourceGenerated curves were synthesized from the spec curve
	SourceGenerated MeasurementSource = "generated"
	// SourceLoaded curves were read from a raw measurement file
	SourceLoaded MeasurementSource = "loaded"
)

// MeasurementCurve is an "as-built" curve plus its origin
type MeasurementCurve struct {
	Curve
	Source MeasurementSource `json:"source" enum:"generated,loaded" doc:"Origin of the measurement"`
}
