// Package sparams composes the four response channels into a two-port
// S-parameter table and writes it in the lab's text format.
package sparams

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RMahshie/sparamgen/internal/numeric"
	"github.com/RMahshie/sparamgen/pkg/models"
)

// DefaultGroupDelayScaling converts integrated ns·MHz into degrees
const DefaultGroupDelayScaling = 1000.0 / 360.0

// ErrEmptySpan is returned when the channels do not span a frequency range
var ErrEmptySpan = errors.New("channels do not span a frequency range")

// Pair is a fixed magnitude/angle value for one S-parameter
type Pair struct {
	Mag float64 `json:"mag"`
	Ang float64 `json:"ang"`
}

// Options controls the composition
type Options struct {
	NumberOfLines     int
	GroupDelayScaling float64
	// AbsolutePathLoss is subtracted from |S21| as a positive magnitude
	AbsolutePathLoss float64
	AngS11           float64
	AngS22           float64
	// S12 mirrors S21 when nil
	S12 *Pair
}

// DefaultOptions returns the composer defaults
func DefaultOptions() Options {
	return Options{
		NumberOfLines:     201,
		GroupDelayScaling: DefaultGroupDelayScaling,
	}
}

// Grid returns the frequency grid of the table: n points spanning the union
// of the channels' measurement frequencies, spec frequencies standing in for
// channels without a measurement
func Grid(data *models.NumericalData, n int) ([]float64, error) {
	var all [][]float64
	for _, ch := range data.Channels() {
		all = append(all, ch.MeasurementOrSpec().Frequencies)
	}
	freqs := numeric.UniqueSorted(all...)
	if len(freqs) < 2 {
		return nil, ErrEmptySpan
	}
	return numeric.Linspace(freqs[0], freqs[len(freqs)-1], n)
}

// Phase integrates group delay over the grid into the S21 phase in degrees
func Phase(groupDelay models.Curve, grid []float64, scaling float64) []float64 {
	gd := numeric.InterpolateAll(groupDelay.Frequencies, groupDelay.Values, grid)
	return numeric.Scale(numeric.CumulativeTrapezoid(grid, gd), 1/scaling)
}

// Compose builds the S-parameter table of a filter session
func Compose(name string, data *models.NumericalData, opts Options) (*models.SParameterTable, error) {
	if opts.NumberOfLines < 2 {
		return nil, fmt.Errorf("number of lines must be at least 2, got %d", opts.NumberOfLines)
	}
	if opts.GroupDelayScaling <= 0 {
		return nil, fmt.Errorf("group delay scaling must be positive, got %g", opts.GroupDelayScaling)
	}
	for _, ch := range data.Channels() {
		if err := ch.MeasurementOrSpec().Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s curve: %w", ch.Name, err)
		}
	}

	grid, err := Grid(data, opts.NumberOfLines)
	if err != nil {
		return nil, err
	}

	s11 := sample(data.InputReturnLoss, grid)
	s21 := sample(data.InsertionLoss, grid)
	s22 := sample(data.OutputReturnLoss, grid)
	var phase []float64
	if data.GroupDelay != nil {
		phase = Phase(data.GroupDelay.MeasurementOrSpec(), grid, opts.GroupDelayScaling)
	} else {
		phase = make([]float64, len(grid))
	}

	pathLoss := math.Abs(opts.AbsolutePathLoss)
	rows := make([]models.SParameterRow, len(grid))
	for i, f := range grid {
		row := models.SParameterRow{
			Frequency: numeric.FormatRounded(f, 2),
			MagS11:    numeric.FormatRounded(s11[i], 2),
			AngS11:    numeric.FormatWhole(opts.AngS11),
			MagS21:    numeric.FormatWhole(s21[i] - pathLoss),
			AngS21:    numeric.FormatWhole(-phase[i]),
			MagS22:    numeric.FormatRounded(s22[i], 2),
			AngS22:    numeric.FormatWhole(opts.AngS22),
		}
		if opts.S12 != nil {
			row.MagS12 = numeric.FormatNumber(opts.S12.Mag)
			row.AngS12 = numeric.FormatNumber(opts.S12.Ang)
		} else {
			row.MagS12, row.AngS12 = row.MagS21, row.AngS21
		}
		rows[i] = row
	}

	return &models.SParameterTable{
		FilterName:  name,
		GeneratedAt: time.Now(),
		Rows:        rows,
	}, nil
}

func sample(ch *models.ResponseChannel, grid []float64) []float64 {
	if ch == nil {
		return make([]float64, len(grid))
	}
	c := ch.MeasurementOrSpec()
	return numeric.InterpolateAll(c.Frequencies, c.Values, grid)
}
