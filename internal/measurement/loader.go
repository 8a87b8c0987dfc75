// Package measurement reads raw measurement files exported by a network
// analyzer and attaches them to a filter session.
package measurement

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RMahshie/sparamgen/pkg/models"
)

// RowError reports a row that could not be read
type RowError struct {
	LineNo int
	Line   string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.LineNo, e.Reason, e.Line)
}

// Set holds one measured curve per channel, keyed by kind
type Set map[models.ChannelKind]models.Curve

// columns lists the channel read from each x/y column pair of a full file
var columns = []models.ChannelKind{
	models.InsertionLoss,
	models.GroupDelay,
	models.InputReturnLoss,
	models.OutputReturnLoss,
}

// Parse reads a file of 8-column rows: x/y pairs for insertion loss, group
// delay, input return loss and output return loss. Comment lines starting
// with '!' or '#' and blank lines are ignored.
func Parse(r io.Reader) (Set, error) {
	set := make(Set, len(columns))
	err := scan(r, 2*len(columns), func(row []float64) {
		for i, kind := range columns {
			c := set[kind]
			c.Append(row[2*i], row[2*i+1])
			set[kind] = c
		}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ParseChannel reads a 2-column file for a single channel
func ParseChannel(r io.Reader) (models.Curve, error) {
	var c models.Curve
	err := scan(r, 2, func(row []float64) {
		c.Append(row[0], row[1])
	})
	return c, err
}

func scan(r io.Reader, width int, add func([]float64)) error {
	sc := bufio.NewScanner(r)
	row := make([]float64, width)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) != width {
			return &RowError{LineNo: lineNo, Line: line, Reason: fmt.Sprintf("expected %d columns, got %d", width, len(tokens))}
		}
		for i, tok := range tokens {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return &RowError{LineNo: lineNo, Line: line, Reason: fmt.Sprintf("column %d is not a number", i+1)}
			}
			row[i] = v
		}
		add(row)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read measurement file: %w", err)
	}
	return nil
}

// Apply replaces the measurement of every channel present in set and marks
// it as loaded, so the synthesizer leaves it alone
func Apply(set Set, data *models.NumericalData) error {
	for kind, c := range set {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid %s measurement: %w", kind, err)
		}
		ch, err := data.Channel(kind)
		if err != nil {
			return err
		}
		ch.Measurement = models.MeasurementCurve{Curve: c.Clone(), Source: models.SourceLoaded}
	}
	return nil
}
