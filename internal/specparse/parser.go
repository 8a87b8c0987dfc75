// Package specparse turns the free-text response specifications of the input
// form into numeric segments.
//
// Each line is either "<int>% <value>" (in band) or "<start> - <end> <value>"
// (out of band). Every '-' is stripped before splitting, so the sign of the
// value is restored with a per-field multiplier: SignLoss for insertion and
// return loss, SignDelay for group delay.
package specparse

import (
	"errors"
	"strconv"
	"strings"

	"github.com/RMahshie/sparamgen/pkg/models"
)

const (
	// SignLoss restores the negative sign of loss and return loss values
	SignLoss = -1.0
	// SignDelay keeps group delay values positive
	SignDelay = 1.0
)

type lineKind int

const (
	anyLine lineKind = iota
	percentLine
	rangeLine
)

// Parse parses every non-blank line of text into percent or range segments,
// preserving input order. The first malformed line aborts the call.
func Parse(text string, sign float64) (models.Segments, error) {
	return parse(text, sign, anyLine)
}

// ParsePercent parses in-band text; range lines are rejected
func ParsePercent(text string, sign float64) ([]models.PercentSegment, error) {
	segs, err := parse(text, sign, percentLine)
	if err != nil {
		return nil, err
	}
	return segs.Percent, nil
}

// ParseRange parses out-of-band text; percent lines are rejected
func ParseRange(text string, sign float64) ([]models.RangeSegment, error) {
	segs, err := parse(text, sign, rangeLine)
	if err != nil {
		return nil, err
	}
	return segs.Range, nil
}

func parse(text string, sign float64, want lineKind) (models.Segments, error) {
	var segs models.Segments
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		tokens := strings.Fields(strings.ReplaceAll(line, "-", " "))
		switch len(tokens) {
		case 2:
			if want == rangeLine {
				return models.Segments{}, &FormatError{LineNo: i + 1, Line: line, Reason: "expected '<start> - <end> <value>'"}
			}
			seg, err := parsePercent(tokens, sign)
			if err != nil {
				return models.Segments{}, lineError(i+1, line, err)
			}
			segs.Percent = append(segs.Percent, seg)
		case 3:
			if want == percentLine {
				return models.Segments{}, &FormatError{LineNo: i + 1, Line: line, Reason: "expected '<percent>% <value>'"}
			}
			seg, err := parseRange(tokens, sign)
			if err != nil {
				return models.Segments{}, lineError(i+1, line, err)
			}
			segs.Range = append(segs.Range, seg)
		default:
			return models.Segments{}, &FormatError{LineNo: i + 1, Line: line, Reason: "expected 2 or 3 fields"}
		}
	}
	return segs, nil
}

func lineError(lineNo int, line string, err error) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.LineNo = lineNo
		fe.Line = line
		return fe
	}
	return &FormatError{LineNo: lineNo, Line: line, Reason: "not a number", Err: err}
}

func parsePercent(tokens []string, sign float64) (models.PercentSegment, error) {
	if !strings.HasSuffix(tokens[0], "%") {
		return models.PercentSegment{}, &FormatError{Reason: "percent field must end with '%'"}
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(tokens[0], "%"))
	if err != nil {
		return models.PercentSegment{}, err
	}
	if percent < 0 {
		return models.PercentSegment{}, &FormatError{Reason: "percent must not be negative"}
	}
	value, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return models.PercentSegment{}, err
	}
	return models.PercentSegment{Percent: percent, Value: value * sign}, nil
}

func parseRange(tokens []string, sign float64) (models.RangeSegment, error) {
	start, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return models.RangeSegment{}, err
	}
	end, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return models.RangeSegment{}, err
	}
	if end < start {
		return models.RangeSegment{}, &FormatError{Reason: "range end is below its start"}
	}
	value, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return models.RangeSegment{}, err
	}
	return models.RangeSegment{Start: start, End: end, Value: value * sign}, nil
}

// ParseFrequency parses an integer MHz header field such as the center frequency
func ParseFrequency(field, text string) (int, error) {
	s := strings.TrimSpace(text)
	v, err := strconv.Atoi(s)
	if err != nil {
		// "19750.0" is accepted when it is a whole number
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, &ConversionError{Field: field, Value: text, Err: err}
		}
		v = int(f)
	}
	if v <= 0 {
		return 0, &ConversionError{Field: field, Value: text, Err: errors.New("must be positive")}
	}
	return v, nil
}

// ParseLoss parses a dB header field. A blank field is 0.
func ParseLoss(field, text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ConversionError{Field: field, Value: text, Err: err}
	}
	return v, nil
}
