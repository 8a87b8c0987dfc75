package models

import (
	"fmt"
	"time"
)

// PercentSegment is an in-band spec line: value within percent of the half bandwidth
type PercentSegment struct {
	Percent int     `json:"percent"`
	Value   float64 `json:"value"`
}

// RangeSegment is an out-of-band spec line over an absolute frequency window
type RangeSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Value float64 `json:"value"`
}

// Segments holds the parsed lines of one text field, in input order
type Segments struct {
	Percent []PercentSegment `json:"percent,omitempty"`
	Range   []RangeSegment   `json:"range,omitempty"`
}

// ChannelKind identifies one of the four response channels
type ChannelKind string

const (
	InsertionLoss    ChannelKind = "insertion_loss"
	GroupDelay       ChannelKind = "group_delay"
	InputReturnLoss  ChannelKind = "input_return_loss"
	OutputReturnLoss ChannelKind = "output_return_loss"
)

// ChannelKinds lists the channels in display order
var ChannelKinds = []ChannelKind{InsertionLoss, GroupDelay, InputReturnLoss, OutputReturnLoss}

// ParseChannelKind validates a channel name
func ParseChannelKind(s string) (ChannelKind, error) {
	for _, k := range ChannelKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown channel: %q", s)
}

// Name returns the display title of the channel
func (k ChannelKind) Name() string {
	switch k {
	case InsertionLoss:
		return "Insertion Loss"
	case GroupDelay:
		return "Group Delay"
	case InputReturnLoss:
		return "Input Return Loss"
	case OutputReturnLoss:
		return "Output Return Loss"
	}
	return string(k)
}

// Unit returns the value unit of the channel
func (k ChannelKind) Unit() string {
	if k == GroupDelay {
		return "ns"
	}
	return "dB"
}

// Sign is the multiplier restoring the sign stripped from the text fields
func (k ChannelKind) Sign() float64 {
	if k == GroupDelay {
		return 1
	}
	return -1
}

// HasCenterLoss reports whether in-band values are relative to the loss at center
func (k ChannelKind) HasCenterLoss() bool {
	return k == InsertionLoss
}

// ResponseChannel owns the spec and measurement curves of one response
type ResponseChannel struct {
	Kind        ChannelKind      `json:"kind" enum:"insertion_loss,group_delay,input_return_loss,output_return_loss"`
	Name        string           `json:"name"`
	Unit        string           `json:"unit"`
	Spec        Curve            `json:"spec" doc:"Specification step curve"`
	Measurement MeasurementCurve `json:"measurement" doc:"Generated or loaded measurement curve"`

	// LossAtCenter is only meaningful for insertion loss
	LossAtCenter float64 `json:"loss_at_center,omitempty"`
	// InBandHalfWidth is the offset of the widest percent segment, 0 for range-only channels
	InBandHalfWidth float64 `json:"in_band_half_width,omitempty"`
	// HasInBand is set when the channel was built from percent segments, even only 0%
	HasInBand bool `json:"has_in_band,omitempty"`
}

// NewResponseChannel creates a channel around a spec curve
func NewResponseChannel(kind ChannelKind, spec Curve) *ResponseChannel {
	return &ResponseChannel{
		Kind: kind,
		Name: kind.Name(),
		Unit: kind.Unit(),
		Spec: spec,
	}
}

// HasMeasurement reports whether a measurement curve is present
func (c *ResponseChannel) HasMeasurement() bool {
	return c.Measurement.Source != SourceNone && !c.Measurement.Empty()
}

// MeasurementOrSpec returns the measurement when present, otherwise the spec curve
func (c *ResponseChannel) MeasurementOrSpec() Curve {
	if c.HasMeasurement() {
		return c.Measurement.Curve
	}
	return c.Spec
}

// NumericalData is the aggregate of one filter input session
type NumericalData struct {
	CenterFrequency  int              `json:"center_frequency" doc:"Center frequency in MHz"`
	Bandwidth        int              `json:"bandwidth" doc:"Bandwidth in MHz"`
	LossAtCenter     float64          `json:"loss_at_center" doc:"Insertion loss at center frequency in dB"`
	InsertionLoss    *ResponseChannel `json:"insertion_loss"`
	GroupDelay       *ResponseChannel `json:"group_delay"`
	InputReturnLoss  *ResponseChannel `json:"input_return_loss"`
	OutputReturnLoss *ResponseChannel `json:"output_return_loss"`
}

// Channel returns the channel of the given kind
func (d *NumericalData) Channel(kind ChannelKind) (*ResponseChannel, error) {
	var ch *ResponseChannel
	switch kind {
	case InsertionLoss:
		ch = d.InsertionLoss
	case GroupDelay:
		ch = d.GroupDelay
	case InputReturnLoss:
		ch = d.InputReturnLoss
	case OutputReturnLoss:
		ch = d.OutputReturnLoss
	default:
		return nil, fmt.Errorf("unknown channel: %q", kind)
	}
	if ch == nil {
		return nil, fmt.Errorf("channel %s not initialised", kind)
	}
	return ch, nil
}

// Channels returns the four channels in display order, skipping missing ones
func (d *NumericalData) Channels() []*ResponseChannel {
	all := []*ResponseChannel{d.InsertionLoss, d.GroupDelay, d.InputReturnLoss, d.OutputReturnLoss}
	out := make([]*ResponseChannel, 0, len(all))
	for _, ch := range all {
		if ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// FilterInput holds the raw text fields of the input form
type FilterInput struct {
	Name                   string `json:"name,omitempty" yaml:"name" maxLength:"100" doc:"Filter name"`
	CenterFrequency        string `json:"center_frequency" yaml:"center_frequency" required:"true" doc:"Center frequency in MHz"`
	Bandwidth              string `json:"bandwidth" yaml:"bandwidth" required:"true" doc:"Bandwidth in MHz"`
	LossAtCenter           string `json:"loss_at_center,omitempty" yaml:"loss_at_center" doc:"Loss at center frequency in dB"`
	InsertionLossInBand    string `json:"insertion_loss_in_band,omitempty" yaml:"insertion_loss_in_band" doc:"In band and near out of band rejection, lines of '<p>% <dB>'"`
	InsertionLossOutOfBand string `json:"insertion_loss_out_of_band,omitempty" yaml:"insertion_loss_out_of_band" doc:"Out of band rejection, lines of '<start> - <end> <dB>'"`
	GroupDelayInBand       string `json:"group_delay_in_band,omitempty" yaml:"group_delay_in_band" doc:"In band group delay, lines of '<p>% <ns>'"`
	GroupDelayOutOfBand    string `json:"group_delay_out_of_band,omitempty" yaml:"group_delay_out_of_band" doc:"Wide band group delay, lines of '<start> - <end> <ns>'"`
	InputReturnLoss        string `json:"input_return_loss,omitempty" yaml:"input_return_loss" doc:"Input return loss, lines of '<start> - <end> <dB>'"`
	OutputReturnLoss       string `json:"output_return_loss,omitempty" yaml:"output_return_loss" doc:"Output return loss, lines of '<start> - <end> <dB>'"`
}

// Filter is a stored filter session
type Filter struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Input     FilterInput    `json:"input"`
	Data      *NumericalData `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SParameterRow is one formatted line of the S-parameter table
type SParameterRow struct {
	Frequency string `json:"frequency"`
	MagS11    string `json:"mag_s11"`
	AngS11    string `json:"ang_s11"`
	MagS21    string `json:"mag_s21"`
	AngS21    string `json:"ang_s21"`
	MagS12    string `json:"mag_s12"`
	AngS12    string `json:"ang_s12"`
	MagS22    string `json:"mag_s22"`
	AngS22    string `json:"ang_s22"`
}

// Fields returns the row in file column order
func (r SParameterRow) Fields() []string {
	return []string{r.Frequency, r.MagS11, r.AngS11, r.MagS21, r.AngS21, r.MagS12, r.AngS12, r.MagS22, r.AngS22}
}

// SParameterTable is a composed S-parameter table
type SParameterTable struct {
	ID          string          `json:"id"`
	FilterID    string          `json:"filter_id"`
	FilterName  string          `json:"filter_name"`
	GeneratedAt time.Time       `json:"generated_at"`
	Rows        []SParameterRow `json:"rows"`
	FileKey     string          `json:"file_key,omitempty"`
}
