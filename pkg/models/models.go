package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// FitWarning reports a degenerate measurement fit
type FitWarning struct {
	Channel ChannelKind `json:"channel" doc:"Channel whose fit degenerated"`
	Kind    string      `json:"kind" enum:"shift_too_small,shift_too_large" doc:"Warning kind"`
	Shift   float64     `json:"shift" doc:"Computed vertical shift"`
}

// FilterBody is the representation of a filter session
type FilterBody struct {
	ID        string         `json:"id" doc:"Filter unique identifier"`
	Name      string         `json:"name" doc:"Filter name"`
	Data      *NumericalData `json:"data" doc:"Spec and measurement curves of every channel"`
	Warnings  []FitWarning   `json:"warnings,omitempty" doc:"Degenerate fits from the last generation"`
	CreatedAt time.Time      `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time      `json:"updated_at" doc:"Last modification timestamp"`
}

// FilterResponse wraps a filter session
type FilterResponse struct {
	Body FilterBody
}

// CreateFilterRequest represents a request to create a filter from the input form
type CreateFilterRequest struct {
	Body FilterInput
}

// GetFilterRequest addresses one filter
type GetFilterRequest struct {
	ID string `path:"id" doc:"Filter ID"`
}

// ListFiltersRequest pages through stored filters
type ListFiltersRequest struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Maximum number of filters"`
}

// FilterSummary is a filter without its curves
type FilterSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CenterFrequency int       `json:"center_frequency"`
	Bandwidth       int       `json:"bandwidth"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListFiltersResponse lists stored filters
type ListFiltersResponse struct {
	Body struct {
		Filters []FilterSummary `json:"filters" doc:"Most recently updated filters first"`
	}
}

// LoadMeasurementsRequest uploads a raw measurement file
type LoadMeasurementsRequest struct {
	ID   string `path:"id" doc:"Filter ID"`
	Body struct {
		Channel string `json:"channel,omitempty" enum:"insertion_loss,group_delay,input_return_loss,output_return_loss" doc:"Single channel of a 2-column file; omit for an 8-column file"`
		Data    string `json:"data" minLength:"1" doc:"Whitespace separated measurement rows"`
	}
}

// GenerateMeasurementsRequest synthesizes measurement curves
type GenerateMeasurementsRequest struct {
	ID    string `path:"id" doc:"Filter ID"`
	Force bool   `query:"force" doc:"Regenerate channels that already have a generated measurement"`
}

// EditPointRequest sets or adjusts one curve point
type EditPointRequest struct {
	ID      string `path:"id" doc:"Filter ID"`
	Channel string `path:"channel" enum:"insertion_loss,group_delay,input_return_loss,output_return_loss" doc:"Channel"`
	Index   int    `path:"index" minimum:"0" doc:"Point index"`
	Body    struct {
		Curve     string   `json:"curve,omitempty" enum:"spec,measurement" default:"spec" doc:"Curve to edit"`
		Frequency *float64 `json:"frequency,omitempty" doc:"New frequency in MHz, only with value"`
		Value     *float64 `json:"value,omitempty" doc:"New value"`
		Delta     *float64 `json:"delta,omitempty" doc:"Value increment"`
	}
}

// SpecTextRequest addresses the spec text of one channel
type SpecTextRequest struct {
	ID      string `path:"id" doc:"Filter ID"`
	Channel string `path:"channel" enum:"insertion_loss,group_delay,input_return_loss,output_return_loss" doc:"Channel"`
}

// SpecTextResponse is the spec text recovered from a channel curve
type SpecTextResponse struct {
	Body struct {
		Channel ChannelKind `json:"channel"`
		Text    string      `json:"text" doc:"Spec text in input form syntax"`
		FileKey string      `json:"file_key" doc:"Storage key of the saved text"`
		URL     string      `json:"url,omitempty" doc:"Download URL of the saved text"`
		Warning string      `json:"warning,omitempty" doc:"Set when some values cannot be written with their sign"`
	}
}

// SParameterPair is a fixed magnitude and angle
type SParameterPair struct {
	Mag float64 `json:"mag" doc:"Magnitude in dB"`
	Ang float64 `json:"ang" doc:"Angle in degrees"`
}

// ComposeRequest composes the S-parameter table of a filter
type ComposeRequest struct {
	ID   string `path:"id" doc:"Filter ID"`
	Body struct {
		NumberOfLines    int             `json:"number_of_lines,omitempty" minimum:"0" maximum:"100001" doc:"Rows in the table, 0 for the server default"`
		AbsolutePathLoss float64         `json:"absolute_path_loss,omitempty" doc:"Path loss subtracted from |S21|"`
		AngS11           float64         `json:"ang_s11,omitempty" doc:"Constant S11 angle"`
		AngS22           float64         `json:"ang_s22,omitempty" doc:"Constant S22 angle"`
		S12              *SParameterPair `json:"s12,omitempty" doc:"Fixed S12; mirrors S21 when omitted"`
	}
}

// ComposeResponse carries the composed table
type ComposeResponse struct {
	Body struct {
		Table *SParameterTable `json:"table"`
		URL   string           `json:"url,omitempty" doc:"Download URL of the table file"`
	}
}

// PlotRequest addresses the plot of a filter
type PlotRequest struct {
	ID string `path:"id" doc:"Filter ID"`
}

// PlotResponse is an HTML chart page
type PlotResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}
