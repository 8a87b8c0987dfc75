package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/sparamgen/internal/measurement"
	"github.com/RMahshie/sparamgen/internal/processing"
	"github.com/RMahshie/sparamgen/internal/repository"
	"github.com/RMahshie/sparamgen/internal/sparams"
	"github.com/RMahshie/sparamgen/internal/specparse"
	"github.com/RMahshie/sparamgen/internal/synth"
	"github.com/RMahshie/sparamgen/pkg/models"
)

// FilterHandler handles filter-related HTTP requests
type FilterHandler struct {
	svc processing.FilterService
}

// NewFilterHandler creates a new filter handler
func NewFilterHandler(svc processing.FilterService) *FilterHandler {
	return &FilterHandler{svc: svc}
}

// CreateFilter parses the input form and builds the spec curves
func (h *FilterHandler) CreateFilter(ctx context.Context, req *models.CreateFilterRequest) (*models.FilterResponse, error) {
	log.Info().Str("name", req.Body.Name).Msg("Creating new filter")

	f, err := h.svc.CreateFilter(ctx, req.Body)
	if err != nil {
		return nil, httpError("Failed to create filter", err)
	}
	return filterResponse(f, nil), nil
}

// GetFilter returns the curves of a filter
func (h *FilterHandler) GetFilter(ctx context.Context, req *models.GetFilterRequest) (*models.FilterResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	f, err := h.svc.GetFilter(ctx, id)
	if err != nil {
		return nil, httpError("Failed to get filter", err)
	}
	return filterResponse(f, nil), nil
}

// ListFilters returns the most recently updated filters
func (h *FilterHandler) ListFilters(ctx context.Context, req *models.ListFiltersRequest) (*models.ListFiltersResponse, error) {
	filters, err := h.svc.ListFilters(ctx, req.Limit)
	if err != nil {
		return nil, httpError("Failed to list filters", err)
	}

	resp := &models.ListFiltersResponse{}
	resp.Body.Filters = make([]models.FilterSummary, 0, len(filters))
	for _, f := range filters {
		s := models.FilterSummary{ID: f.ID, Name: f.Name, UpdatedAt: f.UpdatedAt}
		if f.Data != nil {
			s.CenterFrequency = f.Data.CenterFrequency
			s.Bandwidth = f.Data.Bandwidth
		}
		resp.Body.Filters = append(resp.Body.Filters, s)
	}
	return resp, nil
}

// LoadMeasurements attaches raw measurement data to a filter
func (h *FilterHandler) LoadMeasurements(ctx context.Context, req *models.LoadMeasurementsRequest) (*models.FilterResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var f *models.Filter
	if req.Body.Channel != "" {
		kind, perr := models.ParseChannelKind(req.Body.Channel)
		if perr != nil {
			return nil, huma.Error400BadRequest("Unknown channel", perr)
		}
		f, err = h.svc.LoadChannelMeasurement(ctx, id, kind, []byte(req.Body.Data))
	} else {
		f, err = h.svc.LoadMeasurements(ctx, id, []byte(req.Body.Data))
	}
	if err != nil {
		return nil, httpError("Failed to load measurements", err)
	}
	return filterResponse(f, nil), nil
}

// GenerateMeasurements synthesizes measurement curves from the spec curves
func (h *FilterHandler) GenerateMeasurements(ctx context.Context, req *models.GenerateMeasurementsRequest) (*models.FilterResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	f, warnings, err := h.svc.GenerateMeasurements(ctx, id, req.Force)
	if err != nil {
		return nil, httpError("Failed to generate measurements", err)
	}
	return filterResponse(f, warnings), nil
}

// EditPoint sets or adjusts one point of a channel curve
func (h *FilterHandler) EditPoint(ctx context.Context, req *models.EditPointRequest) (*models.FilterResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	kind, err := models.ParseChannelKind(req.Channel)
	if err != nil {
		return nil, huma.Error400BadRequest("Unknown channel", err)
	}

	f, err := h.svc.EditPoint(ctx, id, processing.PointEdit{
		Channel:   kind,
		Curve:     req.Body.Curve,
		Index:     req.Index,
		Frequency: req.Body.Frequency,
		Value:     req.Body.Value,
		Delta:     req.Body.Delta,
	})
	if err != nil {
		return nil, httpError("Failed to edit point", err)
	}
	return filterResponse(f, nil), nil
}

// GetSpecText returns the spec text recovered from a channel curve
func (h *FilterHandler) GetSpecText(ctx context.Context, req *models.SpecTextRequest) (*models.SpecTextResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	kind, err := models.ParseChannelKind(req.Channel)
	if err != nil {
		return nil, huma.Error400BadRequest("Unknown channel", err)
	}

	exp, err := h.svc.ExportSpecText(ctx, id, kind)
	if err != nil {
		return nil, httpError("Failed to export spec text", err)
	}

	resp := &models.SpecTextResponse{}
	resp.Body.Channel = kind
	resp.Body.Text = exp.Text
	resp.Body.FileKey = exp.Key
	resp.Body.URL = exp.URL
	resp.Body.Warning = exp.Warning
	return resp, nil
}

// ComposeSParameters builds and stores the S-parameter table
func (h *FilterHandler) ComposeSParameters(ctx context.Context, req *models.ComposeRequest) (*models.ComposeResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if req.Body.NumberOfLines == 1 {
		return nil, huma.Error400BadRequest("number_of_lines must be 0 or at least 2")
	}

	creq := processing.ComposeRequest{
		NumberOfLines:    req.Body.NumberOfLines,
		AbsolutePathLoss: req.Body.AbsolutePathLoss,
		AngS11:           req.Body.AngS11,
		AngS22:           req.Body.AngS22,
	}
	if req.Body.S12 != nil {
		creq.S12 = &sparams.Pair{Mag: req.Body.S12.Mag, Ang: req.Body.S12.Ang}
	}

	table, art, err := h.svc.ComposeSParameters(ctx, id, creq)
	if err != nil {
		return nil, httpError("Failed to compose s-parameters", err)
	}

	resp := &models.ComposeResponse{}
	resp.Body.Table = table
	resp.Body.URL = art.URL
	return resp, nil
}

// GetPlot renders the channel curves as an HTML page
func (h *FilterHandler) GetPlot(ctx context.Context, req *models.PlotRequest) (*models.PlotResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	html, _, err := h.svc.RenderPlot(ctx, id)
	if err != nil {
		return nil, httpError("Failed to render plot", err)
	}
	return &models.PlotResponse{ContentType: "text/html; charset=utf-8", Body: html}, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, huma.Error400BadRequest("Invalid filter ID", err)
	}
	return id, nil
}

// httpError maps pipeline errors onto HTTP status codes
func httpError(msg string, err error) error {
	var (
		formatErr *specparse.FormatError
		convErr   *specparse.ConversionError
		rowErr    *measurement.RowError
	)
	switch {
	case errors.As(err, &formatErr), errors.As(err, &convErr), errors.As(err, &rowErr),
		errors.Is(err, processing.ErrInvalidRequest), errors.Is(err, sparams.ErrEmptySpan):
		return huma.Error400BadRequest(err.Error(), err)
	case errors.Is(err, repository.ErrNotFound):
		return huma.Error404NotFound("Filter not found", err)
	}
	log.Error().Err(err).Msg(msg)
	return huma.Error500InternalServerError(msg, err)
}

func filterResponse(f *models.Filter, warnings []synth.DegenerateFitWarning) *models.FilterResponse {
	resp := &models.FilterResponse{}
	resp.Body.ID = f.ID
	resp.Body.Name = f.Name
	resp.Body.Data = f.Data
	resp.Body.CreatedAt = f.CreatedAt
	resp.Body.UpdatedAt = f.UpdatedAt
	for _, w := range warnings {
		resp.Body.Warnings = append(resp.Body.Warnings, models.FitWarning{
			Channel: w.Channel,
			Kind:    string(w.Kind),
			Shift:   w.Shift,
		})
	}
	return resp
}
