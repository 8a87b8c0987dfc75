package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/RMahshie/sparamgen/internal/measurement"
	"github.com/RMahshie/sparamgen/internal/processing"
	"github.com/RMahshie/sparamgen/internal/repository"
	"github.com/RMahshie/sparamgen/internal/specparse"
	"github.com/RMahshie/sparamgen/internal/storage"
	"github.com/RMahshie/sparamgen/internal/synth"
	"github.com/RMahshie/sparamgen/pkg/models"
)

// MockFilterService implements processing.FilterService for testing
type MockFilterService struct {
	mock.Mock
}

func (m *MockFilterService) CreateFilter(ctx context.Context, input models.FilterInput) (*models.Filter, error) {
	args := m.Called(ctx, input)
	f, _ := args.Get(0).(*models.Filter)
	return f, args.Error(1)
}

func (m *MockFilterService) GetFilter(ctx context.Context, id uuid.UUID) (*models.Filter, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.Filter)
	return f, args.Error(1)
}

func (m *MockFilterService) ListFilters(ctx context.Context, limit int) ([]*models.Filter, error) {
	args := m.Called(ctx, limit)
	filters, _ := args.Get(0).([]*models.Filter)
	return filters, args.Error(1)
}

func (m *MockFilterService) LoadMeasurements(ctx context.Context, id uuid.UUID, raw []byte) (*models.Filter, error) {
	args := m.Called(ctx, id, raw)
	f, _ := args.Get(0).(*models.Filter)
	return f, args.Error(1)
}

func (m *MockFilterService) LoadChannelMeasurement(ctx context.Context, id uuid.UUID, kind models.ChannelKind, raw []byte) (*models.Filter, error) {
	args := m.Called(ctx, id, kind, raw)
	f, _ := args.Get(0).(*models.Filter)
	return f, args.Error(1)
}

func (m *MockFilterService) GenerateMeasurements(ctx context.Context, id uuid.UUID, force bool) (*models.Filter, []synth.DegenerateFitWarning, error) {
	args := m.Called(ctx, id, force)
	f, _ := args.Get(0).(*models.Filter)
	w, _ := args.Get(1).([]synth.DegenerateFitWarning)
	return f, w, args.Error(2)
}

func (m *MockFilterService) EditPoint(ctx context.Context, id uuid.UUID, edit processing.PointEdit) (*models.Filter, error) {
	args := m.Called(ctx, id, edit)
	f, _ := args.Get(0).(*models.Filter)
	return f, args.Error(1)
}

func (m *MockFilterService) ExportSpecText(ctx context.Context, id uuid.UUID, kind models.ChannelKind) (*processing.SpecExport, error) {
	args := m.Called(ctx, id, kind)
	exp, _ := args.Get(0).(*processing.SpecExport)
	return exp, args.Error(1)
}

func (m *MockFilterService) ComposeSParameters(ctx context.Context, id uuid.UUID, req processing.ComposeRequest) (*models.SParameterTable, *processing.Artifact, error) {
	args := m.Called(ctx, id, req)
	table, _ := args.Get(0).(*models.SParameterTable)
	art, _ := args.Get(1).(*processing.Artifact)
	return table, art, args.Error(2)
}

func (m *MockFilterService) RenderPlot(ctx context.Context, id uuid.UUID) ([]byte, *processing.Artifact, error) {
	args := m.Called(ctx, id)
	html, _ := args.Get(0).([]byte)
	art, _ := args.Get(1).(*processing.Artifact)
	return html, art, args.Error(2)
}

func newTestAPI(t *testing.T, svc *MockFilterService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	h := NewFilterHandler(svc)
	huma.Register(api, huma.Operation{
		OperationID:   "createFilter",
		Method:        http.MethodPost,
		Path:          "/api/filters",
		DefaultStatus: http.StatusCreated,
	}, h.CreateFilter)
	huma.Get(api, "/api/filters/{id}", h.GetFilter)
	huma.Put(api, "/api/filters/{id}/measurements", h.LoadMeasurements)
	huma.Post(api, "/api/filters/{id}/generate", h.GenerateMeasurements)
	huma.Patch(api, "/api/filters/{id}/channels/{channel}/points/{index}", h.EditPoint)
	huma.Post(api, "/api/filters/{id}/sparameters", h.ComposeSParameters)
	huma.Get(api, "/api/filters/{id}/plot", h.GetPlot)
	return api
}

func TestCreateFilter(t *testing.T) {
	tests := []struct {
		name      string
		body      map[string]any
		mockSetup func(*MockFilterService)
		wantCode  int
	}{
		{
			name: "valid input",
			body: map[string]any{"name": "BPF", "center_frequency": "19750", "bandwidth": "800"},
			mockSetup: func(svc *MockFilterService) {
				svc.On("CreateFilter", mock.Anything, mock.AnythingOfType("models.FilterInput")).
					Return(&models.Filter{ID: uuid.New().String(), Name: "BPF", Data: &models.NumericalData{}}, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "format error",
			body: map[string]any{"center_frequency": "19750", "bandwidth": "800", "insertion_loss_in_band": "oops"},
			mockSetup: func(svc *MockFilterService) {
				svc.On("CreateFilter", mock.Anything, mock.Anything).
					Return(nil, &specparse.FormatError{LineNo: 1, Line: "oops", Reason: "expected 2 or 3 tokens"})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "conversion error",
			body: map[string]any{"center_frequency": "abc", "bandwidth": "800"},
			mockSetup: func(svc *MockFilterService) {
				svc.On("CreateFilter", mock.Anything, mock.Anything).
					Return(nil, &specparse.ConversionError{Field: "center frequency", Value: "abc"})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "missing bandwidth",
			body:      map[string]any{"center_frequency": "19750"},
			mockSetup: func(*MockFilterService) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name: "repository failure",
			body: map[string]any{"center_frequency": "19750", "bandwidth": "800"},
			mockSetup: func(svc *MockFilterService) {
				svc.On("CreateFilter", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockFilterService{}
			tt.mockSetup(svc)

			resp := newTestAPI(t, svc).Post("/api/filters", tt.body)
			assert.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
		})
	}
}

func TestGetFilter(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		path      string
		mockSetup func(*MockFilterService)
		wantCode  int
	}{
		{
			name: "found",
			path: "/api/filters/" + id.String(),
			mockSetup: func(svc *MockFilterService) {
				svc.On("GetFilter", mock.Anything, id).Return(&models.Filter{ID: id.String()}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "not found",
			path: "/api/filters/" + id.String(),
			mockSetup: func(svc *MockFilterService) {
				svc.On("GetFilter", mock.Anything, id).Return(nil, repository.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:      "invalid id",
			path:      "/api/filters/not-a-uuid",
			mockSetup: func(*MockFilterService) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockFilterService{}
			tt.mockSetup(svc)

			resp := newTestAPI(t, svc).Get(tt.path)
			assert.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
		})
	}
}

func TestLoadMeasurements(t *testing.T) {
	id := uuid.New()
	svc := &MockFilterService{}
	svc.On("LoadChannelMeasurement", mock.Anything, id, models.GroupDelay, []byte("1 2\n")).
		Return(&models.Filter{ID: id.String()}, nil)
	svc.On("LoadMeasurements", mock.Anything, id, []byte("1 2 3\n")).
		Return(nil, &measurement.RowError{LineNo: 1, Line: "1 2 3", Reason: "expected 8 columns, got 3"})
	api := newTestAPI(t, svc)

	resp := api.Put("/api/filters/"+id.String()+"/measurements", map[string]any{"channel": "group_delay", "data": "1 2\n"})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Put("/api/filters/"+id.String()+"/measurements", map[string]any{"data": "1 2 3\n"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "expected 8 columns")
}

func TestGenerateMeasurements_ReturnsWarnings(t *testing.T) {
	id := uuid.New()
	svc := &MockFilterService{}
	svc.On("GenerateMeasurements", mock.Anything, id, true).Return(
		&models.Filter{ID: id.String()},
		[]synth.DegenerateFitWarning{{Channel: models.GroupDelay, Kind: synth.ShiftTooLarge, Shift: -420}},
		nil)

	resp := newTestAPI(t, svc).Post("/api/filters/" + id.String() + "/generate?force=true")
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "shift_too_large")
}

func TestEditPoint(t *testing.T) {
	id := uuid.New()
	delta := 1.0
	svc := &MockFilterService{}
	svc.On("EditPoint", mock.Anything, id, processing.PointEdit{
		Channel: models.InsertionLoss, Curve: "measurement", Index: 3, Delta: &delta,
	}).Return(&models.Filter{ID: id.String()}, nil)
	svc.On("EditPoint", mock.Anything, id, mock.MatchedBy(func(e processing.PointEdit) bool { return e.Index == 999 })).
		Return(nil, processing.ErrInvalidRequest)
	api := newTestAPI(t, svc)

	resp := api.Patch("/api/filters/"+id.String()+"/channels/insertion_loss/points/3", map[string]any{"curve": "measurement", "delta": 1})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Patch("/api/filters/"+id.String()+"/channels/insertion_loss/points/999", map[string]any{"delta": 1})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestComposeSParameters(t *testing.T) {
	id := uuid.New()
	svc := &MockFilterService{}
	svc.On("ComposeSParameters", mock.Anything, id, mock.MatchedBy(func(r processing.ComposeRequest) bool {
		return r.NumberOfLines == 11 && r.S12 != nil && r.S12.Mag == -80
	})).Return(
		&models.SParameterTable{FilterID: id.String(), Rows: make([]models.SParameterRow, 11)},
		&processing.Artifact{Key: "filters/x/BPF.s2p", URL: "https://example.com/t"},
		nil)
	svc.On("ComposeSParameters", mock.Anything, id, mock.MatchedBy(func(r processing.ComposeRequest) bool {
		return r.NumberOfLines == 0
	})).Return(nil, nil, &storage.IOFailure{Op: "put", Key: "k", Err: errors.New("denied")})
	api := newTestAPI(t, svc)

	resp := api.Post("/api/filters/"+id.String()+"/sparameters", map[string]any{"number_of_lines": 11, "s12": map[string]any{"mag": -80, "ang": 0}})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "https://example.com/t")

	resp = api.Post("/api/filters/"+id.String()+"/sparameters", map[string]any{"number_of_lines": 1})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	resp = api.Post("/api/filters/"+id.String()+"/sparameters", map[string]any{})
	assert.Equal(t, http.StatusInternalServerError, resp.Code, resp.Body.String())
}

func TestGetPlot(t *testing.T) {
	id := uuid.New()
	svc := &MockFilterService{}
	svc.On("RenderPlot", mock.Anything, id).Return([]byte("<html>plot</html>"), &processing.Artifact{}, nil)

	resp := newTestAPI(t, svc).Get("/api/filters/" + id.String() + "/plot")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/html"))
	assert.Equal(t, "<html>plot</html>", resp.Body.String())
}
