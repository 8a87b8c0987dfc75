package api

import (
	"net/http"

	"github.com/RMahshie/sparamgen/internal/api/handlers"
	"github.com/RMahshie/sparamgen/internal/processing"
	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, svc processing.FilterService) {
	filterHandler := handlers.NewFilterHandler(svc)

	huma.Register(api, huma.Operation{
		OperationID:   "createFilter",
		Method:        http.MethodPost,
		Path:          "/api/filters",
		Summary:       "Create a filter",
		Description:   "Parses the input form and builds the spec curve of every channel",
		Tags:          []string{"Filters"},
		DefaultStatus: http.StatusCreated,
	}, filterHandler.CreateFilter)

	huma.Register(api, huma.Operation{
		OperationID: "listFilters",
		Method:      http.MethodGet,
		Path:        "/api/filters",
		Summary:     "List filters",
		Tags:        []string{"Filters"},
	}, filterHandler.ListFilters)

	huma.Register(api, huma.Operation{
		OperationID: "getFilter",
		Method:      http.MethodGet,
		Path:        "/api/filters/{id}",
		Summary:     "Get a filter",
		Description: "Returns the spec and measurement curves of every channel",
		Tags:        []string{"Filters"},
	}, filterHandler.GetFilter)

	huma.Register(api, huma.Operation{
		OperationID: "loadMeasurements",
		Method:      http.MethodPut,
		Path:        "/api/filters/{id}/measurements",
		Summary:     "Load raw measurements",
		Description: "Replaces measurement curves with data read from an analyzer export",
		Tags:        []string{"Measurements"},
	}, filterHandler.LoadMeasurements)

	huma.Register(api, huma.Operation{
		OperationID: "generateMeasurements",
		Method:      http.MethodPost,
		Path:        "/api/filters/{id}/generate",
		Summary:     "Generate measurements",
		Description: "Synthesizes measurement curves that track the spec curves",
		Tags:        []string{"Measurements"},
	}, filterHandler.GenerateMeasurements)

	huma.Register(api, huma.Operation{
		OperationID: "editPoint",
		Method:      http.MethodPatch,
		Path:        "/api/filters/{id}/channels/{channel}/points/{index}",
		Summary:     "Edit a curve point",
		Description: "Sets a point or nudges its value by a delta",
		Tags:        []string{"Curves"},
	}, filterHandler.EditPoint)

	huma.Register(api, huma.Operation{
		OperationID: "getSpecText",
		Method:      http.MethodGet,
		Path:        "/api/filters/{id}/channels/{channel}/spec",
		Summary:     "Get spec text",
		Description: "Recovers the spec text of a channel from its current curve and saves it",
		Tags:        []string{"Curves"},
	}, filterHandler.GetSpecText)

	huma.Register(api, huma.Operation{
		OperationID: "composeSParameters",
		Method:      http.MethodPost,
		Path:        "/api/filters/{id}/sparameters",
		Summary:     "Compose S-parameters",
		Description: "Builds the S-parameter table and saves the table file",
		Tags:        []string{"S-Parameters"},
	}, filterHandler.ComposeSParameters)

	huma.Register(api, huma.Operation{
		OperationID: "getPlot",
		Method:      http.MethodGet,
		Path:        "/api/filters/{id}/plot",
		Summary:     "Plot curves",
		Description: "Renders the channel curves as an HTML page",
		Tags:        []string{"Curves"},
	}, filterHandler.GetPlot)
}
