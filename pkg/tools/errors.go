package tools

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// ErrorWithGuidance returns a properly formatted error response with user guidance.
func ErrorWithGuidance(err *ymaps.APIError) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s\n\nGuidance: %s", err.Message, err.Guidance)
	return mcp.NewToolResultError(errorText)
}

// ErrorFromErr maps a client or geometry failure to a tool error result.
func ErrorFromErr(err error, notFoundGuidance string) *mcp.CallToolResult {
	var apiErr *ymaps.APIError
	switch {
	case errors.As(err, &apiErr):
		return ErrorWithGuidance(apiErr)
	case errors.Is(err, ymaps.ErrNotFound):
		return ErrorWithGuidance(&ymaps.APIError{
			Message:  "No results found",
			Guidance: notFoundGuidance,
		})
	case errors.Is(err, geo.ErrMalformedGeoObject):
		return ErrorWithGuidance(&ymaps.APIError{
			Message:  err.Error(),
			Guidance: ymaps.GuidanceDataError,
		})
	default:
		return ErrorResponse(err.Error())
	}
}

// ValidationError creates an error for invalid coordinate parameters.
func ValidationError(lat, lon float64) *ymaps.APIError {
	var message string

	switch {
	case math.IsNaN(lat) || math.IsNaN(lon):
		message = "Latitude and longitude are required"
	case lat < -90 || lat > 90:
		message = fmt.Sprintf("Invalid latitude value: %f (must be between -90 and 90)", lat)
	case lon < -180 || lon > 180:
		message = fmt.Sprintf("Invalid longitude value: %f (must be between -180 and 180)", lon)
	default:
		return nil
	}

	return &ymaps.APIError{
		Service:     "validation",
		StatusCode:  http.StatusBadRequest,
		Message:     message,
		Recoverable: true,
		Guidance:    "Please correct the parameters and try again.",
	}
}

// parsePoint reads a latitude/longitude argument pair. Missing values are
// reported as a validation error.
func parsePoint(req mcp.CallToolRequest, latKey, lonKey string) (geo.GeoPoint, *mcp.CallToolResult) {
	lat := mcp.ParseFloat64(req, latKey, math.NaN())
	lon := mcp.ParseFloat64(req, lonKey, math.NaN())
	if verr := ValidationError(lat, lon); verr != nil {
		return geo.GeoPoint{}, ErrorWithGuidance(verr)
	}
	return geo.GeoPoint{Lon: lon, Lat: lat}, nil
}
