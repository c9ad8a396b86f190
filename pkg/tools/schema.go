package tools

import (
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/geoviewport/pkg/geo"
)

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// jsonResult marshals output as the text content of a tool result.
func jsonResult(logger *slog.Logger, output any) *mcp.CallToolResult {
	resultBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result")
	}
	return mcp.NewToolResultText(string(resultBytes))
}

// Location is a coordinate in tool output.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func locationOf(p geo.GeoPoint) Location {
	return Location{Latitude: p.Lat, Longitude: p.Lon}
}

// Viewport is a map viewport in tool output. LL and SPN are the ready-made
// query parameter values.
type Viewport struct {
	Center        Location `json:"center"`
	SpanLatitude  float64  `json:"span_latitude"`
	SpanLongitude float64  `json:"span_longitude"`
	LL            string   `json:"ll"`
	SPN           string   `json:"spn"`
}

func viewportOf(v geo.ViewportSpec) Viewport {
	return Viewport{
		Center:        locationOf(v.Center),
		SpanLatitude:  v.Span.Lat,
		SpanLongitude: v.Span.Lon,
		LL:            v.LL(),
		SPN:           v.SPN(),
	}
}
