package tools

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

const (
	maxMapWidth  = 650
	maxMapHeight = 450
)

// StaticMapURLOutput defines the output of static_map_url.
type StaticMapURLOutput struct {
	URL string `json:"url"`
}

// StaticMapURLTool returns a tool definition for static map URLs
func StaticMapURLTool() mcp.Tool {
	return mcp.NewTool("static_map_url",
		mcp.WithDescription("Build a static map image URL for a viewport and/or markers. The API key is not included."),
		mcp.WithNumber("center_latitude",
			mcp.Description("Viewport center latitude; omit to fit the map to the markers"),
		),
		mcp.WithNumber("center_longitude",
			mcp.Description("Viewport center longitude"),
		),
		mcp.WithNumber("span_latitude",
			mcp.Description("Viewport height in degrees"),
		),
		mcp.WithNumber("span_longitude",
			mcp.Description("Viewport width in degrees"),
		),
		mcp.WithString("markers",
			mcp.Description("Markers as \"lon,lat,style\" separated by ~, for example 37.62,55.75,pm2rdm"),
		),
		mcp.WithNumber("width",
			mcp.Description("Image width in pixels (up to 650)"),
		),
		mcp.WithNumber("height",
			mcp.Description("Image height in pixels (up to 450)"),
		),
	)
}

// HandleStaticMapURL builds the map URL. Nothing is downloaded.
func (r *Registry) HandleStaticMapURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "static_map_url")

	var mapReq ymaps.MapRequest

	if !math.IsNaN(mcp.ParseFloat64(req, "center_latitude", math.NaN())) {
		center, errResult := parsePoint(req, "center_latitude", "center_longitude")
		if errResult != nil {
			return errResult, nil
		}
		span := geo.Span{
			Lat: mcp.ParseFloat64(req, "span_latitude", math.NaN()),
			Lon: mcp.ParseFloat64(req, "span_longitude", math.NaN()),
		}
		if !(span.Lat > 0) || !(span.Lon > 0) {
			return ErrorResponse("A viewport needs positive span_latitude and span_longitude"), nil
		}
		mapReq.Viewport = &geo.ViewportSpec{Center: center, Span: span}
	}

	markers, err := parseMarkers(mcp.ParseString(req, "markers", ""))
	if err != nil {
		return ErrorResponse(err.Error()), nil
	}
	mapReq.Markers = markers

	mapReq.Width = int(mcp.ParseFloat64(req, "width", 0))
	mapReq.Height = int(mcp.ParseFloat64(req, "height", 0))
	if mapReq.Width < 0 || mapReq.Width > maxMapWidth || mapReq.Height < 0 || mapReq.Height > maxMapHeight {
		return ErrorResponse("Image size must be at most 650x450"), nil
	}

	u, err := r.api.RedactedMapURL(mapReq)
	if err != nil {
		logger.Error("failed to build map url", "error", err)
		return ErrorResponse("Provide a viewport (center and span) or at least one marker"), nil
	}
	return jsonResult(logger, StaticMapURLOutput{URL: u}), nil
}

// parseMarkers reads "lon,lat[,style]" entries separated by "~".
func parseMarkers(s string) ([]ymaps.Marker, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var markers []ymaps.Marker
	for i, part := range strings.Split(s, "~") {
		fields := strings.Split(strings.TrimSpace(part), ",")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("marker %d: want lon,lat[,style], got %q", i+1, part)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("marker %d: bad longitude %q", i+1, fields[0])
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("marker %d: bad latitude %q", i+1, fields[1])
		}
		if verr := ValidationError(lat, lon); verr != nil {
			return nil, fmt.Errorf("marker %d: %s", i+1, verr.Message)
		}
		m := ymaps.Marker{Point: geo.GeoPoint{Lon: lon, Lat: lat}}
		if len(fields) == 3 {
			m.Style = strings.TrimSpace(fields[2])
		}
		markers = append(markers, m)
	}
	return markers, nil
}
