package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/geoviewport/pkg/geo"
)

// CalculateDistanceOutput defines the output of calculate_distance.
type CalculateDistanceOutput struct {
	From       Location `json:"from"`
	To         Location `json:"to"`
	Kilometers float64  `json:"distance_km"`
	Meters     float64  `json:"distance_m"`
}

// CalculateDistanceTool returns a tool definition for distance calculation
func CalculateDistanceTool() mcp.Tool {
	return mcp.NewTool("calculate_distance",
		mcp.WithDescription("Great-circle (haversine) distance between two coordinates"),
		mcp.WithNumber("from_latitude",
			mcp.Required(),
			mcp.Description("Latitude of the first point"),
		),
		mcp.WithNumber("from_longitude",
			mcp.Required(),
			mcp.Description("Longitude of the first point"),
		),
		mcp.WithNumber("to_latitude",
			mcp.Required(),
			mcp.Description("Latitude of the second point"),
		),
		mcp.WithNumber("to_longitude",
			mcp.Required(),
			mcp.Description("Longitude of the second point"),
		),
	)
}

// HandleCalculateDistance computes the distance between the two points.
func (r *Registry) HandleCalculateDistance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "calculate_distance")

	from, errResult := parsePoint(req, "from_latitude", "from_longitude")
	if errResult != nil {
		return errResult, nil
	}
	to, errResult := parsePoint(req, "to_latitude", "to_longitude")
	if errResult != nil {
		return errResult, nil
	}

	km := geo.HaversineDistanceKm(from, to)
	return jsonResult(logger, CalculateDistanceOutput{
		From:       locationOf(from),
		To:         locationOf(to),
		Kilometers: km,
		Meters:     km * 1000,
	}), nil
}
