// Package tools provides the MCP tools for geocoding, viewport computation
// and map lookups.
package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// MapsAPI is the subset of the map API client the tools call.
type MapsAPI interface {
	Geocode(ctx context.Context, req ymaps.GeocodeRequest) ([]ymaps.Toponym, error)
	ReverseGeocode(ctx context.Context, point geo.GeoPoint, kind string) (ymaps.Toponym, error)
	SearchOrganizations(ctx context.Context, req ymaps.SearchRequest) ([]ymaps.Organization, error)
	RedactedMapURL(req ymaps.MapRequest) (string, error)
	Viewport() geo.ViewportConfig
}

var _ MapsAPI = (*ymaps.Client)(nil)

// Registry holds all MCP tool registrations.
type Registry struct {
	api     MapsAPI
	sampler geo.SamplerConfig
	rand    geo.Rand
	logger  *slog.Logger
}

// NewRegistry creates a new MCP tool registry. A nil rng uses the global
// source; any other source is locked, since handlers run concurrently.
func NewRegistry(api MapsAPI, sampler geo.SamplerConfig, rng geo.Rand, logger *slog.Logger) *Registry {
	if rng == nil {
		rng = geo.GlobalRand()
	}
	rng = geo.LockedRand(rng)
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		api:     api,
		sampler: sampler,
		rand:    rng,
		logger:  logger,
	}
}

// ToolDefinition represents an MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     server.ToolHandlerFunc
}

// GetToolDefinitions returns all MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		// Geocoding Tools
		{
			Name:        "geocode_address",
			Description: "Convert an address or place name to coordinates and a map viewport",
			Tool:        GeocodeAddressTool(),
			Handler:     r.HandleGeocodeAddress,
		},
		{
			Name:        "reverse_geocode",
			Description: "Find the named object of a given kind at a coordinate",
			Tool:        ReverseGeocodeTool(),
			Handler:     r.HandleReverseGeocode,
		},

		// Geometry Tools
		{
			Name:        "compute_viewport",
			Description: "Compute the map center and span that frames a bounding box",
			Tool:        ComputeViewportTool(),
			Handler:     r.HandleComputeViewport,
		},
		{
			Name:        "sample_obscured_viewport",
			Description: "Pick a random partial view of a place for a guessing game",
			Tool:        SampleObscuredViewportTool(),
			Handler:     r.HandleSampleObscuredViewport,
		},
		{
			Name:        "calculate_distance",
			Description: "Great-circle distance between two coordinates",
			Tool:        CalculateDistanceTool(),
			Handler:     r.HandleCalculateDistance,
		},

		// Search Tools
		{
			Name:        "find_organizations",
			Description: "Find organizations near a location, classified by opening hours",
			Tool:        FindOrganizationsTool(),
			Handler:     r.HandleFindOrganizations,
		},

		// Map Tools
		{
			Name:        "static_map_url",
			Description: "Build a static map image URL for a viewport and markers",
			Tool:        StaticMapURLTool(),
			Handler:     r.HandleStaticMapURL,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}
