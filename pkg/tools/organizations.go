package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

const maxOrganizations = 50

// Organization is one search hit in tool output.
type Organization struct {
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	Hours      string   `json:"hours,omitempty"`
	HoursClass string   `json:"hours_class"`
	Marker     string   `json:"marker"`
	Location   Location `json:"location"`
	DistanceM  float64  `json:"distance_m"`
}

// FindOrganizationsOutput defines the output of find_organizations.
type FindOrganizationsOutput struct {
	Organizations []Organization `json:"organizations"`
}

// FindOrganizationsTool returns a tool definition for organization search
func FindOrganizationsTool() mcp.Tool {
	return mcp.NewTool("find_organizations",
		mcp.WithDescription("Find organizations such as pharmacies near a location, with opening-hours class and map marker"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("What to search for, for example \"аптека\""),
		),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("Latitude to search around"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("Longitude to search around"),
		),
		mcp.WithNumber("results",
			mcp.Description("Maximum number of organizations (1-50)"),
			mcp.DefaultNumber(10),
		),
	)
}

// HandleFindOrganizations searches and classifies organizations.
func (r *Registry) HandleFindOrganizations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "find_organizations")

	text := strings.TrimSpace(mcp.ParseString(req, "text", ""))
	if text == "" {
		return ErrorResponse("Search text must not be empty"), nil
	}
	near, errResult := parsePoint(req, "latitude", "longitude")
	if errResult != nil {
		return errResult, nil
	}
	results := int(mcp.ParseFloat64(req, "results", 10))
	if results < 1 || results > maxOrganizations {
		return ErrorResponse("Results must be between 1 and 50"), nil
	}

	orgs, err := r.api.SearchOrganizations(ctx, ymaps.SearchRequest{
		Text:    text,
		Near:    near,
		Results: results,
	})
	if err != nil {
		logger.Error("search failed", "text", text, "error", err)
		return ErrorFromErr(err, ymaps.GuidanceSearchNoResults), nil
	}

	output := FindOrganizationsOutput{Organizations: make([]Organization, 0, len(orgs))}
	for _, org := range orgs {
		style := org.MarkerStyle()
		output.Organizations = append(output.Organizations, Organization{
			Name:       org.Name,
			Address:    org.Address,
			Hours:      org.HoursText,
			HoursClass: style.String(),
			Marker:     style.Code(),
			Location:   locationOf(org.Point),
			DistanceM:  geo.HaversineDistanceKm(near, org.Point) * 1000,
		})
	}
	return jsonResult(logger, output), nil
}
