package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

const maxGeocodeResults = 10

// GeocodeResult is one geocoded place in tool output.
type GeocodeResult struct {
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Precision string    `json:"precision,omitempty"`
	Location  Location  `json:"location"`
	Viewport  *Viewport `json:"viewport,omitempty"`
}

// GeocodeAddressOutput defines the output format for geocoded addresses
type GeocodeAddressOutput struct {
	Results []GeocodeResult `json:"results"`
}

// GeocodeAddressTool returns a tool definition for geocoding addresses
func GeocodeAddressTool() mcp.Tool {
	return mcp.NewTool("geocode_address",
		mcp.WithDescription("Convert an address or place name to coordinates and a map viewport"),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("The address or place name to geocode"),
		),
		mcp.WithString("kind",
			mcp.Description("Restrict results to a toponym kind such as house, street, district or locality"),
		),
		mcp.WithNumber("results",
			mcp.Description("Maximum number of results (1-10)"),
			mcp.DefaultNumber(1),
		),
	)
}

func (r *Registry) toGeocodeResult(t ymaps.Toponym) (GeocodeResult, error) {
	point, err := t.Point()
	if err != nil {
		return GeocodeResult{}, err
	}
	res := GeocodeResult{
		Name:      t.Name,
		Address:   t.Address,
		Kind:      t.Kind,
		Precision: t.Precision,
		Location:  locationOf(point),
	}
	// Point-only toponyms have no envelope and get no viewport.
	if vp, err := t.Viewport(r.api.Viewport()); err == nil {
		v := viewportOf(vp)
		res.Viewport = &v
	}
	return res, nil
}

// HandleGeocodeAddress implements the geocoding functionality
func (r *Registry) HandleGeocodeAddress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "geocode_address")

	address := strings.TrimSpace(mcp.ParseString(req, "address", ""))
	if address == "" {
		return ErrorResponse("Address must not be empty"), nil
	}
	results := int(mcp.ParseFloat64(req, "results", 1))
	if results < 1 || results > maxGeocodeResults {
		return ErrorResponse("Results must be between 1 and 10"), nil
	}

	toponyms, err := r.api.Geocode(ctx, ymaps.GeocodeRequest{
		Query:   address,
		Kind:    mcp.ParseString(req, "kind", ""),
		Results: results,
	})
	if err != nil {
		logger.Error("geocoding failed", "address", address, "error", err)
		return ErrorFromErr(err, ymaps.GuidanceGeocoderAddressFormat), nil
	}

	output := GeocodeAddressOutput{Results: make([]GeocodeResult, 0, len(toponyms))}
	for _, t := range toponyms {
		res, err := r.toGeocodeResult(t)
		if err != nil {
			logger.Warn("skipping malformed toponym", "name", t.Name, "error", err)
			continue
		}
		output.Results = append(output.Results, res)
	}
	if len(output.Results) == 0 {
		return ErrorWithGuidance(&ymaps.APIError{
			Service:  ymaps.ServiceGeocoder,
			Message:  "All results had malformed coordinates",
			Guidance: ymaps.GuidanceDataError,
		}), nil
	}

	return jsonResult(logger, output), nil
}

// ReverseGeocodeOutput defines the output format for reverse geocoded coordinates
type ReverseGeocodeOutput struct {
	Place GeocodeResult `json:"place"`
}

// ReverseGeocodeTool returns a tool definition for reverse geocoding
func ReverseGeocodeTool() mcp.Tool {
	return mcp.NewTool("reverse_geocode",
		mcp.WithDescription("Find the named object of a given kind at a coordinate"),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("The latitude coordinate"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("The longitude coordinate"),
		),
		mcp.WithString("kind",
			mcp.Description("Toponym kind to look for, for example district or street"),
		),
	)
}

// HandleReverseGeocode implements the reverse geocoding functionality
func (r *Registry) HandleReverseGeocode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "reverse_geocode")

	point, errResult := parsePoint(req, "latitude", "longitude")
	if errResult != nil {
		return errResult, nil
	}
	kind := mcp.ParseString(req, "kind", "")

	top, err := r.api.ReverseGeocode(ctx, point, kind)
	if err != nil {
		logger.Error("reverse geocoding failed", "point", point.String(), "kind", kind, "error", err)
		return ErrorFromErr(err, "No object of that kind at this location. Try another kind or omit it."), nil
	}

	res, err := r.toGeocodeResult(top)
	if err != nil {
		return ErrorFromErr(err, ""), nil
	}
	return jsonResult(logger, ReverseGeocodeOutput{Place: res}), nil
}
