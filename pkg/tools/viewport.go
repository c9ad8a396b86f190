package tools

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// ComputeViewportOutput defines the output of compute_viewport.
type ComputeViewportOutput struct {
	Viewport Viewport `json:"viewport"`
}

// ComputeViewportTool returns a tool definition for viewport computation
func ComputeViewportTool() mcp.Tool {
	return mcp.NewTool("compute_viewport",
		mcp.WithDescription("Compute the map center and span that frames a bounding box around a point"),
		mcp.WithNumber("latitude",
			mcp.Required(),
			mcp.Description("Latitude of the point to center on"),
		),
		mcp.WithNumber("longitude",
			mcp.Required(),
			mcp.Description("Longitude of the point to center on"),
		),
		mcp.WithNumber("min_latitude",
			mcp.Required(),
			mcp.Description("Southern edge of the bounding box"),
		),
		mcp.WithNumber("min_longitude",
			mcp.Required(),
			mcp.Description("Western edge of the bounding box"),
		),
		mcp.WithNumber("max_latitude",
			mcp.Required(),
			mcp.Description("Northern edge of the bounding box"),
		),
		mcp.WithNumber("max_longitude",
			mcp.Required(),
			mcp.Description("Eastern edge of the bounding box"),
		),
		mcp.WithNumber("buffer_factor",
			mcp.Description("Extra margin as a fraction of the box size (default from configuration)"),
		),
	)
}

// HandleComputeViewport frames the bounding box without calling any API.
func (r *Registry) HandleComputeViewport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "compute_viewport")

	point, errResult := parsePoint(req, "latitude", "longitude")
	if errResult != nil {
		return errResult, nil
	}
	lower, errResult := parsePoint(req, "min_latitude", "min_longitude")
	if errResult != nil {
		return errResult, nil
	}
	upper, errResult := parsePoint(req, "max_latitude", "max_longitude")
	if errResult != nil {
		return errResult, nil
	}

	cfg := r.api.Viewport()
	if buffer := mcp.ParseFloat64(req, "buffer_factor", math.NaN()); !math.IsNaN(buffer) {
		if buffer < 0 {
			return ErrorResponse("Buffer factor must not be negative"), nil
		}
		cfg.BufferFactor = buffer
	}

	vp, err := geo.ComputeViewport(point, geo.BoundingEnvelope{Lower: lower, Upper: upper}, cfg)
	if err != nil {
		return ErrorFromErr(err, ""), nil
	}
	return jsonResult(logger, ComputeViewportOutput{Viewport: viewportOf(vp)}), nil
}

// SampleObscuredViewportOutput defines the output of sample_obscured_viewport.
type SampleObscuredViewportOutput struct {
	Place    string   `json:"place"`
	Viewport Viewport `json:"viewport"`
}

// SampleObscuredViewportTool returns a tool definition for obscured viewports
func SampleObscuredViewportTool() mcp.Tool {
	return mcp.NewTool("sample_obscured_viewport",
		mcp.WithDescription("Pick a random zoomed-in view near the edge of a place, hiding its overall shape"),
		mcp.WithString("place",
			mcp.Required(),
			mcp.Description("City or other place name to obscure"),
		),
		mcp.WithString("kind",
			mcp.Description("Toponym kind used for geocoding the place"),
			mcp.DefaultString(ymaps.KindLocality),
		),
		mcp.WithNumber("seed",
			mcp.Description("Optional seed for a reproducible view"),
		),
	)
}

// HandleSampleObscuredViewport geocodes the place and samples a view of it.
func (r *Registry) HandleSampleObscuredViewport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "sample_obscured_viewport")

	place := strings.TrimSpace(mcp.ParseString(req, "place", ""))
	if place == "" {
		return ErrorResponse("Place must not be empty"), nil
	}

	rng := r.rand
	if seed := mcp.ParseFloat64(req, "seed", math.NaN()); !math.IsNaN(seed) {
		s := uint64(int64(seed))
		rng = rand.New(rand.NewPCG(s, s))
	}

	toponyms, err := r.api.Geocode(ctx, ymaps.GeocodeRequest{
		Query:   place,
		Kind:    mcp.ParseString(req, "kind", ymaps.KindLocality),
		Results: 1,
	})
	if err != nil {
		logger.Error("geocoding failed", "place", place, "error", err)
		return ErrorFromErr(err, ymaps.GuidanceGeocoderAddressFormat), nil
	}

	vp, err := geo.ObscuredViewportFromGeoObject(toponyms[0].Raw, r.sampler, rng)
	if err != nil {
		return ErrorFromErr(err, ""), nil
	}
	return jsonResult(logger, SampleObscuredViewportOutput{
		Place:    toponyms[0].Name,
		Viewport: viewportOf(vp),
	}), nil
}
