// Package demo implements the command-line map scenarios: showing an
// address, finding pharmacies, naming a district and the guess-the-city
// slideshow.
package demo

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/NERVsystems/geoviewport/pkg/display"
	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// Geocoder resolves addresses and points to toponyms.
type Geocoder interface {
	GeocodeOne(ctx context.Context, req ymaps.GeocodeRequest) (ymaps.Toponym, error)
	ReverseGeocode(ctx context.Context, point geo.GeoPoint, kind string) (ymaps.Toponym, error)
}

// Searcher finds organizations near a point.
type Searcher interface {
	SearchOrganizations(ctx context.Context, req ymaps.SearchRequest) ([]ymaps.Organization, error)
}

// MapFetcher downloads static map images.
type MapFetcher interface {
	FetchMap(ctx context.Context, req ymaps.MapRequest) ([]byte, error)
}

// Display stores and presents images.
type Display interface {
	Show(ctx context.Context, name string, data []byte) (display.Image, error)
}

// Runner wires the scenarios to their collaborators.
type Runner struct {
	Geocoder Geocoder
	Searcher Searcher
	Maps     MapFetcher
	Display  Display
	Viewport geo.ViewportConfig
	Out      io.Writer
	Logger   *slog.Logger
}

// NewRunner builds a Runner backed by a single API client.
func NewRunner(client *ymaps.Client, surface Display, out io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		Geocoder: client,
		Searcher: client,
		Maps:     client,
		Display:  surface,
		Viewport: client.Viewport(),
		Out:      out,
		Logger:   logger,
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out != nil {
		fmt.Fprintf(r.Out, format, args...)
	}
}

// locate geocodes address and returns its toponym and point.
func (r *Runner) locate(ctx context.Context, address string) (ymaps.Toponym, geo.GeoPoint, error) {
	top, err := r.Geocoder.GeocodeOne(ctx, ymaps.GeocodeRequest{Query: address})
	if err != nil {
		return ymaps.Toponym{}, geo.GeoPoint{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	point, err := top.Point()
	if err != nil {
		return ymaps.Toponym{}, geo.GeoPoint{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	r.logger().Debug("address located", "address", address, "point", point.String())
	return top, point, nil
}
