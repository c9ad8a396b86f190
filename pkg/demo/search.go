package demo

import (
	"context"
	"fmt"

	"github.com/NERVsystems/geoviewport/pkg/display"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// SearchAndShow geocodes address and shows a map framing it, with a large
// red marker on the exact point.
func (r *Runner) SearchAndShow(ctx context.Context, address string) (display.Image, error) {
	top, point, err := r.locate(ctx, address)
	if err != nil {
		return display.Image{}, err
	}
	r.printf("Found: %s\n", top.Address)

	vp, err := top.Viewport(r.Viewport)
	if err != nil {
		return display.Image{}, fmt.Errorf("viewport for %q: %w", address, err)
	}

	data, err := r.Maps.FetchMap(ctx, ymaps.MapRequest{
		Viewport: &vp,
		Markers:  []ymaps.Marker{{Point: point, Style: ymaps.MarkerCodeRedLarge}},
	})
	if err != nil {
		return display.Image{}, fmt.Errorf("fetch map: %w", err)
	}

	img, err := r.Display.Show(ctx, "search", data)
	if err != nil {
		return display.Image{}, err
	}
	r.printf("Map centered at %s, span %s: %s\n", vp.LL(), vp.SPN(), img.Path)
	return img, nil
}
