package demo

import (
	"context"
	"fmt"
	"strings"

	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// FindDistrict prints the city district that contains address.
func (r *Runner) FindDistrict(ctx context.Context, address string) (string, error) {
	_, point, err := r.locate(ctx, address)
	if err != nil {
		return "", err
	}

	top, err := r.Geocoder.ReverseGeocode(ctx, point, ymaps.KindDistrict)
	if err != nil {
		return "", fmt.Errorf("district at %s: %w", point, err)
	}
	name := strings.TrimSpace(top.Name)
	if name == "" {
		return "", fmt.Errorf("district at %s: toponym has no name", point)
	}

	r.printf("Address %q is in district:\n-> %s\n", address, name)
	return name, nil
}
