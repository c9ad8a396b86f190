package demo

import (
	"context"
	"fmt"
	"strings"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/ymaps"
)

// PharmacyQuery is the search text used for pharmacies.
const PharmacyQuery = "аптека"

const noHours = "no opening hours data"

// NearestReport describes the pharmacy closest to a start address.
type NearestReport struct {
	Start      geo.GeoPoint
	Pharmacy   ymaps.Organization
	DistanceKm float64
	MapPath    string // empty if the map could not be shown
}

// NearestPharmacy finds the pharmacy nearest to address, shows both on a map
// and prints its name, address, hours and distance. A map failure is logged
// and the report is still printed.
func (r *Runner) NearestPharmacy(ctx context.Context, address string) (NearestReport, error) {
	_, start, err := r.locate(ctx, address)
	if err != nil {
		return NearestReport{}, err
	}

	orgs, err := r.Searcher.SearchOrganizations(ctx, ymaps.SearchRequest{
		Text:    PharmacyQuery,
		Near:    start,
		Results: 1,
	})
	if err != nil {
		return NearestReport{}, fmt.Errorf("search near %s: %w", start, err)
	}
	report := NearestReport{
		Start:      start,
		Pharmacy:   orgs[0],
		DistanceKm: geo.HaversineDistanceKm(start, orgs[0].Point),
	}

	data, err := r.Maps.FetchMap(ctx, ymaps.MapRequest{Markers: []ymaps.Marker{
		{Point: start, Style: ymaps.MarkerCodeBlue},
		{Point: report.Pharmacy.Point, Style: ymaps.MarkerCodeRed},
	}})
	if err == nil {
		img, showErr := r.Display.Show(ctx, "nearest-pharmacy", data)
		err = showErr
		report.MapPath = img.Path
	}
	if err != nil {
		r.logger().Warn("could not show map", "error", err)
	}

	hours := report.Pharmacy.HoursText
	if hours == "" {
		hours = noHours
	}
	meters := report.DistanceKm * 1000
	r.printf("%s\n", strings.Repeat("-", 40))
	r.printf("Nearest pharmacy:\n")
	r.printf("  Name:     %s\n", report.Pharmacy.Name)
	r.printf("  Address:  %s\n", report.Pharmacy.Address)
	r.printf("  Hours:    %s\n", hours)
	r.printf("  Distance: %.1f m (~%.2f km)\n", meters, report.DistanceKm)
	r.printf("%s\n", strings.Repeat("-", 40))
	return report, nil
}

// DefaultPharmacyCount is how many pharmacies Pharmacies shows when n <= 0.
const DefaultPharmacyCount = 10

// Pharmacies shows up to n pharmacies near address, colored by opening
// hours: green for 24/7, blue for regular hours, grey when unknown. It
// returns the organizations that made it onto the map.
func (r *Runner) Pharmacies(ctx context.Context, address string, n int) ([]ymaps.Organization, error) {
	if n <= 0 {
		n = DefaultPharmacyCount
	}
	_, start, err := r.locate(ctx, address)
	if err != nil {
		return nil, err
	}

	orgs, err := r.Searcher.SearchOrganizations(ctx, ymaps.SearchRequest{
		Text:    PharmacyQuery,
		Near:    start,
		Results: n,
	})
	if err != nil {
		return nil, fmt.Errorf("search near %s: %w", start, err)
	}

	counts := make(map[ymaps.MarkerStyle]int)
	markers := make([]ymaps.Marker, 0, len(orgs))
	shown := make([]ymaps.Organization, 0, len(orgs))
	for _, org := range orgs {
		if !org.Point.IsFinite() {
			r.logger().Warn("skipping pharmacy with unusable location", "name", org.Name)
			continue
		}
		style := org.MarkerStyle()
		counts[style]++
		markers = append(markers, ymaps.Marker{Point: org.Point, Style: style.Code()})
		shown = append(shown, org)
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("search near %s: %w", start, ymaps.ErrNotFound)
	}

	data, err := r.Maps.FetchMap(ctx, ymaps.MapRequest{Markers: markers})
	if err != nil {
		return nil, fmt.Errorf("fetch map: %w", err)
	}
	img, err := r.Display.Show(ctx, "pharmacies", data)
	if err != nil {
		return nil, err
	}

	r.printf("Showing %d pharmacies (%d %s, %d %s, %d %s): %s\n", len(shown),
		counts[ymaps.MarkerAllDay], ymaps.MarkerAllDay,
		counts[ymaps.MarkerHasHours], ymaps.MarkerHasHours,
		counts[ymaps.MarkerUnknownHours], ymaps.MarkerUnknownHours,
		img.Path)
	return shown, nil
}
