// Package geo provides the geographic types and viewport calculations shared
// by the map tools. Everything here is pure: values in, values out, no I/O.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeoPoint is a WGS84 coordinate in degrees. Longitude comes first, matching
// the "lon lat" ordering used by the geocoder and the static map API.
type GeoPoint struct {
	Lon float64 `json:"longitude"`
	Lat float64 `json:"latitude"`
}

// String formats the point as "lon,lat" with 6 decimals, the form expected by
// the ll and pt query parameters.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lon, p.Lat)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p GeoPoint) IsFinite() bool {
	return isFinite(p.Lon) && isFinite(p.Lat)
}

// Span is the angular width and height of a viewport in degrees.
type Span struct {
	Lon float64 `json:"longitude"`
	Lat float64 `json:"latitude"`
}

// String formats the span as "lon,lat" with 6 decimals (the spn parameter).
func (s Span) String() string {
	return fmt.Sprintf("%.6f,%.6f", s.Lon, s.Lat)
}

// BoundingEnvelope is the axis-aligned box around a geographic feature.
// Lower == Upper is a valid, point-like envelope (an exact address).
type BoundingEnvelope struct {
	Lower GeoPoint `json:"lower_corner"`
	Upper GeoPoint `json:"upper_corner"`
}

// Width returns the absolute longitude and latitude extent of the envelope.
func (e BoundingEnvelope) Width() Span {
	return Span{
		Lon: math.Abs(e.Upper.Lon - e.Lower.Lon),
		Lat: math.Abs(e.Upper.Lat - e.Lower.Lat),
	}
}

// IsDegenerate reports whether the envelope has zero width and zero height.
func (e BoundingEnvelope) IsDegenerate() bool {
	w := e.Width()
	return w.Lon == 0 && w.Lat == 0
}

// Anchors returns the four corners followed by the four edge midpoints:
// lower-left, lower-right, upper-right, upper-left, then bottom, right, top
// and left midpoints.
func (e BoundingEnvelope) Anchors() [8]GeoPoint {
	lo, up := e.Lower, e.Upper
	w := e.Width()
	return [8]GeoPoint{
		{Lon: lo.Lon, Lat: lo.Lat},
		{Lon: up.Lon, Lat: lo.Lat},
		{Lon: up.Lon, Lat: up.Lat},
		{Lon: lo.Lon, Lat: up.Lat},
		{Lon: lo.Lon + w.Lon/2, Lat: lo.Lat},
		{Lon: up.Lon, Lat: lo.Lat + w.Lat/2},
		{Lon: lo.Lon + w.Lon/2, Lat: up.Lat},
		{Lon: lo.Lon, Lat: lo.Lat + w.Lat/2},
	}
}

func (e BoundingEnvelope) finite() bool {
	return e.Lower.IsFinite() && e.Upper.IsFinite()
}

// ViewportSpec holds the parameters needed to request a map image: where to
// center it and how many degrees it should cover.
type ViewportSpec struct {
	Center GeoPoint `json:"center"`
	Span   Span     `json:"span"`
}

// LL returns the center formatted for the ll query parameter.
func (v ViewportSpec) LL() string { return v.Center.String() }

// SPN returns the span formatted for the spn query parameter.
func (v ViewportSpec) SPN() string { return v.Span.String() }

// GeoObject is the raw, textual form of a geocoded feature as returned by
// the geocoder: each field holds two space-separated numbers "lon lat".
type GeoObject struct {
	Pos         string `json:"pos"`
	LowerCorner string `json:"lower_corner"`
	UpperCorner string `json:"upper_corner"`
}

// Point parses the object's position.
func (o GeoObject) Point() (GeoPoint, error) {
	return parseField("Point.pos", o.Pos)
}

// Envelope parses the object's bounding envelope.
func (o GeoObject) Envelope() (BoundingEnvelope, error) {
	lower, err := parseField("boundedBy.Envelope.lowerCorner", o.LowerCorner)
	if err != nil {
		return BoundingEnvelope{}, err
	}
	upper, err := parseField("boundedBy.Envelope.upperCorner", o.UpperCorner)
	if err != nil {
		return BoundingEnvelope{}, err
	}
	return BoundingEnvelope{Lower: lower, Upper: upper}, nil
}

// ParsePos parses a "lon lat" pair separated by whitespace.
func ParsePos(s string) (GeoPoint, error) {
	return parseField("pos", s)
}

func parseField(field, s string) (GeoPoint, error) {
	if strings.TrimSpace(s) == "" {
		return GeoPoint{}, malformed(field, s, errMissing)
	}
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return GeoPoint{}, malformed(field, s, fmt.Errorf("expected 2 numbers, got %d", len(parts)))
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return GeoPoint{}, malformed(field, s, err)
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return GeoPoint{}, malformed(field, s, err)
	}
	p := GeoPoint{Lon: lon, Lat: lat}
	if !p.IsFinite() {
		return GeoPoint{}, malformed(field, s, errNotFinite)
	}
	return p, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
