package geo

import "math"

// ViewportConfig controls how an envelope is turned into a map viewport.
type ViewportConfig struct {
	// BufferFactor widens the span by this fraction of the envelope size.
	BufferFactor float64 `mapstructure:"buffer_factor"`
	// MinSpan is the smallest span in degrees for either axis, so that a
	// point-like envelope still yields a visible map.
	MinSpan float64 `mapstructure:"min_span"`
}

// DefaultViewportConfig returns a 20% buffer and a 0.002° minimum span.
func DefaultViewportConfig() ViewportConfig {
	return ViewportConfig{
		BufferFactor: 0.2,
		MinSpan:      0.002,
	}
}

// ComputeViewport centers the viewport on point and sizes it to the envelope
// plus the configured buffer, flooring each axis at MinSpan.
//
// The center is the geocoded point, not the envelope midpoint, so the exact
// location stays in focus even if the envelope is lopsided around it.
func ComputeViewport(point GeoPoint, envelope BoundingEnvelope, cfg ViewportConfig) (ViewportSpec, error) {
	if !point.IsFinite() {
		return ViewportSpec{}, malformed("point", point.String(), errNotFinite)
	}
	if !envelope.finite() {
		return ViewportSpec{}, malformed("envelope", "", errNotFinite)
	}

	w := envelope.Width()
	span := Span{
		Lon: math.Max(w.Lon*(1+cfg.BufferFactor), cfg.MinSpan),
		Lat: math.Max(w.Lat*(1+cfg.BufferFactor), cfg.MinSpan),
	}
	return ViewportSpec{Center: point, Span: span}, nil
}

// ViewportFromGeoObject parses the raw geocoder fields and computes the
// viewport for them.
func ViewportFromGeoObject(obj GeoObject, cfg ViewportConfig) (ViewportSpec, error) {
	point, err := obj.Point()
	if err != nil {
		return ViewportSpec{}, err
	}
	envelope, err := obj.Envelope()
	if err != nil {
		return ViewportSpec{}, err
	}
	return ComputeViewport(point, envelope, cfg)
}
