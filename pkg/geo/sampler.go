package geo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Rand is the random source used by SampleObscuredViewport. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// globalRand forwards to the process-wide generator in math/rand/v2.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// GlobalRand returns a Rand backed by the math/rand/v2 top-level functions.
func GlobalRand() Rand { return globalRand{} }

// lockedRand serializes access to a Rand shared between goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// LockedRand makes r safe for concurrent use. The global source is already
// safe and is returned as is.
func LockedRand(r Rand) Rand {
	switch r.(type) {
	case globalRand, *lockedRand:
		return r
	}
	return &lockedRand{r: r}
}

// SamplerConfig controls the randomized, obscured viewport used by the
// guess-the-city game.
type SamplerConfig struct {
	MinZoom float64 `mapstructure:"min_zoom"`
	MaxZoom float64 `mapstructure:"max_zoom"`
	MinSpan float64 `mapstructure:"min_span"`
	MaxSpan float64 `mapstructure:"max_span"`
	// OffsetRangeFactor bounds the random center shift as a fraction of the
	// span; the shift on each axis is at most span*OffsetRangeFactor/2.
	OffsetRangeFactor float64 `mapstructure:"offset_range_factor"`
	// PointSpanMultiplier sizes the fixed span for point-like envelopes as a
	// multiple of MinSpan.
	PointSpanMultiplier float64 `mapstructure:"point_span_multiplier"`
}

// DefaultSamplerConfig returns the game's standard tuning.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		MinZoom:             0.20,
		MaxZoom:             0.45,
		MinSpan:             0.005,
		MaxSpan:             0.25,
		OffsetRangeFactor:   0.15,
		PointSpanMultiplier: 15,
	}
}

// Validate reports inverted ranges and non-positive sizes.
func (c SamplerConfig) Validate() error {
	var errs []error
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		errs = append(errs, fmt.Errorf("zoom range [%g, %g] is invalid", c.MinZoom, c.MaxZoom))
	}
	if c.MinSpan <= 0 || c.MaxSpan < c.MinSpan {
		errs = append(errs, fmt.Errorf("span range [%g, %g] is invalid", c.MinSpan, c.MaxSpan))
	}
	if c.OffsetRangeFactor < 0 {
		errs = append(errs, fmt.Errorf("offset range factor %g must not be negative", c.OffsetRangeFactor))
	}
	if c.PointSpanMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("point span multiplier %g must be positive", c.PointSpanMultiplier))
	}
	return errors.Join(errs...)
}

// PointSpan is the fixed span used for point-like envelopes.
func (c SamplerConfig) PointSpan() Span {
	s := c.MinSpan * c.PointSpanMultiplier
	return Span{Lon: s, Lat: s}
}

// MaxOffset returns the largest center shift allowed for the given span.
func (c SamplerConfig) MaxOffset(span Span) Span {
	return Span{
		Lon: span.Lon * c.OffsetRangeFactor / 2,
		Lat: span.Lat * c.OffsetRangeFactor / 2,
	}
}

// SampleObscuredViewport picks a small viewport near one of the envelope's
// corners or edge midpoints, so the rendered map shows part of the region
// without revealing its outline or label.
//
// A point-like envelope gets a fixed span centered exactly on point and draws
// no random numbers. A nil r uses the process-wide generator.
func SampleObscuredViewport(envelope BoundingEnvelope, point GeoPoint, cfg SamplerConfig, r Rand) (ViewportSpec, error) {
	if !point.IsFinite() {
		return ViewportSpec{}, malformed("point", point.String(), errNotFinite)
	}
	if !envelope.finite() {
		return ViewportSpec{}, malformed("envelope", "", errNotFinite)
	}
	if r == nil {
		r = globalRand{}
	}

	if envelope.IsDegenerate() {
		return ViewportSpec{Center: point, Span: cfg.PointSpan()}, nil
	}

	zoom := uniform(r, cfg.MinZoom, cfg.MaxZoom)
	w := envelope.Width()
	span := Span{
		Lon: clamp(w.Lon*zoom, cfg.MinSpan, cfg.MaxSpan),
		Lat: clamp(w.Lat*zoom, cfg.MinSpan, cfg.MaxSpan),
	}

	anchors := envelope.Anchors()
	anchor := anchors[r.IntN(len(anchors))]

	off := cfg.MaxOffset(span)
	center := GeoPoint{
		Lon: anchor.Lon + uniform(r, -off.Lon, off.Lon),
		Lat: anchor.Lat + uniform(r, -off.Lat, off.Lat),
	}
	return ViewportSpec{Center: center, Span: span}, nil
}

// ObscuredViewportFromGeoObject parses the raw geocoder fields and samples an
// obscured viewport for them.
func ObscuredViewportFromGeoObject(obj GeoObject, cfg SamplerConfig, r Rand) (ViewportSpec, error) {
	envelope, err := obj.Envelope()
	if err != nil {
		return ViewportSpec{}, err
	}
	point, err := obj.Point()
	if err != nil {
		return ViewportSpec{}, err
	}
	return SampleObscuredViewport(envelope, point, cfg, r)
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
