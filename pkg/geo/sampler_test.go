package geo

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingRand records how many numbers were drawn.
type countingRand struct {
	r     *rand.Rand
	draws int
}

func (c *countingRand) Float64() float64 { c.draws++; return c.r.Float64() }
func (c *countingRand) IntN(n int) int   { c.draws++; return c.r.IntN(n) }

func TestSampleObscuredViewportPointLike(t *testing.T) {
	cfg := DefaultSamplerConfig()
	p := GeoPoint{Lon: 30.3141, Lat: 59.9386}
	env := BoundingEnvelope{Lower: p, Upper: p}
	r := &countingRand{r: rand.New(rand.NewPCG(1, 2))}

	want := Span{Lon: cfg.MinSpan * cfg.PointSpanMultiplier, Lat: cfg.MinSpan * cfg.PointSpanMultiplier}
	for i := 0; i < 100; i++ {
		vp, err := SampleObscuredViewport(env, p, cfg, r)
		if err != nil {
			t.Fatalf("SampleObscuredViewport() error = %v", err)
		}
		if vp.Center != p {
			t.Fatalf("center = %+v, want %+v", vp.Center, p)
		}
		if vp.Span != want {
			t.Fatalf("span = %+v, want %+v", vp.Span, want)
		}
	}
	if r.draws != 0 {
		t.Errorf("point-like envelope drew %d random numbers, want 0", r.draws)
	}
}

func TestSampleObscuredViewportBounds(t *testing.T) {
	cfg := DefaultSamplerConfig()
	envelopes := map[string]BoundingEnvelope{
		"Moscow": {Lower: GeoPoint{Lon: 36.803, Lat: 55.142}, Upper: GeoPoint{Lon: 37.967, Lat: 56.021}},
		"small":  {Lower: GeoPoint{Lon: 30.30, Lat: 59.93}, Upper: GeoPoint{Lon: 30.31, Lat: 59.935}},
		"huge":   {Lower: GeoPoint{Lon: 100, Lat: 50}, Upper: GeoPoint{Lon: 140, Lat: 70}},
		"flat":   {Lower: GeoPoint{Lon: 10, Lat: 20}, Upper: GeoPoint{Lon: 10.5, Lat: 20}},
	}
	const eps = 1e-12

	for name, env := range envelopes {
		t.Run(name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(42, 7))
			anchors := env.Anchors()
			point := anchors[0]
			usedAnchors := make(map[int]bool)

			for i := 0; i < 10000; i++ {
				vp, err := SampleObscuredViewport(env, point, cfg, r)
				if err != nil {
					t.Fatalf("SampleObscuredViewport() error = %v", err)
				}
				if vp.Span.Lon < cfg.MinSpan || vp.Span.Lon > cfg.MaxSpan ||
					vp.Span.Lat < cfg.MinSpan || vp.Span.Lat > cfg.MaxSpan {
					t.Fatalf("draw %d: span %+v outside [%v, %v]", i, vp.Span, cfg.MinSpan, cfg.MaxSpan)
				}

				off := cfg.MaxOffset(vp.Span)
				near := -1
				for j, a := range anchors {
					if math.Abs(vp.Center.Lon-a.Lon) <= off.Lon+eps && math.Abs(vp.Center.Lat-a.Lat) <= off.Lat+eps {
						near = j
						break
					}
				}
				if near < 0 {
					t.Fatalf("draw %d: center %+v is not within %+v of any anchor", i, vp.Center, off)
				}
				usedAnchors[near] = true
			}

			if name != "flat" && len(usedAnchors) != len(anchors) {
				t.Errorf("only %d of %d anchors were used", len(usedAnchors), len(anchors))
			}
		})
	}
}

func TestSampleObscuredViewportDeterministicWithSeed(t *testing.T) {
	env := BoundingEnvelope{Lower: GeoPoint{Lon: 36.803, Lat: 55.142}, Upper: GeoPoint{Lon: 37.967, Lat: 56.021}}
	cfg := DefaultSamplerConfig()

	a, err := SampleObscuredViewport(env, env.Lower, cfg, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := SampleObscuredViewport(env, env.Lower, cfg, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same seed produced %+v and %+v", a, b)
	}
}

func TestSampleObscuredViewportNilRand(t *testing.T) {
	env := BoundingEnvelope{Lower: GeoPoint{Lon: 0, Lat: 0}, Upper: GeoPoint{Lon: 1, Lat: 1}}
	if _, err := SampleObscuredViewport(env, GeoPoint{}, DefaultSamplerConfig(), nil); err != nil {
		t.Errorf("SampleObscuredViewport() with nil rand error = %v", err)
	}
}

func TestObscuredViewportFromGeoObjectMalformed(t *testing.T) {
	obj := GeoObject{Pos: "1 2", LowerCorner: "x y", UpperCorner: "3 4"}
	_, err := ObscuredViewportFromGeoObject(obj, DefaultSamplerConfig(), nil)
	if !errors.Is(err, ErrMalformedGeoObject) {
		t.Errorf("error = %v, want ErrMalformedGeoObject", err)
	}
}

func TestSamplerConfigValidate(t *testing.T) {
	if err := DefaultSamplerConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	bad := DefaultSamplerConfig()
	bad.MinZoom, bad.MaxZoom = 0.5, 0.1
	bad.MaxSpan = 0.001
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted inverted ranges")
	}
}

// overlapRand counts calls that run while another call is in progress.
type overlapRand struct {
	busy     atomic.Bool
	overlaps atomic.Int32
}

func (o *overlapRand) enter() {
	if !o.busy.CompareAndSwap(false, true) {
		o.overlaps.Add(1)
		return
	}
	time.Sleep(50 * time.Microsecond)
	o.busy.Store(false)
}

func (o *overlapRand) Float64() float64 { o.enter(); return 0.5 }
func (o *overlapRand) IntN(n int) int   { o.enter(); return 0 }

func TestLockedRand(t *testing.T) {
	src := &overlapRand{}
	r := LockedRand(src)
	if LockedRand(r) != r {
		t.Error("LockedRand wrapped an already locked source")
	}
	if _, ok := LockedRand(GlobalRand()).(globalRand); !ok {
		t.Error("LockedRand wrapped the global source")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Float64()
				r.IntN(8)
			}
		}()
	}
	wg.Wait()
	if n := src.overlaps.Load(); n != 0 {
		t.Errorf("%d concurrent calls reached the source", n)
	}
}
