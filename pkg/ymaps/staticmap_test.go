package ymaps

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/NERVsystems/geoviewport/pkg/geo"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func TestFetchMapWithViewport(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/static" {
			t.Errorf("path = %s", r.URL.Path)
		}
		want := url.Values{
			"l":      {"map"},
			"ll":     {"37.617635,55.755814"},
			"spn":    {"0.018720,0.009600"},
			"pt":     {"37.617635,55.755814,pm2rdl"},
			"size":   {"600,450"},
			"apikey": {"maps-key"},
		}
		for k, v := range want {
			if q.Get(k) != v[0] {
				t.Errorf("%s = %q, want %q", k, q.Get(k), v[0])
			}
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	})

	center := geo.GeoPoint{Lon: 37.617635, Lat: 55.755814}
	vp := geo.ViewportSpec{Center: center, Span: geo.Span{Lon: 0.01872, Lat: 0.0096}}
	img, err := c.FetchMap(context.Background(), MapRequest{
		Viewport: &vp,
		Markers:  []Marker{{Point: center, Style: MarkerCodeRedLarge}},
		Width:    600,
		Height:   450,
	})
	if err != nil {
		t.Fatalf("FetchMap() error = %v", err)
	}
	if !bytes.Equal(img, pngHeader) {
		t.Errorf("image bytes = %q", img)
	}
}

func TestMapURLMarkersOnly(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	raw, err := c.MapURL(MapRequest{Markers: []Marker{
		{Point: geo.GeoPoint{Lon: 37.6, Lat: 55.7}, Style: MarkerCodeBlue},
		{Point: geo.GeoPoint{Lon: 37.5, Lat: 55.8}, Style: MarkerCodeRed},
	}})
	if err != nil {
		t.Fatalf("MapURL() error = %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if got := q.Get("pt"); got != "37.600000,55.700000,pm2blm~37.500000,55.800000,pm2rdm" {
		t.Errorf("pt = %q", got)
	}
	if q.Has("ll") || q.Has("spn") || q.Has("size") {
		t.Errorf("unexpected viewport params in %v", q)
	}

	redacted, err := c.RedactedMapURL(MapRequest{Markers: []Marker{{Point: geo.GeoPoint{}}}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(redacted, "maps-key") {
		t.Errorf("redacted URL leaks key: %s", redacted)
	}
}

func TestMapRequestNeedsContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for empty map")
	})
	if _, err := c.FetchMap(context.Background(), MapRequest{}); err == nil {
		t.Error("FetchMap() with no viewport or markers succeeded")
	}
}

func TestFetchMapEmptyBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := c.FetchMap(context.Background(), MapRequest{Markers: []Marker{{}}}); err == nil {
		t.Error("FetchMap() with empty body succeeded")
	}
}
