package ymaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NERVsystems/geoviewport/pkg/geo"
	"github.com/NERVsystems/geoviewport/pkg/testutil"
	"github.com/NERVsystems/geoviewport/pkg/version"
)

const redSquareJSON = `{
  "response": {
    "GeoObjectCollection": {
      "featureMember": [
        {
          "GeoObject": {
            "metaDataProperty": {
              "GeocoderMetaData": {"kind": "street", "text": "Россия, Москва, Красная площадь", "precision": "street"}
            },
            "name": "Красная площадь",
            "description": "Москва, Россия",
            "boundedBy": {
              "Envelope": {"lowerCorner": "37.609835 55.751814", "upperCorner": "37.625435 55.759814"}
            },
            "Point": {"pos": "37.617635 55.755814"}
          }
        }
      ]
    }
  }
}`

const emptyGeocodeJSON = `{"response":{"GeoObjectCollection":{"featureMember":[]}}}`

// newTestClient points every service at a single test server. Requests are
// routed by path: /geocode, /search, /static.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ep := func(path, key string) Endpoint {
		return Endpoint{URL: srv.URL + path, APIKey: key, RPS: 1000, Burst: 100}
	}
	opts = append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)
	c := NewClient(Config{
		Geocoder:      ep("/geocode", "geo-key"),
		Search:        ep("/search", "search-key"),
		StaticMaps:    ep("/static", "maps-key"),
		Timeout:       5 * time.Second,
		CacheTTL:      time.Minute,
		CacheMaxItems: 10,
	}, opts...)
	return c, srv
}

func TestGeocode(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query()
		if r.URL.Path != "/geocode" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if q.Get("apikey") != "geo-key" || q.Get("format") != "json" || q.Get("geocode") != "Красная площадь" {
			t.Errorf("unexpected query %v", q)
		}
		if r.Header.Get("User-Agent") != version.UserAgent() {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(redSquareJSON))
	})

	ctx := context.Background()
	top, err := c.GeocodeOne(ctx, GeocodeRequest{Query: "Красная площадь"})
	if err != nil {
		t.Fatalf("GeocodeOne() error = %v", err)
	}
	if top.Name != "Красная площадь" || top.Kind != KindStreet {
		t.Errorf("toponym = %+v", top)
	}
	p, err := top.Point()
	if err != nil || p != (geo.GeoPoint{Lon: 37.617635, Lat: 55.755814}) {
		t.Errorf("Point() = %+v, %v", p, err)
	}
	vp, err := top.Viewport(c.Viewport())
	if err != nil {
		t.Fatalf("Viewport() error = %v", err)
	}
	if vp.SPN() != "0.018720,0.009600" {
		t.Errorf("SPN() = %s", vp.SPN())
	}

	// Second lookup is served from the cache.
	if _, err := c.GeocodeOne(ctx, GeocodeRequest{Query: "Красная площадь"}); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestGeocodeCacheReturnsCopies(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(redSquareJSON))
	})
	ctx := context.Background()
	req := GeocodeRequest{Query: "Красная площадь"}

	first, err := c.Geocode(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	first[0].Name = "changed by caller"

	second, err := c.Geocode(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Name != "Красная площадь" {
		t.Errorf("cached name = %q after caller modified the first result", second[0].Name)
	}
	second[0].Name = "changed again"

	third, _ := c.Geocode(ctx, req)
	if third[0].Name != "Красная площадь" {
		t.Errorf("cached name = %q after caller modified a cache hit", third[0].Name)
	}
}

func TestGeocodeNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyGeocodeJSON))
	})
	_, err := c.GeocodeOne(context.Background(), GeocodeRequest{Query: "nowhere"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGeocodeEmptyQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for empty query")
	})
	if _, err := c.Geocode(context.Background(), GeocodeRequest{Query: "  "}); err == nil {
		t.Error("Geocode() with empty query succeeded")
	}
}

func TestGeocodeAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"statusCode":403,"error":"Forbidden","message":"Invalid api key"}`))
	})
	_, err := c.Geocode(context.Background(), GeocodeRequest{Query: "Москва"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "Invalid api key" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if apiErr.Recoverable {
		t.Error("403 should not be recoverable")
	}
	if apiErr.Guidance != GuidanceInvalidKey {
		t.Errorf("Guidance = %q", apiErr.Guidance)
	}
}

func TestGeocodeMalformedJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": [`))
	})
	_, err := c.Geocode(context.Background(), GeocodeRequest{Query: "Москва"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Guidance != GuidanceDataError {
		t.Errorf("error = %v, want data APIError", err)
	}
}

func TestReverseGeocode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("geocode") != "37.6173,55.7558" {
			t.Errorf("geocode = %q", q.Get("geocode"))
		}
		if q.Get("kind") != KindDistrict || q.Get("results") != "1" {
			t.Errorf("unexpected query %v", q)
		}
		w.Write([]byte(strings.ReplaceAll(redSquareJSON, "Красная площадь", "Тверской район")))
	})
	top, err := c.ReverseGeocode(context.Background(), geo.GeoPoint{Lon: 37.6173, Lat: 55.7558}, KindDistrict)
	if err != nil {
		t.Fatalf("ReverseGeocode() error = %v", err)
	}
	if top.Name != "Тверской район" {
		t.Errorf("Name = %q", top.Name)
	}
}

func TestAPIErrorGuidance(t *testing.T) {
	tests := []struct {
		status      int
		guidance    string
		recoverable bool
	}{
		{http.StatusTooManyRequests, GuidanceRateLimit, true},
		{http.StatusUnauthorized, GuidanceInvalidKey, false},
		{http.StatusBadRequest, "The request was invalid. Check your parameters and try again.", false},
		{http.StatusTeapot, GuidanceGeneral, true},
	}
	for _, tt := range tests {
		err := NewAPIError(ServiceSearch, tt.status, "boom", "")
		if err.Guidance != tt.guidance || err.Recoverable != tt.recoverable {
			t.Errorf("NewAPIError(%d) = %+v", tt.status, err)
		}
		if !strings.Contains(err.Error(), "search API error") {
			t.Errorf("Error() = %q", err.Error())
		}
	}
}

func TestRateLimiterUnknownService(t *testing.T) {
	rl := NewRateLimiter(map[string]Endpoint{ServiceGeocoder: {RPS: 1, Burst: 1}})
	if err := rl.Wait(context.Background(), ServiceGeocoder); err != nil {
		t.Errorf("Wait(geocoder) error = %v", err)
	}
	if err := rl.Wait(context.Background(), "bogus"); err == nil {
		t.Error("Wait(bogus) succeeded")
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	rl := NewRateLimiter(map[string]Endpoint{ServiceSearch: {RPS: 0.001, Burst: 1}})
	ctx := context.Background()
	if err := rl.Wait(ctx, ServiceSearch); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx, ServiceSearch); err == nil {
		t.Error("second Wait() did not fail with an exhausted bucket")
	}
}
