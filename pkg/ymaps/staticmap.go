package ymaps

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/NERVsystems/geoviewport/pkg/geo"
)

// LayerMap is the plain street map layer.
const LayerMap = "map"

// Marker is a styled point drawn on the static map.
type Marker struct {
	Point geo.GeoPoint
	Style string
}

// String formats the marker as "lon,lat,style".
func (m Marker) String() string {
	if m.Style == "" {
		return m.Point.String()
	}
	return m.Point.String() + "," + m.Style
}

// MapRequest describes a static map image. Without a viewport the service
// fits the map to the markers.
type MapRequest struct {
	Viewport *geo.ViewportSpec
	Markers  []Marker
	Layer    string
	Width    int
	Height   int
}

func (r MapRequest) params() (url.Values, error) {
	if r.Viewport == nil && len(r.Markers) == 0 {
		return nil, fmt.Errorf("static map: need a viewport or at least one marker")
	}
	layer := r.Layer
	if layer == "" {
		layer = LayerMap
	}
	params := url.Values{"l": {layer}}
	if r.Viewport != nil {
		params.Set("ll", r.Viewport.LL())
		params.Set("spn", r.Viewport.SPN())
	}
	if len(r.Markers) > 0 {
		pts := make([]string, len(r.Markers))
		for i, m := range r.Markers {
			pts[i] = m.String()
		}
		params.Set("pt", strings.Join(pts, "~"))
	}
	if r.Width > 0 && r.Height > 0 {
		params.Set("size", fmt.Sprintf("%d,%d", r.Width, r.Height))
	}
	return params, nil
}

// MapURL returns the full request URL for the map, API key included.
func (c *Client) MapURL(req MapRequest) (string, error) {
	params, err := req.params()
	if err != nil {
		return "", err
	}
	return c.requestURL(ServiceStaticMaps, params)
}

// RedactedMapURL is MapURL without the API key, safe to log or display.
func (c *Client) RedactedMapURL(req MapRequest) (string, error) {
	raw, err := c.MapURL(req)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Del("apikey")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchMap downloads the map image bytes.
func (c *Client) FetchMap(ctx context.Context, req MapRequest) ([]byte, error) {
	params, err := req.params()
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, ServiceStaticMaps, params)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &APIError{Service: ServiceStaticMaps, Message: "empty image", Guidance: GuidanceDataError}
	}
	return body, nil
}
