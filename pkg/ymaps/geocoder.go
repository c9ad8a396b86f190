package ymaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/NERVsystems/geoviewport/pkg/geo"
)

// Toponym kinds accepted by the geocoder's kind parameter.
const (
	KindHouse      = "house"
	KindStreet     = "street"
	KindMetro      = "metro"
	KindDistrict   = "district"
	KindLocality   = "locality"
	KindArea       = "area"
	KindProvince   = "province"
	KindCountry    = "country"
	KindHydro      = "hydro"
	KindRailway    = "railway"
	KindRoute      = "route"
	KindVegetation = "vegetation"
	KindAirport    = "airport"
	KindOther      = "other"
)

// GeocodeRequest parameterizes a forward or reverse geocoding query.
type GeocodeRequest struct {
	// Query is a free-text address, or "lon,lat" for reverse geocoding.
	Query string
	// Kind restricts the toponym type (optional).
	Kind string
	// Results limits the number of returned toponyms (0 = service default).
	Results int
}

// Toponym is one geocoded feature.
type Toponym struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Address     string        `json:"address,omitempty"`
	Kind        string        `json:"kind,omitempty"`
	Precision   string        `json:"precision,omitempty"`
	Raw         geo.GeoObject `json:"raw"`
}

// Point parses the toponym's position.
func (t Toponym) Point() (geo.GeoPoint, error) { return t.Raw.Point() }

// Envelope parses the toponym's bounding envelope.
func (t Toponym) Envelope() (geo.BoundingEnvelope, error) { return t.Raw.Envelope() }

// Viewport computes the map viewport that frames the toponym.
func (t Toponym) Viewport(cfg geo.ViewportConfig) (geo.ViewportSpec, error) {
	return geo.ViewportFromGeoObject(t.Raw, cfg)
}

// geocoderResponse mirrors the parts of the geocoder JSON we read.
type geocoderResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					Name             string `json:"name"`
					Description      string `json:"description"`
					MetaDataProperty struct {
						GeocoderMetaData struct {
							Kind      string `json:"kind"`
							Text      string `json:"text"`
							Precision string `json:"precision"`
						} `json:"GeocoderMetaData"`
					} `json:"metaDataProperty"`
					BoundedBy struct {
						Envelope struct {
							LowerCorner string `json:"lowerCorner"`
							UpperCorner string `json:"upperCorner"`
						} `json:"Envelope"`
					} `json:"boundedBy"`
					Point struct {
						Pos string `json:"pos"`
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

func (r geocoderResponse) toponyms() []Toponym {
	members := r.Response.GeoObjectCollection.FeatureMember
	out := make([]Toponym, 0, len(members))
	for _, m := range members {
		g := m.GeoObject
		out = append(out, Toponym{
			Name:        g.Name,
			Description: g.Description,
			Address:     g.MetaDataProperty.GeocoderMetaData.Text,
			Kind:        g.MetaDataProperty.GeocoderMetaData.Kind,
			Precision:   g.MetaDataProperty.GeocoderMetaData.Precision,
			Raw: geo.GeoObject{
				Pos:         g.Point.Pos,
				LowerCorner: g.BoundedBy.Envelope.LowerCorner,
				UpperCorner: g.BoundedBy.Envelope.UpperCorner,
			},
		})
	}
	return out
}

func (r GeocodeRequest) cacheKey() string {
	return fmt.Sprintf("%s|%s|%d", strings.TrimSpace(r.Query), r.Kind, r.Results)
}

// Geocode resolves a query into toponyms, most relevant first. An empty
// result set yields ErrNotFound.
func (c *Client) Geocode(ctx context.Context, req GeocodeRequest) ([]Toponym, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("geocode: empty query")
	}

	key := req.cacheKey()
	if cached, ok := c.geocodes.Get(key); ok {
		c.logger.Debug("geocode cache hit", "query", query)
		return slices.Clone(cached), nil
	}

	params := url.Values{
		"geocode": {query},
		"format":  {"json"},
	}
	if req.Kind != "" {
		params.Set("kind", req.Kind)
	}
	if req.Results > 0 {
		params.Set("results", strconv.Itoa(req.Results))
	}
	if c.cfg.Lang != "" {
		params.Set("lang", c.cfg.Lang)
	}

	body, err := c.get(ctx, ServiceGeocoder, params)
	if err != nil {
		return nil, err
	}

	var resp geocoderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{
			Service:  ServiceGeocoder,
			Message:  fmt.Sprintf("decode response: %v", err),
			Guidance: GuidanceDataError,
		}
	}

	toponyms := resp.toponyms()
	if len(toponyms) == 0 {
		return nil, fmt.Errorf("geocode %q: %w", query, ErrNotFound)
	}

	// The cache keeps its own copy; callers may modify what they get.
	c.geocodes.Set(key, slices.Clone(toponyms))
	return toponyms, nil
}

// GeocodeOne returns the most relevant toponym for the query.
func (c *Client) GeocodeOne(ctx context.Context, req GeocodeRequest) (Toponym, error) {
	toponyms, err := c.Geocode(ctx, req)
	if err != nil {
		return Toponym{}, err
	}
	return toponyms[0], nil
}

// ReverseGeocode finds the toponym of the given kind at point. An empty kind
// returns the most specific object.
func (c *Client) ReverseGeocode(ctx context.Context, point geo.GeoPoint, kind string) (Toponym, error) {
	return c.GeocodeOne(ctx, GeocodeRequest{
		Query:   strconv.FormatFloat(point.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(point.Lat, 'f', -1, 64),
		Kind:    kind,
		Results: 1,
	})
}
