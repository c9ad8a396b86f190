package ymaps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/NERVsystems/geoviewport/pkg/geo"
)

// SearchTypeBiz restricts organization search to businesses.
const SearchTypeBiz = "biz"

// SearchRequest parameterizes an organization search.
type SearchRequest struct {
	Text    string
	Near    geo.GeoPoint
	Type    string // defaults to SearchTypeBiz
	Results int    // defaults to 10
}

// Organization is one search hit.
type Organization struct {
	Name      string          `json:"name"`
	Address   string          `json:"address,omitempty"`
	HoursText string          `json:"hours,omitempty"`
	Point     geo.GeoPoint    `json:"location"`
	Hours     json.RawMessage `json:"-"`
}

// MarkerStyle classifies the organization by its opening hours.
func (o Organization) MarkerStyle() MarkerStyle {
	return ClassifyHours(o.Hours)
}

type searchFeature struct {
	Geometry struct {
		Coordinates []json.Number `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name            string `json:"name"`
		CompanyMetaData struct {
			Name    string          `json:"name"`
			Address string          `json:"address"`
			Hours   json.RawMessage `json:"Hours"`
		} `json:"CompanyMetaData"`
	} `json:"properties"`
}

func (f searchFeature) organization() (Organization, error) {
	coords := f.Geometry.Coordinates
	if len(coords) < 2 {
		return Organization{}, fmt.Errorf("geometry has %d coordinates", len(coords))
	}
	lon, err := coords[0].Float64()
	if err != nil {
		return Organization{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := coords[1].Float64()
	if err != nil {
		return Organization{}, fmt.Errorf("latitude: %w", err)
	}

	meta := f.Properties.CompanyMetaData
	name := meta.Name
	if name == "" {
		name = f.Properties.Name
	}
	org := Organization{
		Name:    name,
		Address: meta.Address,
		Point:   geo.GeoPoint{Lon: lon, Lat: lat},
	}
	if hasValue(meta.Hours) {
		org.Hours = meta.Hours
		var h struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(meta.Hours, &h) == nil {
			org.HoursText = h.Text
		}
	}
	return org, nil
}

// SearchOrganizations finds organizations matching the text near a point,
// nearest first. Features with unusable coordinates are skipped with a
// warning; if nothing usable remains the result is ErrNotFound.
func (c *Client) SearchOrganizations(ctx context.Context, req SearchRequest) ([]Organization, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("search: empty text")
	}
	if req.Type == "" {
		req.Type = SearchTypeBiz
	}
	if req.Results <= 0 {
		req.Results = 10
	}

	params := url.Values{
		"text":    {text},
		"ll":      {req.Near.String()},
		"type":    {req.Type},
		"results": {strconv.Itoa(req.Results)},
	}
	if c.cfg.Lang != "" {
		params.Set("lang", c.cfg.Lang)
	}

	body, err := c.get(ctx, ServiceSearch, params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &APIError{
			Service:  ServiceSearch,
			Message:  fmt.Sprintf("decode response: %v", err),
			Guidance: GuidanceDataError,
		}
	}

	orgs := make([]Organization, 0, len(resp.Features))
	for i, raw := range resp.Features {
		var f searchFeature
		if err := json.Unmarshal(raw, &f); err != nil {
			c.logger.Warn("skipping malformed organization", "index", i, "error", err)
			continue
		}
		org, err := f.organization()
		if err != nil {
			c.logger.Warn("skipping malformed organization", "index", i, "error", err)
			continue
		}
		orgs = append(orgs, org)
	}

	if len(orgs) == 0 {
		return nil, fmt.Errorf("search %q: %w", text, ErrNotFound)
	}
	return orgs, nil
}

// NearestOrganization returns the single best match near the point.
func (c *Client) NearestOrganization(ctx context.Context, text string, near geo.GeoPoint) (Organization, error) {
	orgs, err := c.SearchOrganizations(ctx, SearchRequest{Text: text, Near: near, Results: 1})
	if err != nil {
		return Organization{}, err
	}
	return orgs[0], nil
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
