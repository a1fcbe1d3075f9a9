// Package geocoder resolves street addresses to coordinates through the
// ArcGIS World Geocoding findAddressCandidates endpoint.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://geocode.arcgis.com/arcgis/rest/services/World/GeocodeServer"

// ErrNoResults is returned when the provider finds no candidate for an address.
var ErrNoResults = errors.New("geocoder: no results for address")

// Location is a resolved address.
type Location struct {
	Lng              float64
	Lat              float64
	FormattedAddress string
	City             string
	State            string
	Zipcode          string
	Country          string
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New builds a client against baseURL, falling back to the public ArcGIS
// endpoint when baseURL is empty.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type candidateResponse struct {
	Candidates []struct {
		Address  string `json:"address"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
		Attributes struct {
			City    string `json:"City"`
			Region  string `json:"Region"`
			Postal  string `json:"Postal"`
			Country string `json:"Country"`
		} `json:"attributes"`
	} `json:"candidates"`
}

// Geocode resolves a single-line address to its best candidate.
func (c *Client) Geocode(ctx context.Context, address string) (*Location, error) {
	q := url.Values{}
	q.Set("f", "json")
	q.Set("singleLine", address)
	q.Set("maxLocations", "1")
	q.Set("outFields", "City,Region,Postal,Country")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/findAddressCandidates?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder: unexpected status %d", resp.StatusCode)
	}

	var body candidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Candidates) == 0 {
		return nil, ErrNoResults
	}
	best := body.Candidates[0]
	return &Location{
		Lng:              best.Location.X,
		Lat:              best.Location.Y,
		FormattedAddress: best.Address,
		City:             best.Attributes.City,
		State:            best.Attributes.Region,
		Zipcode:          best.Attributes.Postal,
		Country:          best.Attributes.Country,
	}, nil
}
