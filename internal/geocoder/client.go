package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"foodcart/internal/metrics"
	"foodcart/internal/model"

	"github.com/rs/zerolog"
)

// ErrProvider wraps every failure of the external geocoding provider.
var ErrProvider = errors.New("geocoding provider error")

// Client turns a free-text address into coordinates.
type Client interface {
	// Geocode returns the most relevant match for address. Failures wrap ErrProvider.
	Geocode(ctx context.Context, address string) (model.Coordinates, error)
}

// Config holds provider connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// httpClient implements Client against a Yandex-compatible geocoder API.
type httpClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

// NewClient creates a geocoding client. It never retries.
func NewClient(cfg Config, logger zerolog.Logger) Client {
	return &httpClient{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger.With().Str("component", "geocoder").Logger(),
	}
}

type geocodeResponse struct {
	Response *struct {
		GeoObjectCollection *struct {
			FeatureMember *[]featureMember `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

type featureMember struct {
	GeoObject struct {
		Point struct {
			Pos string `json:"pos"`
		} `json:"Point"`
	} `json:"GeoObject"`
}

// Geocode queries the provider and parses the first feature's position.
func (c *httpClient) Geocode(ctx context.Context, address string) (model.Coordinates, error) {
	coords, err := c.geocode(ctx, address)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(metrics.OutcomeFailure).Inc()
		c.logger.Warn().Err(err).Str("address", address).Msg("geocoding failed")
		return model.Coordinates{}, err
	}

	metrics.GeocodeRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.logger.Debug().
		Str("address", address).
		Float64("lat", coords.Lat).
		Float64("lon", coords.Lon).
		Msg("address geocoded")

	return coords, nil
}

func (c *httpClient) geocode(ctx context.Context, address string) (model.Coordinates, error) {
	params := url.Values{}
	params.Set("geocode", address)
	params.Set("apikey", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: failed to build request: %v", ErrProvider, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: request failed: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Coordinates{}, fmt.Errorf("%w: unexpected status %d", ErrProvider, resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: failed to decode response: %v", ErrProvider, err)
	}

	if body.Response == nil || body.Response.GeoObjectCollection == nil || body.Response.GeoObjectCollection.FeatureMember == nil {
		return model.Coordinates{}, fmt.Errorf("%w: response has no feature list", ErrProvider)
	}

	found := *body.Response.GeoObjectCollection.FeatureMember
	if len(found) == 0 {
		return model.Coordinates{}, fmt.Errorf("%w: no places found", ErrProvider)
	}

	return parsePos(found[0].GeoObject.Point.Pos)
}

// parsePos parses a "longitude latitude" pair.
func parsePos(pos string) (model.Coordinates, error) {
	parts := strings.Fields(pos)
	if len(parts) != 2 {
		return model.Coordinates{}, fmt.Errorf("%w: malformed position %q", ErrProvider, pos)
	}

	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: malformed longitude %q", ErrProvider, parts[0])
	}

	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: malformed latitude %q", ErrProvider, parts[1])
	}

	return model.Coordinates{Lat: lat, Lon: lon}, nil
}
