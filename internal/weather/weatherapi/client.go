// Package weatherapi implements weather.Provider against weatherapi.com.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezy/breezy/internal/provider/resilience"
	"github.com/breezy/breezy/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "weatherapi"

	// DefaultBaseURL is the weatherapi.com v1 base URL.
	DefaultBaseURL = "https://api.weatherapi.com/v1"

	// DefaultForecastDays is used when a caller asks for zero days.
	DefaultForecastDays = 5

	// codeNoLocation is the provider's "No matching location found" code.
	codeNoLocation = 1006

	maxErrorBody = 64 << 10
)

// Fallback messages when the provider body carries no error message.
const (
	msgCurrentFailed  = "Failed to fetch weather data"
	msgForecastFailed = "Failed to fetch forecast data"
)

// ProviderError is a non-2xx response from the provider. Error returns the
// human-readable message suitable for display.
type ProviderError struct {
	Operation  string
	StatusCode int
	Code       int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// UserMessage implements weather.UserError.
func (e *ProviderError) UserMessage() string {
	return e.Message
}

// Is maps the provider's location code onto weather.ErrLocationNotFound and
// server-side failures onto weather.ErrProviderUnavailable.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case weather.ErrLocationNotFound:
		return e.Code == codeNoLocation
	case weather.ErrProviderUnavailable:
		return e.StatusCode >= 500
	}
	return false
}

// ClientConfig holds configuration for the weatherapi.com client.
type ClientConfig struct {
	// APIKey is the weatherapi.com key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger

	// AirQuality asks for the air_quality block on current conditions.
	AirQuality bool
}

// Client is a weatherapi.com API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
	airQuality bool
}

// NewClient creates a new weatherapi.com client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		airQuality: cfg.AirQuality,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrent fetches current conditions for a location query.
func (c *Client) GetCurrent(ctx context.Context, query string) (*weather.Snapshot, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", query)
	params.Set("aqi", "no")
	if c.airQuality {
		params.Set("aqi", "yes")
	}

	var snap weather.Snapshot
	if err := c.get(ctx, "current", "/current.json", params, msgCurrentFailed, &snap); err != nil {
		return nil, err
	}
	snap.FetchedAt = time.Now()
	return &snap, nil
}

// GetForecast fetches a forecast of the given number of days.
func (c *Client) GetForecast(ctx context.Context, query string, days int) (*weather.Forecast, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", query)
	params.Set("days", strconv.Itoa(days))
	params.Set("aqi", "no")
	params.Set("alerts", "no")

	var resp forecastResponse
	if err := c.get(ctx, "forecast", "/forecast.json", params, msgForecastFailed, &resp); err != nil {
		return nil, err
	}

	return &weather.Forecast{
		Location:  resp.Location,
		Current:   resp.Current,
		Days:      resp.Forecast.ForecastDay,
		FetchedAt: time.Now(),
	}, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, fallback string, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := decodeError(resp, op, fallback)
		c.logger.Warn().
			Str("operation", op).
			Int("status", perr.StatusCode).
			Int("provider_code", perr.Code).
			Str("message", perr.Message).
			Msg("weather provider returned an error")
		return perr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response, op, fallback string) *ProviderError {
	perr := &ProviderError{
		Operation:  op,
		StatusCode: resp.StatusCode,
		Message:    fallback,
	}

	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err != nil {
		return perr
	}
	if body.Error.Message != "" {
		perr.Message = body.Error.Message
	}
	perr.Code = body.Error.Code
	return perr
}

// IsProviderError reports whether err carries a provider error and returns it.
func IsProviderError(err error) (*ProviderError, bool) {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
