package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weatherguard/internal/types"
)

// openWeatherAPIBase is the default OpenWeatherMap API base URL.
// Overridable in tests via OpenWeatherClientConfig.BaseURL.
const openWeatherAPIBase = "https://api.openweathermap.org"

// forecastSampleCount requests 24 three-hour steps, covering three days.
const forecastSampleCount = 24

// forecastTimeLayout is the format of the dt_txt field in forecast entries.
const forecastTimeLayout = "2006-01-02 15:04:05"

// OpenWeatherClientConfig holds the configuration for an OpenWeatherClient.
type OpenWeatherClientConfig struct {
	APIKey  string
	Units   string // metric, imperial, or standard
	BaseURL string // override for testing
	Logger  *slog.Logger
}

// OpenWeatherClient implements ForecastProvider against the OpenWeatherMap
// 5-day/3-hour forecast endpoint.
type OpenWeatherClient struct {
	base    *BaseClient
	apiKey  string
	units   string
	baseURL string
	logger  *slog.Logger
}

// NewOpenWeatherClient builds an OpenWeatherClient. The httpClient carries
// the request timeout.
func NewOpenWeatherClient(httpClient *http.Client, cfg OpenWeatherClientConfig) *OpenWeatherClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openWeatherAPIBase
	}
	units := cfg.Units
	if units == "" {
		units = "metric"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenWeatherClient{
		base:    NewBaseClient(httpClient, "openweather", DefaultRetryPolicy()),
		apiKey:  cfg.APIKey,
		units:   units,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// forecastResponse mirrors the subset of the OpenWeatherMap payload the
// monitor consumes.
type forecastResponse struct {
	List []forecastEntry `json:"list"`
}

type forecastEntry struct {
	DtTxt string `json:"dt_txt"`
	Wind  struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	// Rain and Snow arrive as {"3h": <mm>} objects and are absent when dry.
	Rain map[string]float64 `json:"rain"`
	Snow map[string]float64 `json:"snow"`
}

// Forecast fetches the 3-hourly forecast for the coordinate and flattens it
// into domain samples. Precipitation is the sum of rain and snow volume over
// each 3-hour window. Entries without a parseable dt_txt are skipped.
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64) ([]types.ForecastSample, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	q.Set("cnt", strconv.Itoa(forecastSampleCount))

	reqURL := c.baseURL + "/data/2.5/forecast?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected,
			"building forecast request", err)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, types.NewAppError(types.ErrCodeFetchUnavailable,
			"forecast request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewAppError(types.ErrCodeFetchBadStatus,
			fmt.Sprintf("forecast endpoint returned %d", resp.StatusCode), nil)
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, types.NewAppError(types.ErrCodeParsePayload,
			"decoding forecast payload", err)
	}
	if len(payload.List) == 0 {
		return nil, types.NewAppError(types.ErrCodeParsePayload,
			"forecast payload contains no entries", nil)
	}

	samples := make([]types.ForecastSample, 0, len(payload.List))
	for _, entry := range payload.List {
		ts, err := time.Parse(forecastTimeLayout, entry.DtTxt)
		if err != nil {
			c.logger.Warn("skipping forecast entry with bad timestamp",
				slog.String("dt_txt", entry.DtTxt))
			continue
		}
		samples = append(samples, types.ForecastSample{
			Timestamp:     ts,
			WindSpeed:     entry.Wind.Speed,
			Precipitation: entry.Rain["3h"] + entry.Snow["3h"],
		})
	}
	if len(samples) == 0 {
		return nil, types.NewAppError(types.ErrCodeParsePayload,
			"forecast payload contains no usable entries", nil)
	}
	return samples, nil
}

var _ ForecastProvider = (*OpenWeatherClient)(nil)
