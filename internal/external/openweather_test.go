package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherguard/internal/types"
)

const forecastFixture = `{
	"list": [
		{
			"dt_txt": "2026-03-14 12:00:00",
			"wind": {"speed": 7.2},
			"rain": {"3h": 1.5},
			"snow": {"3h": 0.5}
		},
		{
			"dt_txt": "2026-03-14 15:00:00",
			"wind": {"speed": 16.8}
		},
		{
			"dt_txt": "not a timestamp",
			"wind": {"speed": 3.0}
		}
	]
}`

func newForecastServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenWeatherClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewOpenWeatherClient(srv.Client(), OpenWeatherClientConfig{
		APIKey:  "test-key",
		Units:   "metric",
		BaseURL: srv.URL,
	})
	return srv, client
}

func TestForecastParsesSamples(t *testing.T) {
	var gotQuery map[string]string
	_, client := newForecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"lat":   r.URL.Query().Get("lat"),
			"lon":   r.URL.Query().Get("lon"),
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
			"cnt":   r.URL.Query().Get("cnt"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(forecastFixture))
	})

	samples, err := client.Forecast(context.Background(), 45.5017, -73.5673)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"lat":   "45.5017",
		"lon":   "-73.5673",
		"appid": "test-key",
		"units": "metric",
		"cnt":   "24",
	}, gotQuery)

	// The malformed third entry is skipped.
	require.Len(t, samples, 2)
	assert.Equal(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), samples[0].Timestamp)
	assert.Equal(t, 7.2, samples[0].WindSpeed)
	assert.Equal(t, 2.0, samples[0].Precipitation) // rain + snow

	// Missing rain and snow objects read as zero precipitation.
	assert.Equal(t, 16.8, samples[1].WindSpeed)
	assert.Equal(t, 0.0, samples[1].Precipitation)
}

func TestForecastUnauthorizedMapsBadStatus(t *testing.T) {
	_, client := newForecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Forecast(context.Background(), 0, 0)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeFetchBadStatus, appErr.Code)
}

func TestForecastMalformedBodyMapsParseError(t *testing.T) {
	_, client := newForecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	_, err := client.Forecast(context.Background(), 0, 0)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeParsePayload, appErr.Code)
}

func TestForecastAllEntriesUnusableMapsParseError(t *testing.T) {
	// A non-empty list where no entry carries a parseable timestamp is as
	// useless as an empty one and must not read as a clean fetch.
	_, client := newForecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list": [
			{"dt_txt": "yesterday", "wind": {"speed": 3.0}},
			{"dt_txt": "", "wind": {"speed": 4.0}}
		]}`))
	})

	_, err := client.Forecast(context.Background(), 0, 0)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeParsePayload, appErr.Code)
}

func TestForecastEmptyListMapsParseError(t *testing.T) {
	_, client := newForecastServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod": "200"}`))
	})

	_, err := client.Forecast(context.Background(), 0, 0)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeParsePayload, appErr.Code)
}
