package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherguard/internal/observability"
	"weatherguard/internal/types"
)

type fakeSource struct {
	locations []types.Location
	rules     map[string][]types.AlertRule
	listErr   error
}

func (f *fakeSource) ListLocations() ([]types.Location, error) {
	return f.locations, f.listErr
}

func (f *fakeSource) RulesForBuilding(code string) ([]types.AlertRule, error) {
	return f.rules[code], nil
}

type fakeSink struct {
	mu      sync.Mutex
	batches [][]types.Observation
}

func (f *fakeSink) AppendObservations(obs []types.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, obs)
	return nil
}

func (f *fakeSink) codes() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, batch := range f.batches {
		for _, o := range batch {
			out[o.BuildingCode]++
		}
	}
	return out
}

type fakeForecasts struct {
	samples []types.ForecastSample
	failFor map[float64]error // keyed by latitude
}

func (f *fakeForecasts) Forecast(_ context.Context, lat, _ float64) ([]types.ForecastSample, error) {
	if err := f.failFor[lat]; err != nil {
		return nil, err
	}
	return f.samples, nil
}

func twoLocations() []types.Location {
	return []types.Location{
		{BuildingCode: "BLD001", Latitude: 45.5, Longitude: -73.5},
		{BuildingCode: "BLD002", Latitude: 43.6, Longitude: -79.3},
	}
}

func TestWeatherCheckEvaluatesEveryLocation(t *testing.T) {
	source := &fakeSource{
		locations: twoLocations(),
		rules: map[string][]types.AlertRule{
			"BLD001": {{
				BuildingCode:   "BLD001",
				Metric:         types.MetricWindspeed,
				Threshold:      10,
				Operator:       types.OpGreaterThan,
				InterventionID: "severe_wind",
			}},
		},
	}
	sink := &fakeSink{}
	forecasts := &fakeForecasts{samples: []types.ForecastSample{
		{Timestamp: time.Now(), WindSpeed: 12},
		{Timestamp: time.Now().Add(3 * time.Hour), WindSpeed: 4},
	}}

	check := NewWeatherCheck(source, sink, forecasts, 2,
		observability.NewMetricsForTesting(), slog.Default())
	require.NoError(t, check.Run(context.Background()))

	// Two samples stored per location, rules or not.
	assert.Equal(t, map[string]int{"BLD001": 2, "BLD002": 2}, sink.codes())
}

func TestWeatherCheckIsolatesLocationFailures(t *testing.T) {
	source := &fakeSource{locations: twoLocations()}
	sink := &fakeSink{}
	forecasts := &fakeForecasts{
		samples: []types.ForecastSample{{Timestamp: time.Now(), WindSpeed: 1}},
		failFor: map[float64]error{
			45.5: types.NewAppError(types.ErrCodeFetchUnavailable, "upstream down", nil),
		},
	}

	check := NewWeatherCheck(source, sink, forecasts, 2,
		observability.NewMetricsForTesting(), slog.Default())
	require.NoError(t, check.Run(context.Background()))

	// BLD001's fetch failed but BLD002 was still evaluated and stored.
	assert.Equal(t, map[string]int{"BLD002": 1}, sink.codes())
}

func TestWeatherCheckPropagatesListError(t *testing.T) {
	source := &fakeSource{listErr: errors.New("table unreadable")}
	check := NewWeatherCheck(source, &fakeSink{}, &fakeForecasts{}, 1,
		observability.NewMetricsForTesting(), slog.Default())

	assert.Error(t, check.Run(context.Background()))
}
