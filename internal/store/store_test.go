package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherguard/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestOpenSeedsNoAlertIntervention(t *testing.T) {
	s := newTestStore(t)

	iv, err := s.MustGetIntervention(types.NoAlertInterventionID)
	require.NoError(t, err)
	assert.Equal(t, "No Alert", iv.Title)
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.UpsertLocation(types.Location{
		BuildingCode: "BLD001",
		OwnerEmails:  []string{"owner@example.com"},
		Longitude:    -73.5673,
		Latitude:     45.5017,
	}))

	// Reopening the same directory must not truncate existing tables.
	s2, err := Open(dir)
	require.NoError(t, err)
	locations, err := s2.ListLocations()
	require.NoError(t, err)
	assert.Len(t, locations, 1)
}

func TestLocationUpsertAndDelete(t *testing.T) {
	s := newTestStore(t)

	loc := types.Location{
		BuildingCode: "BLD001",
		OwnerEmails:  []string{"a@example.com", "b@example.com"},
		Longitude:    -73.5673,
		Latitude:     45.5017,
	}
	require.NoError(t, s.UpsertLocation(loc))

	got, err := s.GetLocation("BLD001")
	require.NoError(t, err)
	assert.Equal(t, loc, got)

	// Upsert with the same key replaces rather than duplicates.
	loc.OwnerEmails = []string{"c@example.com"}
	require.NoError(t, s.UpsertLocation(loc))
	locations, err := s.ListLocations()
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, []string{"c@example.com"}, locations[0].OwnerEmails)

	require.NoError(t, s.DeleteLocation("BLD001"))
	_, err = s.GetLocation("BLD001")
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundLocation, appErr.Code)

	// Deleting again is a no-op.
	require.NoError(t, s.DeleteLocation("BLD001"))
}

func TestRulesPreserveFileOrder(t *testing.T) {
	s := newTestStore(t)

	first := types.AlertRule{
		BuildingCode:   "BLD001",
		Metric:         types.MetricWindspeed,
		Threshold:      15,
		Operator:       types.OpGreaterThan,
		InterventionID: "high_wind_alert",
	}
	second := types.AlertRule{
		BuildingCode:   "BLD001",
		Metric:         types.MetricWindspeed,
		Threshold:      5,
		Operator:       types.OpGreaterThan,
		InterventionID: "breezy_advisory",
	}
	other := types.AlertRule{
		BuildingCode:   "BLD002",
		Metric:         types.MetricPrecipitation,
		Threshold:      10,
		Operator:       types.OpGreaterThanEq,
		InterventionID: "heavy_rain_alert",
	}

	require.NoError(t, s.AddRule(first))
	require.NoError(t, s.AddRule(other))
	require.NoError(t, s.AddRule(second))

	rules, err := s.RulesForBuilding("BLD001")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, first, rules[0])
	assert.Equal(t, second, rules[1])
}

func TestObservationRoundTrip(t *testing.T) {
	s := newTestStore(t)

	ts := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	obs := []types.Observation{
		{
			BuildingCode:   "BLD001",
			Timestamp:      ts,
			WindSpeed:      17.3,
			Precipitation:  0,
			InterventionID: "high_wind_alert",
			Severity:       types.SeverityWatch,
		},
		{
			BuildingCode:   "BLD001",
			Timestamp:      ts.Add(3 * time.Hour),
			WindSpeed:      4.1,
			Precipitation:  0.6,
			InterventionID: types.NoAlertInterventionID,
			Severity:       types.SeverityNone,
		},
	}
	require.NoError(t, s.AppendObservations(obs))

	got, err := s.ListObservations()
	require.NoError(t, err)
	assert.Equal(t, obs, got)
}

func TestLatestForBuildingReturnsLastBatch(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	cycle := func(code string, day int) []types.Observation {
		return []types.Observation{
			{
				BuildingCode:   code,
				Timestamp:      base.AddDate(0, 0, day),
				WindSpeed:      float64(day),
				InterventionID: types.NoAlertInterventionID,
				Severity:       types.SeverityNone,
			},
			{
				BuildingCode:   code,
				Timestamp:      base.AddDate(0, 0, day).Add(3 * time.Hour),
				WindSpeed:      float64(day) + 0.5,
				InterventionID: types.NoAlertInterventionID,
				Severity:       types.SeverityNone,
			},
		}
	}

	require.NoError(t, s.AppendObservations(cycle("BLD001", 0)))
	require.NoError(t, s.AppendObservations(cycle("BLD002", 0)))
	require.NoError(t, s.AppendObservations(cycle("BLD001", 1)))

	latest, err := s.LatestForBuilding("BLD001")
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 1.0, latest[0].WindSpeed)
	assert.Equal(t, 1.5, latest[1].WindSpeed)

	none, err := s.LatestForBuilding("BLD999")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestOwnerEmailsSingleCell(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertLocation(types.Location{
		BuildingCode: "BLD001",
		OwnerEmails:  []string{"a@example.com", " b@example.com "},
		Longitude:    1,
		Latitude:     2,
	}))

	got, err := s.GetLocation("BLD001")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, got.OwnerEmails)
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	s := newTestStore(t)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			obs := []types.Observation{{
				BuildingCode:   fmt.Sprintf("BLD%03d", n),
				Timestamp:      time.Date(2026, 3, 14, n, 0, 0, 0, time.UTC),
				WindSpeed:      float64(n),
				InterventionID: types.NoAlertInterventionID,
				Severity:       types.SeverityNone,
			}}
			assert.NoError(t, s.AppendObservations(obs))
		}(i)
	}
	wg.Wait()

	got, err := s.ListObservations()
	require.NoError(t, err)
	assert.Len(t, got, writers)
}
