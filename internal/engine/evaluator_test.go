package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherguard/internal/types"
)

func windRule(threshold float64, op types.Operator, interventionID string) types.AlertRule {
	return types.AlertRule{
		BuildingCode:   "BLD001",
		Metric:         types.MetricWindspeed,
		Threshold:      threshold,
		Operator:       op,
		InterventionID: interventionID,
	}
}

func TestEvaluateFirstTriggeredRuleWins(t *testing.T) {
	rules := []types.AlertRule{
		windRule(10, types.OpGreaterThan, "severe_wind"),
		windRule(5, types.OpGreaterThan, "breezy"),
	}

	id, rule := Evaluate(rules, types.ForecastSample{WindSpeed: 12})
	require.NotNil(t, rule)
	assert.Equal(t, "severe_wind", id)

	// Only the second rule matches at lower wind.
	id, _ = Evaluate(rules, types.ForecastSample{WindSpeed: 7})
	assert.Equal(t, "breezy", id)
}

func TestEvaluateNoMatchReturnsNoAlert(t *testing.T) {
	rules := []types.AlertRule{
		windRule(15, types.OpGreaterThan, "severe_wind"),
	}

	id, rule := Evaluate(rules, types.ForecastSample{WindSpeed: 3})
	assert.Equal(t, types.NoAlertInterventionID, id)
	assert.Nil(t, rule)
}

func TestEvaluateEmptyRulesReturnsNoAlert(t *testing.T) {
	id, rule := Evaluate(nil, types.ForecastSample{WindSpeed: 100})
	assert.Equal(t, types.NoAlertInterventionID, id)
	assert.Nil(t, rule)
}

func TestEvaluateSkipsNoAlertRules(t *testing.T) {
	rules := []types.AlertRule{
		windRule(0, types.OpGreaterThanEq, types.NoAlertInterventionID),
		windRule(10, types.OpGreaterThan, "severe_wind"),
	}

	id, _ := Evaluate(rules, types.ForecastSample{WindSpeed: 12})
	assert.Equal(t, "severe_wind", id)
}

func TestEvaluatePrecipitationMetric(t *testing.T) {
	rules := []types.AlertRule{
		{
			BuildingCode:   "BLD001",
			Metric:         types.MetricPrecipitation,
			Threshold:      10,
			Operator:       types.OpGreaterThanEq,
			InterventionID: "heavy_rain",
		},
	}

	id, _ := Evaluate(rules, types.ForecastSample{WindSpeed: 50, Precipitation: 12})
	assert.Equal(t, "heavy_rain", id)

	id, _ = Evaluate(rules, types.ForecastSample{WindSpeed: 50, Precipitation: 2})
	assert.Equal(t, types.NoAlertInterventionID, id)
}

func TestComputeSeverityBuckets(t *testing.T) {
	rule := windRule(10, types.OpGreaterThan, "severe_wind")

	tests := []struct {
		name  string
		wind  float64
		wants types.Severity
	}{
		{"just over threshold", 11, types.SeverityWatch},
		{"half again over", 15, types.SeverityWarning},
		{"double the threshold", 20, types.SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSeverity(&rule, types.ForecastSample{WindSpeed: tt.wind})
			assert.Equal(t, tt.wants, got)
		})
	}

	assert.Equal(t, types.SeverityNone, ComputeSeverity(nil, types.ForecastSample{}))
}

func TestComputeSeveritySmallThresholdUsesUnitFloor(t *testing.T) {
	// A near-zero threshold must not blow up the ratio; the denominator
	// floors at 1.
	rule := types.AlertRule{
		Metric:         types.MetricPrecipitation,
		Threshold:      0.1,
		Operator:       types.OpGreaterThan,
		InterventionID: "drizzle",
	}
	got := ComputeSeverity(&rule, types.ForecastSample{Precipitation: 0.2})
	assert.Equal(t, types.SeverityWatch, got)
}

func TestBuildObservationsCoversEverySample(t *testing.T) {
	rules := []types.AlertRule{
		windRule(15, types.OpGreaterThan, "severe_wind"),
	}
	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	samples := []types.ForecastSample{
		{Timestamp: base, WindSpeed: 20, Precipitation: 0},
		{Timestamp: base.Add(3 * time.Hour), WindSpeed: 4, Precipitation: 1.2},
	}

	obs := BuildObservations("BLD001", rules, samples)
	require.Len(t, obs, 2)

	assert.Equal(t, "severe_wind", obs[0].InterventionID)
	assert.Equal(t, types.SeverityWatch, obs[0].Severity)

	// Untriggered samples still carry their measured values.
	assert.Equal(t, types.NoAlertInterventionID, obs[1].InterventionID)
	assert.Equal(t, types.SeverityNone, obs[1].Severity)
	assert.Equal(t, 4.0, obs[1].WindSpeed)
	assert.Equal(t, 1.2, obs[1].Precipitation)
}
