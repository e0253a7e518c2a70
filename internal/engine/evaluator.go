// Package engine evaluates forecast samples against per-building alert rules
// and derives site status from stored results. It is pure computation with no
// I/O, which keeps it trivially testable.
package engine

import (
	"math"

	"weatherguard/internal/types"
)

// Severity ratio cutoffs. The ratio measures how far past the threshold the
// observed value landed, relative to the threshold magnitude.
const (
	watchCutoff   = 0.25
	warningCutoff = 0.75
)

// Evaluate checks a sample against the building's rules in order and returns
// the intervention id of the first triggered rule, plus that rule. When no
// rule triggers it returns the no-alert sentinel and a nil rule. Rule order
// is therefore priority order.
func Evaluate(rules []types.AlertRule, sample types.ForecastSample) (string, *types.AlertRule) {
	for i := range rules {
		rule := &rules[i]
		if rule.InterventionID == types.NoAlertInterventionID {
			continue
		}
		actual := sampleValue(sample, rule.Metric)
		if rule.Operator.Evaluate(actual, rule.Threshold) {
			return rule.InterventionID, rule
		}
	}
	return types.NoAlertInterventionID, nil
}

// ComputeSeverity labels how far an observed value exceeded its rule's
// threshold. A nil rule means no breach and maps to SeverityNone.
func ComputeSeverity(rule *types.AlertRule, sample types.ForecastSample) types.Severity {
	if rule == nil {
		return types.SeverityNone
	}
	actual := sampleValue(sample, rule.Metric)
	ratio := math.Abs(actual-rule.Threshold) / math.Max(math.Abs(rule.Threshold), 1)
	switch {
	case ratio < watchCutoff:
		return types.SeverityWatch
	case ratio < warningCutoff:
		return types.SeverityWarning
	default:
		return types.SeverityCritical
	}
}

// BuildObservations evaluates every sample and produces one result row per
// sample, triggered or not. Untriggered samples still record their measured
// values under the no-alert sentinel so the results table is a complete
// record of what was observed.
func BuildObservations(buildingCode string, rules []types.AlertRule, samples []types.ForecastSample) []types.Observation {
	observations := make([]types.Observation, 0, len(samples))
	for _, sample := range samples {
		interventionID, rule := Evaluate(rules, sample)
		observations = append(observations, types.Observation{
			BuildingCode:   buildingCode,
			Timestamp:      sample.Timestamp,
			WindSpeed:      sample.WindSpeed,
			Precipitation:  sample.Precipitation,
			InterventionID: interventionID,
			Severity:       ComputeSeverity(rule, sample),
		})
	}
	return observations
}

func sampleValue(sample types.ForecastSample, metric types.MetricType) float64 {
	switch metric {
	case types.MetricPrecipitation:
		return sample.Precipitation
	default:
		return sample.WindSpeed
	}
}
