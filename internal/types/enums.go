package types

import "fmt"

// MetricType identifies which forecast metric an alert rule tests.
type MetricType string

const (
	MetricWindspeed     MetricType = "Windspeed"
	MetricPrecipitation MetricType = "Precipitation"
)

// ParseMetricType validates a raw metric name from a rule row.
func ParseMetricType(raw string) (MetricType, error) {
	switch MetricType(raw) {
	case MetricWindspeed, MetricPrecipitation:
		return MetricType(raw), nil
	}
	return "", fmt.Errorf("unknown metric type %q", raw)
}

// Operator defines the comparison applied between a sample value and a rule
// threshold.
type Operator string

const (
	OpGreaterThan   Operator = ">"
	OpLessThan      Operator = "<"
	OpGreaterThanEq Operator = ">="
	OpLessThanEq    Operator = "<="
	OpEqual         Operator = "=="
)

// ParseOperator validates a raw operator from a rule row. The single-character
// spelling "=" is accepted as an alias for "==".
func ParseOperator(raw string) (Operator, error) {
	if raw == "=" {
		return OpEqual, nil
	}
	switch Operator(raw) {
	case OpGreaterThan, OpLessThan, OpGreaterThanEq, OpLessThanEq, OpEqual:
		return Operator(raw), nil
	}
	return "", fmt.Errorf("unknown operator %q", raw)
}

// Evaluate applies the operator to an actual value and a threshold.
// Equality is an exact float64 comparison: near-equal values will not satisfy
// "==". This is a known limitation of equality rules on measured data.
func (op Operator) Evaluate(actual, threshold float64) bool {
	switch op {
	case OpGreaterThan:
		return actual > threshold
	case OpLessThan:
		return actual < threshold
	case OpGreaterThanEq:
		return actual >= threshold
	case OpLessThanEq:
		return actual <= threshold
	case OpEqual:
		return actual == threshold
	}
	return false
}

// Severity is the derived label attached to a matched observation, indicating
// how far the sample value sits from the rule threshold.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityWatch    Severity = "watch"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SiteStatus is the dashboard-level condition of a building derived from the
// dates of its alerting observations.
type SiteStatus string

const (
	SiteStatusGreen  SiteStatus = "green"  // no alerts
	SiteStatusRed    SiteStatus = "red"    // alert dated today
	SiteStatusYellow SiteStatus = "yellow" // alert forecast for D+1..D+3
	SiteStatusPurple SiteStatus = "purple" // alert yesterday, clear since
)

// Label returns the short human-readable name for a site status.
func (s SiteStatus) Label() string {
	switch s {
	case SiteStatusRed:
		return "Alert Today"
	case SiteStatusYellow:
		return "Future Alert"
	case SiteStatusPurple:
		return "Past Alert"
	case SiteStatusGreen:
		return "Normal"
	}
	return "Unknown"
}

// Description returns the dashboard description for a site status.
func (s SiteStatus) Description() string {
	switch s {
	case SiteStatusRed:
		return "Weather alert is active for today. Immediate attention may be required."
	case SiteStatusYellow:
		return "Weather alert is forecasted for the next few days. Monitor conditions."
	case SiteStatusPurple:
		return "Weather alert was active yesterday but is no longer active today."
	case SiteStatusGreen:
		return "No weather alerts. All conditions normal."
	}
	return "Status unknown."
}
