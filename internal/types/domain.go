package types

import "time"

// NoAlertInterventionID is the reserved intervention meaning "no threshold
// breached". The interventions table must always contain a row with this ID,
// and observation rows reference it when no rule matched.
const NoAlertInterventionID = "no-alert"

// Location is a monitored building: a unique code, the coordinates used for
// forecast lookups, and the owners who receive alert emails. Locations are
// created by setup tooling and never mutated by the monitor itself.
type Location struct {
	BuildingCode string   `json:"building_code"`
	OwnerEmails  []string `json:"owner_emails"`
	Longitude    float64  `json:"longitude"`
	Latitude     float64  `json:"latitude"`
}

// AlertRule ties a threshold test on one weather metric to an intervention.
// Rules for a building are evaluated in definition order; the first rule whose
// test passes selects the intervention for an observation.
type AlertRule struct {
	BuildingCode   string     `json:"building_code"`
	Metric         MetricType `json:"alert_type"`
	Threshold      float64    `json:"value"`
	Operator       Operator   `json:"operator"`
	InterventionID string     `json:"intervention_id"`
}

// Intervention is a named, described recommended action associated with a
// triggered alert threshold. Pure lookup data.
type Intervention struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ForecastSample is one point of the upstream forecast series: the forecast
// valid time plus the two metrics the rules compare against.
type ForecastSample struct {
	Timestamp     time.Time `json:"timestamp"`
	WindSpeed     float64   `json:"windspeed"`
	Precipitation float64   `json:"precipitation"`
}

// Observation is one appended results row: the sample values for a building
// together with the intervention the comparison engine matched and its derived
// severity. Observations are the system's audit log; they are never updated or
// deleted once written.
type Observation struct {
	BuildingCode   string    `json:"building_code"`
	Timestamp      time.Time `json:"timestamp"`
	WindSpeed      float64   `json:"windspeed_val"`
	Precipitation  float64   `json:"precipitation_val"`
	InterventionID string    `json:"intervention_id"`
	Severity       Severity  `json:"severity"`
}

// Triggered reports whether this observation carries a real intervention
// rather than the no-alert sentinel.
func (o Observation) Triggered() bool {
	return o.InterventionID != "" && o.InterventionID != NoAlertInterventionID
}

// MetricValue returns the observation's value for the given metric.
func (o Observation) MetricValue(m MetricType) float64 {
	if m == MetricPrecipitation {
		return o.Precipitation
	}
	return o.WindSpeed
}
