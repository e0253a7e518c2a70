package store

import (
	"fmt"

	"weatherguard/internal/types"
)

// CheckReferences verifies cross-table integrity: every rule must reference
// an existing location and intervention, and the no-alert sentinel must be
// present. It returns one message per violation; an empty slice means the
// tables are consistent. The daemon runs this at startup and logs violations
// without refusing to start, since a dangling rule only disables itself.
func (s *Store) CheckReferences() ([]string, error) {
	locations, err := s.ListLocations()
	if err != nil {
		return nil, err
	}
	interventions, err := s.ListInterventions()
	if err != nil {
		return nil, err
	}
	rules, err := s.ListRules()
	if err != nil {
		return nil, err
	}

	knownLocations := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		knownLocations[loc.BuildingCode] = struct{}{}
	}
	knownInterventions := make(map[string]struct{}, len(interventions))
	for _, iv := range interventions {
		knownInterventions[iv.ID] = struct{}{}
	}

	var issues []string
	if _, ok := knownInterventions[types.NoAlertInterventionID]; !ok {
		issues = append(issues, "interventions table is missing the no-alert sentinel")
	}
	for i, rule := range rules {
		if _, ok := knownLocations[rule.BuildingCode]; !ok {
			issues = append(issues, fmt.Sprintf(
				"rule %d references unknown location %q", i, rule.BuildingCode))
		}
		if _, ok := knownInterventions[rule.InterventionID]; !ok {
			issues = append(issues, fmt.Sprintf(
				"rule %d references unknown intervention %q", i, rule.InterventionID))
		}
	}
	return issues, nil
}
