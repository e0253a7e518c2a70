package store

import (
	"strconv"

	"weatherguard/internal/types"
)

// ListRules returns every alert rule in file order. Evaluation relies on
// this order: the first triggered rule wins.
func (s *Store) ListRules() ([]types.AlertRule, error) {
	rows, err := s.readRows(rulesFile, 5)
	if err != nil {
		return nil, err
	}

	rules := make([]types.AlertRule, 0, len(rows))
	for _, row := range rows {
		rule, ok := parseRuleRow(row)
		if !ok {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// RulesForBuilding returns the rules for one building, preserving file order.
func (s *Store) RulesForBuilding(buildingCode string) ([]types.AlertRule, error) {
	all, err := s.ListRules()
	if err != nil {
		return nil, err
	}

	var rules []types.AlertRule
	for _, rule := range all {
		if rule.BuildingCode == buildingCode {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// AddRule appends an alert rule to the table.
func (s *Store) AddRule(rule types.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendRows(rulesFile, [][]string{{
		rule.BuildingCode,
		string(rule.Metric),
		strconv.FormatFloat(rule.Threshold, 'f', -1, 64),
		string(rule.Operator),
		rule.InterventionID,
	}})
}

func parseRuleRow(row []string) (types.AlertRule, bool) {
	metric, err := types.ParseMetricType(row[1])
	if err != nil {
		return types.AlertRule{}, false
	}
	threshold, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return types.AlertRule{}, false
	}
	op, err := types.ParseOperator(row[3])
	if err != nil {
		return types.AlertRule{}, false
	}

	return types.AlertRule{
		BuildingCode:   row[0],
		Metric:         metric,
		Threshold:      threshold,
		Operator:       op,
		InterventionID: row[4],
	}, true
}
