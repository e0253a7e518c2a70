package store

import (
	"strconv"
	"time"

	"weatherguard/internal/types"
)

// AppendObservations appends evaluated observations to the results table.
// The write is flushed and fsynced before returning, so a row reported as
// stored survives a crash.
func (s *Store) AppendObservations(obs []types.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]string, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, []string{
			o.BuildingCode,
			o.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(o.WindSpeed, 'f', -1, 64),
			strconv.FormatFloat(o.Precipitation, 'f', -1, 64),
			o.InterventionID,
			string(o.Severity),
		})
	}
	return s.appendRows(resultsFile, rows)
}

// ListObservations returns every result row in file order, which is also
// chronological append order.
func (s *Store) ListObservations() ([]types.Observation, error) {
	rows, err := s.readRows(resultsFile, 6)
	if err != nil {
		return nil, err
	}

	observations := make([]types.Observation, 0, len(rows))
	for _, row := range rows {
		o, ok := parseObservationRow(row)
		if !ok {
			continue
		}
		observations = append(observations, o)
	}
	return observations, nil
}

// ObservationsForBuilding returns the result rows for one building.
func (s *Store) ObservationsForBuilding(buildingCode string) ([]types.Observation, error) {
	all, err := s.ListObservations()
	if err != nil {
		return nil, err
	}

	var observations []types.Observation
	for _, o := range all {
		if o.BuildingCode == buildingCode {
			observations = append(observations, o)
		}
	}
	return observations, nil
}

// LatestForBuilding returns the most recently appended batch of observations
// for a building: the rows written by the last check cycle that covered it.
// Within the file, a cycle's rows are contiguous, so the batch is the final
// run of rows for that building. Returns nil if none exist.
func (s *Store) LatestForBuilding(buildingCode string) ([]types.Observation, error) {
	all, err := s.ListObservations()
	if err != nil {
		return nil, err
	}

	end := -1
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].BuildingCode == buildingCode {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, nil
	}

	start := end
	for start > 0 && all[start-1].BuildingCode == buildingCode {
		start--
	}
	batch := make([]types.Observation, end-start+1)
	copy(batch, all[start:end+1])
	return batch, nil
}

func parseObservationRow(row []string) (types.Observation, bool) {
	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return types.Observation{}, false
	}
	wind, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return types.Observation{}, false
	}
	precip, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return types.Observation{}, false
	}

	return types.Observation{
		BuildingCode:   row[0],
		Timestamp:      ts,
		WindSpeed:      wind,
		Precipitation:  precip,
		InterventionID: row[4],
		Severity:       types.Severity(row[5]),
	}, true
}
