package store

import (
	"weatherguard/internal/types"
)

// ListInterventions returns every intervention in file order.
func (s *Store) ListInterventions() ([]types.Intervention, error) {
	rows, err := s.readRows(interventionsFile, 3)
	if err != nil {
		return nil, err
	}

	interventions := make([]types.Intervention, 0, len(rows))
	for _, row := range rows {
		interventions = append(interventions, types.Intervention{
			ID:          row[0],
			Title:       row[1],
			Description: row[2],
		})
	}
	return interventions, nil
}

// GetIntervention returns the intervention with the given id, or nil if it
// does not exist. A missing intervention is not an error here; callers that
// require presence use MustGetIntervention.
func (s *Store) GetIntervention(id string) (*types.Intervention, error) {
	interventions, err := s.ListInterventions()
	if err != nil {
		return nil, err
	}
	for i := range interventions {
		if interventions[i].ID == id {
			return &interventions[i], nil
		}
	}
	return nil, nil
}

// MustGetIntervention returns the intervention with the given id, or a
// not-found error.
func (s *Store) MustGetIntervention(id string) (types.Intervention, error) {
	iv, err := s.GetIntervention(id)
	if err != nil {
		return types.Intervention{}, err
	}
	if iv == nil {
		return types.Intervention{}, types.NewAppError(types.ErrCodeNotFoundIntervention,
			"intervention not found: "+id, nil)
	}
	return *iv, nil
}

// UpsertIntervention inserts or replaces the row keyed by ID.
func (s *Store) UpsertIntervention(iv types.Intervention) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(interventionsFile, 3)
	if err != nil {
		return err
	}

	newRow := []string{iv.ID, iv.Title, iv.Description}
	replaced := false
	for i, row := range rows {
		if row[0] == iv.ID {
			rows[i] = newRow
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, newRow)
	}
	return s.rewrite(interventionsFile, interventionHeader, rows)
}
