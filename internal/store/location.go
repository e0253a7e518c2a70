package store

import (
	"strconv"
	"strings"

	"weatherguard/internal/types"
)

// ListLocations returns every monitored location in file order.
func (s *Store) ListLocations() ([]types.Location, error) {
	rows, err := s.readRows(locationsFile, 4)
	if err != nil {
		return nil, err
	}

	locations := make([]types.Location, 0, len(rows))
	for _, row := range rows {
		loc, ok := parseLocationRow(row)
		if !ok {
			continue
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// GetLocation returns the location with the given building code, or a
// not-found error.
func (s *Store) GetLocation(buildingCode string) (types.Location, error) {
	locations, err := s.ListLocations()
	if err != nil {
		return types.Location{}, err
	}
	for _, loc := range locations {
		if loc.BuildingCode == buildingCode {
			return loc, nil
		}
	}
	return types.Location{}, types.NewAppError(types.ErrCodeNotFoundLocation,
		"location not found: "+buildingCode, nil)
}

// UpsertLocation inserts or replaces the row keyed by BuildingCode.
func (s *Store) UpsertLocation(loc types.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(locationsFile, 4)
	if err != nil {
		return err
	}

	newRow := locationRow(loc)
	replaced := false
	for i, row := range rows {
		if row[0] == loc.BuildingCode {
			rows[i] = newRow
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, newRow)
	}
	return s.rewrite(locationsFile, locationHeader, rows)
}

// DeleteLocation removes the row keyed by BuildingCode. Deleting a missing
// location is not an error.
func (s *Store) DeleteLocation(buildingCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows(locationsFile, 4)
	if err != nil {
		return err
	}

	kept := rows[:0]
	for _, row := range rows {
		if row[0] != buildingCode {
			kept = append(kept, row)
		}
	}
	return s.rewrite(locationsFile, locationHeader, kept)
}

// locationRow serializes a location. Owner emails are comma-joined inside a
// single CSV cell.
func locationRow(loc types.Location) []string {
	return []string{
		loc.BuildingCode,
		strings.Join(loc.OwnerEmails, ","),
		strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
	}
}

func parseLocationRow(row []string) (types.Location, bool) {
	lon, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return types.Location{}, false
	}
	lat, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return types.Location{}, false
	}

	var emails []string
	for _, e := range strings.Split(row[1], ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			emails = append(emails, e)
		}
	}

	return types.Location{
		BuildingCode: row[0],
		OwnerEmails:  emails,
		Longitude:    lon,
		Latitude:     lat,
	}, true
}
