// Package store implements the flat-file tabular persistence layer.
//
// Four CSV files live under the data directory: locations, weather_alerts,
// interventions, and results. Each carries a header row and is UTF-8 encoded.
// The results table is append-only and is the system's audit log; the other
// three are small configuration tables rewritten in place on edit.
//
// A single mutex serializes writers so concurrent appends cannot interleave
// rows. Appends are flushed and fsynced before returning success.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"weatherguard/internal/types"
)

// Table file names under the data directory.
const (
	locationsFile     = "locations.csv"
	rulesFile         = "weather_alerts.csv"
	interventionsFile = "interventions.csv"
	resultsFile       = "results.csv"
)

var (
	locationHeader     = []string{"building_code", "owner_emails", "longitude", "latitude"}
	ruleHeader         = []string{"building_code", "alert_type", "value", "operator", "intervention_id"}
	interventionHeader = []string{"id", "title", "description"}
	resultHeader       = []string{"building_code", "timestamp", "windspeed_val", "precipitation_val", "intervention_id", "severity"}
)

// Store provides typed read and write access to the four tables.
type Store struct {
	dir string
	mu  sync.Mutex
}

// Open prepares a Store rooted at dir. It creates the directory and any
// missing table files with their header rows, and guarantees the "no-alert"
// sentinel intervention exists.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("creating data directory %s", dir), err)
	}

	s := &Store{dir: dir}

	tables := []struct {
		name   string
		header []string
	}{
		{locationsFile, locationHeader},
		{rulesFile, ruleHeader},
		{interventionsFile, interventionHeader},
		{resultsFile, resultHeader},
	}
	for _, t := range tables {
		if err := s.ensureTable(t.name, t.header); err != nil {
			return nil, err
		}
	}

	if err := s.ensureNoAlertSentinel(); err != nil {
		return nil, err
	}

	return s, nil
}

// Dir returns the data directory this store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// ensureTable creates the table file with its header row if it is missing
// or empty.
func (s *Store) ensureTable(name string, header []string) error {
	path := s.path(name)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("initializing table %s", name), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("writing header for %s", name), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("flushing header for %s", name), err)
	}
	return f.Sync()
}

// ensureNoAlertSentinel guarantees the reserved no-alert intervention row.
func (s *Store) ensureNoAlertSentinel() error {
	existing, err := s.GetIntervention(types.NoAlertInterventionID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.UpsertIntervention(types.Intervention{
		ID:          types.NoAlertInterventionID,
		Title:       "No Alert",
		Description: "No threshold breached.",
	})
}

// readRows opens a table and returns its data rows (header stripped).
// csv.Reader is configured with FieldsPerRecord=-1 so a short or padded row
// surfaces as a per-row parse issue rather than aborting the whole read.
func (s *Store) readRows(name string, wantFields int) ([][]string, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeStoreRead,
			fmt.Sprintf("opening table %s", name), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeStoreRead,
			fmt.Sprintf("parsing table %s", name), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < wantFields {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// rewrite atomically replaces a table's contents: header plus the given rows.
// It writes to a temp file in the same directory, fsyncs, and renames over
// the original so readers never observe a half-written table.
//
// Callers must hold s.mu.
func (s *Store) rewrite(name string, header []string, rows [][]string) error {
	path := s.path(name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("creating temp file for %s", name), err)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("writing header for %s", name), err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return types.NewAppError(types.ErrCodeStoreWrite,
				fmt.Sprintf("writing row to %s", name), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("flushing %s", name), err)
	}
	if err := tmp.Sync(); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("syncing %s", name), err)
	}
	if err := tmp.Close(); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("closing temp file for %s", name), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("replacing %s", name), err)
	}
	return nil
}

// appendRows appends rows to a table and fsyncs before returning.
// Callers must hold s.mu.
func (s *Store) appendRows(name string, rows [][]string) error {
	f, err := os.OpenFile(s.path(name), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("opening table %s for append", name), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return types.NewAppError(types.ErrCodeStoreWrite,
				fmt.Sprintf("appending row to %s", name), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("flushing append to %s", name), err)
	}
	if err := f.Sync(); err != nil {
		return types.NewAppError(types.ErrCodeStoreWrite,
			fmt.Sprintf("syncing %s", name), err)
	}
	return nil
}
