// Package main seeds the data directory with a working example: one
// monitored location in Montreal, two interventions, and the wind and
// precipitation rules that trigger them. Running it against an existing
// data directory is safe; rows are upserted, and rules are only added when
// the table has none.
package main

import (
	"flag"
	"fmt"
	"os"

	"weatherguard/internal/observability"
	"weatherguard/internal/store"
	"weatherguard/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dataDir := flag.String("data", defaultDataDir(), "data directory to seed")
	flag.Parse()

	logger := observability.NewLogger("info", "text")

	st, err := store.Open(*dataDir)
	if err != nil {
		return fmt.Errorf("opening data store: %w", err)
	}

	interventions := []types.Intervention{
		{
			ID:          "high_wind_alert",
			Title:       "High Wind Alert",
			Description: "Wind speeds are forecast to exceed safe thresholds. Secure loose equipment and postpone crane or lift work.",
		},
		{
			ID:          "heavy_rain_alert",
			Title:       "Heavy Rain Alert",
			Description: "Heavy precipitation is forecast. Check drainage and cover exposed materials.",
		},
	}
	for _, iv := range interventions {
		if err := st.UpsertIntervention(iv); err != nil {
			return fmt.Errorf("seeding intervention %s: %w", iv.ID, err)
		}
	}

	location := types.Location{
		BuildingCode: "BLD001",
		OwnerEmails:  []string{"owner1@example.com", "owner2@example.com"},
		Longitude:    -73.5673,
		Latitude:     45.5017,
	}
	if err := st.UpsertLocation(location); err != nil {
		return fmt.Errorf("seeding location: %w", err)
	}

	existing, err := st.ListRules()
	if err != nil {
		return fmt.Errorf("reading rules: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("rules already present, skipping rule seed")
		return nil
	}

	rules := []types.AlertRule{
		{
			BuildingCode:   "BLD001",
			Metric:         types.MetricWindspeed,
			Threshold:      15,
			Operator:       types.OpGreaterThan,
			InterventionID: "high_wind_alert",
		},
		{
			BuildingCode:   "BLD001",
			Metric:         types.MetricPrecipitation,
			Threshold:      10,
			Operator:       types.OpGreaterThan,
			InterventionID: "heavy_rain_alert",
		},
	}
	for _, rule := range rules {
		if err := st.AddRule(rule); err != nil {
			return fmt.Errorf("seeding rule: %w", err)
		}
	}

	logger.Info("seed complete",
		"data_dir", *dataDir,
		"locations", 1,
		"interventions", len(interventions),
		"rules", len(rules))
	return nil
}

// defaultDataDir mirrors the daemon's DATA_DIR setting so both tools target
// the same directory without extra flags.
func defaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "data"
}
