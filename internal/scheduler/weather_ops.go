// Package scheduler drives the two periodic jobs: the weather check cycle
// and the hourly alert pass. The runner owns the tickers; the ops files hold
// the work each tick performs.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"weatherguard/internal/engine"
	"weatherguard/internal/external"
	"weatherguard/internal/observability"
	"weatherguard/internal/types"
)

// RuleSource supplies the locations and rules a check cycle needs.
type RuleSource interface {
	ListLocations() ([]types.Location, error)
	RulesForBuilding(buildingCode string) ([]types.AlertRule, error)
}

// ObservationSink persists evaluated results.
type ObservationSink interface {
	AppendObservations(obs []types.Observation) error
}

// WeatherCheck runs one fetch-evaluate-store cycle across all locations.
type WeatherCheck struct {
	source      RuleSource
	sink        ObservationSink
	forecasts   external.ForecastProvider
	parallelism int
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewWeatherCheck builds a WeatherCheck. Parallelism below 1 is clamped to 1.
func NewWeatherCheck(
	source RuleSource,
	sink ObservationSink,
	forecasts external.ForecastProvider,
	parallelism int,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *WeatherCheck {
	if parallelism < 1 {
		parallelism = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherCheck{
		source:      source,
		sink:        sink,
		forecasts:   forecasts,
		parallelism: parallelism,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run executes one cycle. Locations are processed concurrently up to the
// configured parallelism; a failure at one location is logged and counted
// but never aborts the others. Run only errors when the location list itself
// cannot be read.
func (w *WeatherCheck) Run(ctx context.Context) error {
	locations, err := w.source.ListLocations()
	if err != nil {
		return err
	}

	stop := observeDuration(w.metrics.CheckCycleDuration)
	defer stop()

	var failures atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.parallelism)
	for _, loc := range locations {
		loc := loc
		g.Go(func() error {
			if err := w.checkLocation(gctx, loc); err != nil {
				failures.Add(1)
				w.metrics.CheckErrors.WithLabelValues(loc.BuildingCode).Inc()
				w.logger.Error("weather check failed for location",
					slog.String("building_code", loc.BuildingCode),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	g.Wait()

	w.metrics.CheckCycles.Inc()
	w.logger.Info("weather check cycle complete",
		slog.Int("locations", len(locations)),
		slog.Int("failures", int(failures.Load())))
	return nil
}

// checkLocation fetches the forecast for one location, evaluates it against
// the location's rules, and appends the results.
func (w *WeatherCheck) checkLocation(ctx context.Context, loc types.Location) error {
	rules, err := w.source.RulesForBuilding(loc.BuildingCode)
	if err != nil {
		return err
	}

	fetchStop := observeDuration(w.metrics.ForecastDuration)
	samples, err := w.forecasts.Forecast(ctx, loc.Latitude, loc.Longitude)
	fetchStop()
	if err != nil {
		return err
	}

	obs := engine.BuildObservations(loc.BuildingCode, rules, samples)
	if err := w.sink.AppendObservations(obs); err != nil {
		return err
	}

	triggered := 0
	for _, o := range obs {
		if o.Triggered() {
			triggered++
		}
	}
	w.metrics.ObservationsWrote.Add(float64(len(obs)))
	w.metrics.AlertsTriggered.Add(float64(triggered))

	w.logger.Info("location evaluated",
		slog.String("building_code", loc.BuildingCode),
		slog.Int("samples", len(samples)),
		slog.Int("triggered", triggered))
	return nil
}

func observeDuration(h prometheus.Histogram) func() {
	t := prometheus.NewTimer(h)
	return func() { t.ObserveDuration() }
}
