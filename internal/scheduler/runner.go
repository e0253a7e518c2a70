package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"weatherguard/internal/observability"
)

// Job is a unit of periodic work.
type Job interface {
	Run(ctx context.Context) error
}

// Runner owns the two periodic loops: the weather check on its configured
// interval and the alert pass every hour. Both jobs also fire once at
// startup so a fresh deployment produces results immediately.
type Runner struct {
	check         Job
	alerts        Job
	checkInterval time.Duration
	clock         clockwork.Clock
	metrics       *observability.Metrics
	logger        *slog.Logger
	ready         atomic.Bool
}

// NewRunner builds a Runner. A nil clock falls back to the real clock.
func NewRunner(
	check Job,
	alerts Job,
	checkInterval time.Duration,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		check:         check,
		alerts:        alerts,
		checkInterval: checkInterval,
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// CheckReadiness reports whether the startup cycle has completed. The ops
// server's readiness probe consumes this.
func (r *Runner) CheckReadiness() bool {
	return r.ready.Load()
}

// Run blocks until ctx is canceled, driving both loops. Job errors are
// logged and the loop continues; one bad cycle must not stop the daemon.
func (r *Runner) Run(ctx context.Context) error {
	r.metrics.MonitorRunning.Set(1)
	defer r.metrics.MonitorRunning.Set(0)

	r.logger.Info("scheduler starting",
		slog.Duration("check_interval", r.checkInterval))

	r.runJob(ctx, "weather_check", r.check)
	r.runJob(ctx, "alert_pass", r.alerts)
	r.ready.Store(true)

	checkTicker := r.clock.NewTicker(r.checkInterval)
	defer checkTicker.Stop()
	alertTicker := r.clock.NewTicker(time.Hour)
	defer alertTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler stopping")
			return ctx.Err()
		case <-checkTicker.Chan():
			r.runJob(ctx, "weather_check", r.check)
		case <-alertTicker.Chan():
			r.runJob(ctx, "alert_pass", r.alerts)
		}
	}
}

func (r *Runner) runJob(ctx context.Context, name string, job Job) {
	if ctx.Err() != nil {
		return
	}
	if err := job.Run(ctx); err != nil {
		r.logger.Error("scheduled job failed",
			slog.String("job", name),
			slog.String("error", err.Error()))
	}
}
