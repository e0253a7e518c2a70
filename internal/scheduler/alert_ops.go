package scheduler

import (
	"context"
	"log/slog"

	"weatherguard/internal/observability"
)

// AlertSender runs one delivery pass and reports how many emails went out
// and how many deliveries failed.
type AlertSender interface {
	Run(ctx context.Context) (sent, failed int, err error)
}

// AlertPass adapts the notifier to the runner's job shape and records
// delivery metrics.
type AlertPass struct {
	notifier AlertSender
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewAlertPass builds an AlertPass.
func NewAlertPass(notifier AlertSender, metrics *observability.Metrics, logger *slog.Logger) *AlertPass {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertPass{notifier: notifier, metrics: metrics, logger: logger}
}

// Run executes one alert pass. Notifier errors mean the pass could not run
// at all; per-recipient failures are absorbed inside the notifier and
// surface here as the failed count.
func (a *AlertPass) Run(ctx context.Context) error {
	sent, failed, err := a.notifier.Run(ctx)
	if err != nil {
		return err
	}
	a.metrics.EmailsSent.Add(float64(sent))
	a.metrics.EmailsFailed.Add(float64(failed))
	if sent > 0 || failed > 0 {
		a.logger.Info("alert pass complete",
			slog.Int("emails_sent", sent),
			slog.Int("emails_failed", failed))
	}
	return nil
}
