// Package main is the entry point for the weather monitoring daemon.
//
// It loads configuration, opens the flat-file store, wires the forecast
// client, evaluation engine, and email notifier into the scheduler, and runs
// until interrupted. A separate ops listener exposes liveness, readiness,
// and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weatherguard/internal/config"
	"weatherguard/internal/core"
	"weatherguard/internal/external"
	"weatherguard/internal/notify"
	"weatherguard/internal/observability"
	"weatherguard/internal/scheduler"
	"weatherguard/internal/store"
	"weatherguard/internal/types"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	logger.Info("weather monitor starting",
		slog.String("data_dir", cfg.DataDir),
		slog.Duration("check_interval", cfg.Schedule.CheckInterval()),
		slog.String("email_backend", cfg.Email.Backend()))

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening data store: %w", err)
	}
	issues, err := st.CheckReferences()
	if err != nil {
		return fmt.Errorf("checking table integrity: %w", err)
	}
	for _, issue := range issues {
		logger.Warn("table integrity issue", slog.String("issue", issue))
	}

	forecasts := external.NewOpenWeatherClient(
		&http.Client{Timeout: cfg.Weather.Timeout},
		external.OpenWeatherClientConfig{
			APIKey:  cfg.Weather.APIKey.Unmask(),
			Units:   cfg.Weather.Units,
			BaseURL: cfg.Weather.BaseURL,
			Logger:  logger,
		})

	provider, err := emailProvider(cfg, logger)
	if err != nil {
		return err
	}

	notifier := notify.New(st, st, st, provider, notify.Config{
		StartHour: cfg.Schedule.AlertStartHour,
		EndHour:   cfg.Schedule.AlertEndHour,
		Dedupe:    cfg.Schedule.DedupeAlerts,
		Sender: types.SenderIdentity{
			Address: cfg.Email.SenderEmail,
			Name:    cfg.Email.SenderName,
		},
	}, nil, logger)

	check := scheduler.NewWeatherCheck(st, st, forecasts,
		cfg.Schedule.FetchParallelism, metrics, logger)
	alerts := scheduler.NewAlertPass(notifier, metrics, logger)
	runner := scheduler.NewRunner(check, alerts,
		cfg.Schedule.CheckInterval(), nil, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opsSrv := &http.Server{
		Addr:    cfg.Server.OpsAddr,
		Handler: core.NewOpsHandler(runner),
	}
	go func() {
		logger.Info("ops listener starting", slog.String("addr", cfg.Server.OpsAddr))
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops listener failed", slog.String("error", err.Error()))
		}
	}()

	err = runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := opsSrv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("ops listener shutdown failed",
			slog.String("error", shutdownErr.Error()))
	}

	logger.Info("weather monitor stopped")
	return err
}

// emailProvider selects the delivery backend from configuration. With no
// backend configured the monitor still runs; alerts are logged instead of
// delivered.
func emailProvider(cfg *config.Config, logger *slog.Logger) (external.EmailProvider, error) {
	switch cfg.Email.Backend() {
	case "resend":
		return external.NewResendClient(
			&http.Client{Timeout: 10 * time.Second},
			external.ResendClientConfig{
				APIKey: cfg.Email.ResendAPIKey.Unmask(),
				Logger: logger,
			}), nil
	case "smtp":
		return external.NewSMTPClient(external.SMTPClientConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Password: cfg.Email.SenderPassword.Unmask(),
			UseTLS:   cfg.Email.SMTPUseTLS,
		}), nil
	default:
		logger.Warn("no email backend configured, alerts will only be logged")
		return &logOnlyProvider{logger: logger}, nil
	}
}

// logOnlyProvider stands in for a real backend when email is not configured,
// so local runs do not need delivery credentials.
type logOnlyProvider struct {
	logger *slog.Logger
}

func (p *logOnlyProvider) Send(_ context.Context, input types.SendInput) (string, error) {
	p.logger.Info("alert email suppressed, no backend configured",
		slog.String("to", input.To),
		slog.String("subject", input.Subject))
	return "log-only", nil
}
