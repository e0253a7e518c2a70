// Package config defines the configuration for the weatherguard binaries.
// Configuration is loaded once at process startup and immutable thereafter,
// following 12-Factor principles: everything comes from the environment, with
// an optional .env file for local development.
//
// Any missing required value or invalid format fails the process immediately
// on startup (fail fast); nothing else halts the daemon once running.
package config

import (
	"time"

	"weatherguard/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for credentials to prevent accidental logging.
type SecretString = types.SecretString

// Config is the top-level configuration struct shared by the monitor daemon,
// the dashboard API, and the seed tool. Sub-components receive only the
// subsets they need.
type Config struct {
	DataDir   string `envconfig:"DATA_DIR" default:"data"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`

	Weather  WeatherConfig
	Email    EmailConfig
	Schedule ScheduleConfig
	Server   ServerConfig
}

// WeatherConfig holds the upstream forecast API settings.
type WeatherConfig struct {
	APIKey SecretString `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	Units  string       `envconfig:"WEATHER_UNITS" default:"metric" validate:"oneof=metric imperial standard"`
	// Timeout bounds one forecast request so a single unreachable location
	// cannot stall a whole fetch tick.
	Timeout time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	// BaseURL override for testing; empty means the production endpoint.
	BaseURL string `envconfig:"OPENWEATHER_BASE_URL"`
}

// EmailConfig holds outbound email settings. Two interchangeable backends are
// supported: the Resend transactional API (USE_RESEND=true) and direct SMTP
// submission. Email is optional; with neither backend configured the notifier
// logs and skips.
type EmailConfig struct {
	UseResend    bool         `envconfig:"USE_RESEND" default:"false"`
	ResendAPIKey SecretString `envconfig:"RESEND_API_KEY"`

	SenderEmail string `envconfig:"SENDER_EMAIL" validate:"omitempty,email"`
	SenderName  string `envconfig:"SENDER_NAME" default:"Weather Alerts"`

	SMTPHost       string       `envconfig:"SMTP_HOST"`
	SMTPPort       int          `envconfig:"SMTP_PORT" default:"587" validate:"min=1,max=65535"`
	SenderPassword SecretString `envconfig:"SENDER_PASSWORD"`
	SMTPUseTLS     bool         `envconfig:"SMTP_USE_TLS" default:"true"`
}

// Backend identifies which email transport the configuration selects.
// Returns "resend", "smtp", or "" when email is not configured.
func (e EmailConfig) Backend() string {
	if e.SenderEmail == "" {
		return ""
	}
	if e.UseResend {
		if e.ResendAPIKey.Unmask() == "" {
			return ""
		}
		return "resend"
	}
	if e.SMTPHost == "" {
		return ""
	}
	return "smtp"
}

// ScheduleConfig holds the timing of the two periodic actions and the alert
// delivery window.
type ScheduleConfig struct {
	CheckIntervalHours int `envconfig:"WEATHER_CHECK_INTERVAL_HOURS" default:"3" validate:"min=1,max=24"`

	// AlertHour is the legacy single-hour setting; it is accepted but the
	// [AlertStartHour, AlertEndHour) window is what gates delivery.
	AlertHour      int `envconfig:"ALERT_HOUR" default:"8" validate:"min=0,max=23"`
	AlertStartHour int `envconfig:"ALERT_START_HOUR" default:"6" validate:"min=0,max=23"`
	AlertEndHour   int `envconfig:"ALERT_END_HOUR" default:"11" validate:"min=1,max=24"`

	// DedupeAlerts suppresses repeat sends for the same (building,
	// intervention) within one clock hour. In-memory only; a restart
	// resets the suppression state.
	DedupeAlerts bool `envconfig:"ALERT_DEDUPE" default:"true"`

	// FetchParallelism bounds the number of locations fetched concurrently
	// during one fetch tick.
	FetchParallelism int `envconfig:"FETCH_PARALLELISM" default:"4" validate:"min=1,max=64"`
}

// CheckInterval returns the fetch tick cadence as a duration.
func (s ScheduleConfig) CheckInterval() time.Duration {
	return time.Duration(s.CheckIntervalHours) * time.Hour
}

// ServerConfig holds the HTTP listener addresses.
type ServerConfig struct {
	// APIAddr is the dashboard API listen address (cmd/api).
	APIAddr string `envconfig:"API_ADDR" default:":8000"`
	// OpsAddr is the monitor's health/metrics listen address (cmd/monitor).
	OpsAddr            string   `envconfig:"OPS_ADDR" default:":9090"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrParsing indicates a failure parsing environment values into their
	// target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the configuration failed validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)
