package external

import (
	"context"

	"weatherguard/internal/types"
)

// ForecastProvider fetches the hourly forecast for a coordinate pair.
// Implementations return samples in chronological order.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64) ([]types.ForecastSample, error)
}

// EmailProvider delivers a single message and returns the provider-assigned
// message id on success.
type EmailProvider interface {
	Send(ctx context.Context, input types.SendInput) (string, error)
}
