package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherguard/internal/observability"
)

type stubSender struct {
	sent   int
	failed int
	err    error
}

func (s *stubSender) Run(context.Context) (int, int, error) {
	return s.sent, s.failed, s.err
}

func TestAlertPassRecordsDeliveryCounts(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	pass := NewAlertPass(&stubSender{sent: 3, failed: 2}, metrics, slog.Default())

	require.NoError(t, pass.Run(context.Background()))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.EmailsSent))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.EmailsFailed))
}

func TestAlertPassPropagatesPassError(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	pass := NewAlertPass(&stubSender{err: errors.New("store offline")}, metrics, slog.Default())

	require.Error(t, pass.Run(context.Background()))
	assert.Zero(t, testutil.ToFloat64(metrics.EmailsSent))
	assert.Zero(t, testutil.ToFloat64(metrics.EmailsFailed))
}
