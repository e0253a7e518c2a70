// Package notify decides when a stored alert becomes an email. It reads the
// most recent evaluation results, filters them through the delivery window,
// and fans a rendered message out to each location owner.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"weatherguard/internal/external"
	"weatherguard/internal/types"
)

// LocationReader lists the monitored locations.
type LocationReader interface {
	ListLocations() ([]types.Location, error)
}

// InterventionReader resolves intervention ids to their display content.
type InterventionReader interface {
	MustGetIntervention(id string) (types.Intervention, error)
}

// ObservationReader reads the latest evaluation batch for a building.
type ObservationReader interface {
	LatestForBuilding(buildingCode string) ([]types.Observation, error)
}

// Config controls delivery gating.
type Config struct {
	// Alerts go out only when the local hour is in [StartHour, EndHour).
	StartHour int
	EndHour   int
	// Dedupe suppresses repeat sends for the same building and intervention
	// within the same hour. State is in-memory and resets on restart.
	Dedupe bool
	Sender types.SenderIdentity
}

// Notifier runs the hourly alert pass.
type Notifier struct {
	locations     LocationReader
	interventions InterventionReader
	observations  ObservationReader
	provider      external.EmailProvider
	cfg           Config
	clock         clockwork.Clock
	logger        *slog.Logger

	mu   sync.Mutex
	sent map[string]struct{}
}

// New builds a Notifier. A nil clock falls back to the real clock.
func New(
	locations LocationReader,
	interventions InterventionReader,
	observations ObservationReader,
	provider external.EmailProvider,
	cfg Config,
	clock clockwork.Clock,
	logger *slog.Logger,
) *Notifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		locations:     locations,
		interventions: interventions,
		observations:  observations,
		provider:      provider,
		cfg:           cfg,
		clock:         clock,
		logger:        logger,
	}
}

// Run executes one alert pass: for every location whose most recent result
// carries a triggered intervention, email each owner. Outside the delivery
// window the pass is a no-op. Failures are isolated per location and per
// recipient; Run returns how many emails went out and how many deliveries
// failed.
func (n *Notifier) Run(ctx context.Context) (sent, failed int, err error) {
	now := n.clock.Now()
	if hour := now.Hour(); hour < n.cfg.StartHour || hour >= n.cfg.EndHour {
		n.logger.Debug("outside alert delivery window, skipping pass",
			slog.Int("hour", hour),
			slog.Int("start", n.cfg.StartHour),
			slog.Int("end", n.cfg.EndHour))
		return 0, 0, nil
	}

	locations, err := n.locations.ListLocations()
	if err != nil {
		return 0, 0, err
	}

	for _, loc := range locations {
		ok, bad, err := n.notifyLocation(ctx, loc, now)
		if err != nil {
			n.logger.Error("alert pass failed for location",
				slog.String("building_code", loc.BuildingCode),
				slog.String("error", err.Error()))
			continue
		}
		sent += ok
		failed += bad
	}
	return sent, failed, nil
}

// notifyLocation emails the owners of one location if its most recent result
// carries a triggered intervention.
func (n *Notifier) notifyLocation(ctx context.Context, loc types.Location, now time.Time) (sent, failed int, err error) {
	latest, err := n.observations.LatestForBuilding(loc.BuildingCode)
	if err != nil {
		return 0, 0, err
	}

	interventionID := activeIntervention(latest)
	if interventionID == "" {
		return 0, 0, nil
	}
	if len(loc.OwnerEmails) == 0 {
		n.logger.Warn("triggered alert has no recipients",
			slog.String("building_code", loc.BuildingCode),
			slog.String("intervention_id", interventionID))
		return 0, 0, nil
	}
	if n.cfg.Dedupe && n.alreadySent(loc.BuildingCode, interventionID, now) {
		n.logger.Debug("suppressing duplicate alert",
			slog.String("building_code", loc.BuildingCode),
			slog.String("intervention_id", interventionID))
		return 0, 0, nil
	}

	iv, err := n.interventions.MustGetIntervention(interventionID)
	if err != nil {
		return 0, 0, err
	}
	msg, err := RenderAlert(iv)
	if err != nil {
		return 0, 0, err
	}

	for _, recipient := range loc.OwnerEmails {
		msgID, err := n.provider.Send(ctx, types.SendInput{
			To:          recipient,
			From:        n.cfg.Sender,
			Subject:     msg.Subject,
			BodyText:    msg.BodyText,
			BodyHTML:    msg.BodyHTML,
			ReferenceID: dedupeKey(loc.BuildingCode, interventionID, now) + "-" + recipient,
		})
		if err != nil {
			n.logger.Error("alert email failed",
				slog.String("building_code", loc.BuildingCode),
				slog.String("recipient", recipient),
				slog.String("error", err.Error()))
			failed++
			continue
		}
		n.logger.Info("alert email sent",
			slog.String("building_code", loc.BuildingCode),
			slog.String("intervention_id", interventionID),
			slog.String("recipient", recipient),
			slog.String("message_id", msgID))
		sent++
	}

	if sent > 0 && n.cfg.Dedupe {
		n.markSent(loc.BuildingCode, interventionID, now)
	}
	return sent, failed, nil
}

// activeIntervention returns the intervention id of the newest observation
// in the latest batch, or "" when that row is the no-alert sentinel. Only
// the most recent result gates delivery; earlier samples in the same cycle
// that triggered do not.
func activeIntervention(latest []types.Observation) string {
	var newest *types.Observation
	for i := range latest {
		if newest == nil || latest[i].Timestamp.After(newest.Timestamp) {
			newest = &latest[i]
		}
	}
	if newest == nil || !newest.Triggered() {
		return ""
	}
	return newest.InterventionID
}

const dedupeHourLayout = "2006010215"

func dedupeKey(buildingCode, interventionID string, now time.Time) string {
	return fmt.Sprintf("%s|%s|%s", buildingCode, interventionID, now.Format(dedupeHourLayout))
}

func (n *Notifier) alreadySent(buildingCode, interventionID string, now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.sent[dedupeKey(buildingCode, interventionID, now)]
	return ok
}

func (n *Notifier) markSent(buildingCode, interventionID string, now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[string]struct{})
	}
	// Keys from past hours can never match again, so drop them to keep the
	// map bounded by the buildings alerted in the current hour.
	hour := now.Format(dedupeHourLayout)
	for key := range n.sent {
		if !strings.HasSuffix(key, "|"+hour) {
			delete(n.sent, key)
		}
	}
	n.sent[dedupeKey(buildingCode, interventionID, now)] = struct{}{}
}
