package core

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"weatherguard/internal/engine"
	"weatherguard/internal/types"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, APIResponse{Data: map[string]string{
		"service": "weatherguard",
		"status":  "ok",
	}})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// The store is the only dependency; a readable locations table means
	// the data directory is intact.
	if _, err := s.Store.ListLocations(); err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: map[string]string{"status": "healthy"}})
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.Store.ListLocations()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: locations})
}

func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.Store.GetLocation(chi.URLParam(r, "buildingCode"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: loc})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.Store.ListRules()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: rules})
}

func (s *Server) handleListInterventions(w http.ResponseWriter, r *http.Request) {
	interventions, err := s.Store.ListInterventions()
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: interventions})
}

// handleListResults returns evaluation results, optionally filtered by the
// building_code query parameter.
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	var (
		results []types.Observation
		err     error
	)
	if code := r.URL.Query().Get("building_code"); code != "" {
		results, err = s.Store.ObservationsForBuilding(code)
	} else {
		results, err = s.Store.ListObservations()
	}
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: results})
}

// DashboardEntry summarizes one location for the operator dashboard.
type DashboardEntry struct {
	BuildingCode      string              `json:"building_code"`
	Status            types.SiteStatus    `json:"status"`
	StatusLabel       string              `json:"status_label"`
	StatusDescription string              `json:"status_description"`
	ActiveAlert       *ActiveAlert        `json:"active_alert,omitempty"`
	LatestResults     []types.Observation `json:"latest_results"`
}

// ActiveAlert describes the triggered intervention shown on the dashboard.
type ActiveAlert struct {
	InterventionID string         `json:"intervention_id"`
	Title          string         `json:"title"`
	Severity       types.Severity `json:"severity"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	locations, err := s.Store.ListLocations()
	if err != nil {
		Error(w, r, err)
		return
	}

	now := time.Now()
	entries := make([]DashboardEntry, 0, len(locations))
	for _, loc := range locations {
		latest, err := s.Store.LatestForBuilding(loc.BuildingCode)
		if err != nil {
			Error(w, r, err)
			return
		}

		status := engine.CalculateSiteStatus(latest, now)
		entry := DashboardEntry{
			BuildingCode:      loc.BuildingCode,
			Status:            status,
			StatusLabel:       status.Label(),
			StatusDescription: status.Description(),
			LatestResults:     latest,
		}

		for _, o := range latest {
			if !o.Triggered() {
				continue
			}
			alert := &ActiveAlert{
				InterventionID: o.InterventionID,
				Severity:       o.Severity,
			}
			if iv, err := s.Store.GetIntervention(o.InterventionID); err == nil && iv != nil {
				alert.Title = iv.Title
			}
			entry.ActiveAlert = alert
			break
		}

		entries = append(entries, entry)
	}
	JSON(w, r, http.StatusOK, APIResponse{Data: entries})
}
