package sim

import (
	"fmt"

	"responseops-sim/internal/anomaly"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/telemetry"
)

// Dispatch assigns the best available drone to an incident and returns the
// chosen drone id. Calling it again for an already-assigned incident is
// idempotent: it logs a skip and returns the existing assignment.
func (s *Simulator) Dispatch(incidentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return "", err
	}
	inc := s.incidentByIDLocked(incidentID)
	if inc == nil {
		return "", ErrNotFound
	}
	return s.dispatchLocked(inc)
}

func (s *Simulator) dispatchLocked(inc *incident.Incident) (string, error) {
	if inc.Terminal() {
		return "", fmt.Errorf("incident %s is already %s", inc.ID, inc.Status)
	}
	if inc.AssignedDroneID != "" {
		s.logLocked("dispatch", fmt.Sprintf("Dispatch skipped: %s already assigned to %s.", inc.AssignedDroneID, inc.ID), inc.ID, "")
		s.dispatchResult("skipped")
		return inc.AssignedDroneID, nil
	}
	d := s.pickDroneLocked()
	if d == nil {
		s.raiseLocked("no-drone", "Capacity", anomaly.SeverityHigh,
			"No eligible drone available for dispatch.",
			"Incident queued; nearest returning unit will be recalled.")
		s.logLocked("dispatch", "Dispatch failed: no eligible drone available.", inc.ID, "")
		s.dispatchResult("no_drone")
		return "", ErrNoDrone
	}
	inc.AssignedDroneID = d.ID
	d.Status = telemetry.StatusEnRoute
	d.Target = &telemetry.Target{Position: inc.Position, IncidentID: inc.ID}
	s.setIncidentStatusLocked(inc, incident.StatusDispatched, fmt.Sprintf("%s assigned and launching.", d.ID))
	s.recordAPILocked("/dispatch/start", "POST", 202)
	s.logLocked("dispatch", fmt.Sprintf("%s dispatched to %s (%s).", d.ID, inc.LocationName, inc.ID), inc.ID, "")
	s.dispatchResult("ok")
	return d.ID, nil
}

// pickDroneLocked ranks eligible drones by battery, highest first. Ties keep
// fleet order, so repeated calls under identical state pick the same drone.
func (s *Simulator) pickDroneLocked() *telemetry.Drone {
	var best *telemetry.Drone
	for _, d := range s.drones {
		switch d.Status {
		case telemetry.StatusIdle, telemetry.StatusReturning, telemetry.StatusOnPatrol:
		default:
			continue
		}
		if best == nil || d.Battery > best.Battery {
			best = d
		}
	}
	return best
}

func (s *Simulator) dispatchResult(result string) {
	if s.collectors != nil {
		s.collectors.Dispatches.WithLabelValues(result).Inc()
	}
}
