package sim

import (
	"fmt"
	"time"

	"responseops-sim/internal/incident"
)

// scheduler abstracts timer creation so scenario tests can fire steps
// deterministically.
type scheduler interface {
	AfterFunc(d time.Duration, fn func()) timerHandle
}

type timerHandle interface {
	Stop() bool
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) timerHandle {
	return time.AfterFunc(d, fn)
}

// Scenario step offsets, relative to the start of the run.
const (
	scenarioAckAt      = 0
	scenarioDispatchAt = 2500 * time.Millisecond
	scenarioEnRouteAt  = 6000 * time.Millisecond
	scenarioOnSceneAt  = 9500 * time.Millisecond
	scenarioResolveAt  = 13500 * time.Millisecond
	scenarioWatchdogAt = 14200 * time.Millisecond
)

// RunScenario drives the active incident through a scripted response arc:
// acknowledge, dispatch, transit, on scene, resolved. Starting a run while
// one is active is a no-op. Without a usable active incident a Medical
// Emergency at High severity is created as the subject.
func (s *Simulator) RunScenario() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return err
	}
	if s.autoRun {
		return nil
	}
	inc := s.activeIncidentLocked()
	if inc == nil || inc.Terminal() {
		inc = s.createIncidentLocked(incident.TypeMedical, incident.SeverityHigh)
	}
	s.selected = inc.ID
	s.autoRun = true
	s.stopTimersLocked()
	id := inc.ID
	s.logLocked("operator", fmt.Sprintf("Auto-run scenario started for %s.", id), id, "")

	steps := []struct {
		at time.Duration
		fn func(inc *incident.Incident)
	}{
		{scenarioAckAt, func(inc *incident.Incident) {
			s.transcriptLocked(inc, "Command: alert acknowledged; validating route and responder availability.")
			s.setIncidentStatusLocked(inc, incident.StatusAlerted, "Incident accepted into dispatch flow.")
		}},
		{scenarioDispatchAt, func(inc *incident.Incident) {
			_, _ = s.dispatchLocked(inc)
		}},
		{scenarioEnRouteAt, func(inc *incident.Incident) {
			s.setIncidentStatusLocked(inc, incident.StatusEnRoute, "Drone transit confirmed; responders notified.")
			s.transcriptLocked(inc, "Drone: en route telemetry stable, ETA recalculating every 5 seconds.")
		}},
		{scenarioOnSceneAt, func(inc *incident.Incident) {
			s.setIncidentStatusLocked(inc, incident.StatusOnScene, "Drone reached location and started active monitoring.")
			s.transcriptLocked(inc, "Command: drone on scene, live feed and telemetry now active.")
			if s.flags.FaceRecognized {
				s.faceHitLocked(inc)
			}
		}},
		{scenarioResolveAt, func(inc *incident.Incident) {
			s.setIncidentStatusLocked(inc, incident.StatusResolved, "Scene stabilized and handed over to local responders.")
			s.transcriptLocked(inc, "Operator: incident resolved, evidence archived, drone returning to base.")
			s.logLocked("operator", fmt.Sprintf("Auto-run scenario completed for %s.", id), id, "")
			s.autoRun = false
			s.saveSnapshotLocked()
		}},
	}
	for _, step := range steps {
		fn := step.fn
		s.scenarioGroup = append(s.scenarioGroup, s.sched.AfterFunc(step.at, func() {
			s.scenarioStep(id, fn)
		}))
	}
	// Watchdog: whatever happened to the individual steps, the run flag must
	// come down so the next scenario can start.
	s.scenarioGroup = append(s.scenarioGroup, s.sched.AfterFunc(scenarioWatchdogAt, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.autoRun {
			s.autoRun = false
			s.saveSnapshotLocked()
		}
	}))
	return nil
}

func (s *Simulator) scenarioStep(id string, fn func(inc *incident.Incident)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.autoRun {
		return
	}
	inc := s.incidentByIDLocked(id)
	if inc == nil {
		return
	}
	fn(inc)
}

// CancelScenario stops a running scenario. Pending steps never fire.
func (s *Simulator) CancelScenario() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelScenarioLocked()
}

func (s *Simulator) cancelScenarioLocked() {
	if !s.autoRun && len(s.scenarioGroup) == 0 {
		return
	}
	s.stopTimersLocked()
	if s.autoRun {
		s.autoRun = false
		s.logLocked("operator", "Auto-run scenario canceled.", "", "")
	}
}

func (s *Simulator) stopTimersLocked() {
	for _, t := range s.scenarioGroup {
		t.Stop()
	}
	s.scenarioGroup = nil
}

func (s *Simulator) transcriptLocked(inc *incident.Incident, text string) {
	inc.Transcript = append(inc.Transcript, incident.TranscriptLine{Time: s.now(), Text: text})
}
