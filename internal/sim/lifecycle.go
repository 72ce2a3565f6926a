package sim

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"responseops-sim/internal/anomaly"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/telemetry"
)

var (
	// ErrNoSession is returned for mutating calls before login.
	ErrNoSession = errors.New("no active session")
	// ErrNotAuthorized is returned when the session role is read-only.
	ErrNotAuthorized = errors.New("session role cannot perform this action")
	// ErrNotFound is returned when an incident or drone id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrNoDrone is returned when no drone is eligible for dispatch.
	ErrNoDrone = errors.New("no eligible drone available")
)

func (s *Simulator) requireOperatorLocked() error {
	if s.session == nil {
		return ErrNoSession
	}
	if !s.session.Role.CanOperate() {
		return ErrNotAuthorized
	}
	return nil
}

// CreateIncident reports a new incident of the given category and severity.
// An empty category picks a random one.
func (s *Simulator) CreateIncident(typ string, sev incident.Severity) (incident.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return incident.Incident{}, err
	}
	return *s.createIncidentLocked(typ, sev), nil
}

func (s *Simulator) createIncidentLocked(typ string, sev incident.Severity) *incident.Incident {
	if typ == "" {
		types := incident.Types()
		typ = types[s.rng.Intn(len(types))]
	}
	if sev.Score() == 0 {
		sevs := incident.Severities()
		sev = sevs[s.rng.Intn(len(sevs))]
	}
	locs := incident.LocationsFor(typ)
	now := s.now()
	heat := 36.0
	if typ == incident.TypeFire {
		heat = 78
	}
	inc := &incident.Incident{
		ID:       s.genIncidentIDLocked(),
		Type:     typ,
		Severity: sev,
		Position: telemetry.Position{
			Lat: s.cfg.Base.Lat + (s.rng.Float64()-0.5)*s.cfg.IncidentSpread,
			Lng: s.cfg.Base.Lng + (s.rng.Float64()-0.5)*s.cfg.IncidentSpread,
		},
		LocationName: locs[s.rng.Intn(len(locs))],
		CreatedAt:    now,
		Status:       incident.StatusAlerted,
		HeatLevel:    heat,
		Timeline: []incident.TimelineEntry{
			{Time: now, Status: incident.StatusAlerted, Note: "Incident reported to command console."},
		},
		Transcript: []incident.TranscriptLine{
			{Time: now, Text: "Command: New report received; verifying source credibility."},
		},
	}
	s.incidents = append([]*incident.Incident{inc}, s.incidents...)
	s.selected = inc.ID
	s.recordAPILocked("/incidents/list", "POST", 201)
	s.logLocked("incident", fmt.Sprintf("New %s reported at %s (%s severity).", typ, inc.LocationName, sev), inc.ID, "")
	if s.collectors != nil {
		s.collectors.IncidentsCreated.WithLabelValues(typ).Inc()
	}
	if s.flags.FaceRecognized {
		s.faceHitLocked(inc)
	}
	return inc
}

// SetStatus applies an incident status transition. Re-applying the current
// status is a silent no-op.
func (s *Simulator) SetStatus(id string, next incident.Status, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return err
	}
	inc := s.incidentByIDLocked(id)
	if inc == nil {
		return ErrNotFound
	}
	s.setIncidentStatusLocked(inc, next, note)
	return nil
}

// setIncidentStatusLocked is the single mutation point for incident status.
// Every transition lands in the timeline and the audit log; resolution
// releases the assigned drone onto a return-to-base leg.
func (s *Simulator) setIncidentStatusLocked(inc *incident.Incident, next incident.Status, note string) {
	if !inc.AdvanceStatus(s.now(), next, note) {
		return
	}
	s.logLocked("incident", fmt.Sprintf("%s -> %s: %s", inc.ID, next, inc.Timeline[len(inc.Timeline)-1].Note), inc.ID, "")
	if next == incident.StatusResolved {
		s.releaseDroneLocked(inc)
	}
}

func (s *Simulator) releaseDroneLocked(inc *incident.Incident) {
	d := s.droneByIDLocked(inc.AssignedDroneID)
	if d == nil || d.Status == telemetry.StatusDisconnected {
		return
	}
	d.Status = telemetry.StatusReturning
	d.Target = &telemetry.Target{Position: s.cfg.Base}
	s.logLocked("dispatch", fmt.Sprintf("%s released from %s, returning to base.", d.ID, inc.ID), inc.ID, "")
}

// faceHitLocked simulates a watchlist match on the incident's video feed.
func (s *Simulator) faceHitLocked(inc *incident.Incident) {
	people := incident.Watchlist()
	p := people[s.rng.Intn(len(people))]
	hit := incident.RecognitionHit{
		Name:       p.Name,
		BadgeID:    p.BadgeID,
		Confidence: 0.86 + s.rng.Float64()*0.13,
		Time:       s.now(),
	}
	inc.Recognized = append(inc.Recognized, hit)
	s.recordAPILocked("/vision/face-match", "POST", 200)
	s.logLocked("vision", fmt.Sprintf("Face match: %s (%s) at %.0f%% confidence.", hit.Name, hit.BadgeID, hit.Confidence*100), inc.ID, "")
}

// CaptureSnapshot stores a simulated evidence frame on the incident.
func (s *Simulator) CaptureSnapshot(incidentID string) (incident.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return incident.Snapshot{}, err
	}
	inc := s.incidentByIDLocked(incidentID)
	if inc == nil {
		return incident.Snapshot{}, ErrNotFound
	}
	snap := incident.Snapshot{
		ID:        "SNAP-" + uuid.New().String()[:8],
		Label:     fmt.Sprintf("Frame capture %d", len(inc.Snapshots)+1),
		Time:      s.now(),
		FrameHash: fmt.Sprintf("%08x%08x", s.rng.Uint32(), s.rng.Uint32()),
	}
	inc.Snapshots = append(inc.Snapshots, snap)
	s.logLocked("evidence", fmt.Sprintf("Snapshot %s captured and hash-sealed.", snap.ID), inc.ID, "")
	return snap, nil
}

// SetPumpPressure commands the fire-suppression pump on a drone. Higher
// pressure cools the drone's thermal reading and bleeds heat off the
// incident the drone is working.
func (s *Simulator) SetPumpPressure(droneID string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return err
	}
	d := s.droneByIDLocked(droneID)
	if d == nil {
		return ErrNotFound
	}
	if value < 0 {
		value = 0
	} else if value > 100 {
		value = 100
	}
	d.Sensors.PumpPressure = value
	d.Sensors.Temp = math.Max(30, d.Sensors.Temp-value/35)
	incidentID := ""
	if inc := s.assignedIncidentLocked(d.ID); inc != nil {
		inc.HeatLevel = math.Max(25, inc.HeatLevel-value/9)
		inc.Transcript = append(inc.Transcript, incident.TranscriptLine{
			Time: s.now(),
			Text: fmt.Sprintf("Pump control: pressure set to %.0f psi.", value),
		})
		incidentID = inc.ID
	}
	s.logLocked("control", fmt.Sprintf("%s pump pressure set to %.0f psi.", d.ID, value), incidentID, "")
	return nil
}

// TogglePayloadMagnet flips the delivery payload lock on an incident and
// returns the new state.
func (s *Simulator) TogglePayloadMagnet(incidentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return false, err
	}
	inc := s.incidentByIDLocked(incidentID)
	if inc == nil {
		return false, ErrNotFound
	}
	inc.PayloadMagnetOn = !inc.PayloadMagnetOn
	state := "disengaged"
	if inc.PayloadMagnetOn {
		state = "engaged"
	}
	s.logLocked("control", fmt.Sprintf("Payload magnet %s for %s.", state, inc.ID), inc.ID, "")
	return inc.PayloadMagnetOn, nil
}

// SendDoctorInstructions relays medical guidance into the incident comms.
func (s *Simulator) SendDoctorInstructions(incidentID, text string) error {
	return s.appendComms(incidentID, "Doctor relay: "+strings.TrimSpace(text), "comms",
		"Doctor instructions relayed to on-scene audio channel.")
}

// PushHazardAdvisory broadcasts a precaution advisory into the incident comms.
func (s *Simulator) PushHazardAdvisory(incidentID, text string) error {
	return s.appendComms(incidentID, "Advisory broadcast: "+strings.TrimSpace(text), "comms",
		"Hazard advisory pushed to nearby public zone.")
}

func (s *Simulator) appendComms(incidentID, line, category, logMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return err
	}
	inc := s.incidentByIDLocked(incidentID)
	if inc == nil {
		return ErrNotFound
	}
	inc.Transcript = append(inc.Transcript, incident.TranscriptLine{Time: s.now(), Text: line})
	s.logLocked(category, logMsg, inc.ID, "")
	return nil
}

// MarkFalsePositive flags an incident as a false report and resolves it.
func (s *Simulator) MarkFalsePositive(incidentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return err
	}
	inc := s.incidentByIDLocked(incidentID)
	if inc == nil {
		return ErrNotFound
	}
	inc.FalsePositive = true
	s.setIncidentStatusLocked(inc, incident.StatusResolved, "Marked as false positive after operator review.")
	return nil
}

// SetFlag flips one simulation behavior flag. Flags feed the sensor model
// and the anomaly engine on the next tick; the network flag raises or
// resolves its alert immediately.
func (s *Simulator) SetFlag(name string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return err
	}
	switch name {
	case FlagFaceRecognized:
		s.flags.FaceRecognized = on
		if on {
			if inc := s.activeIncidentLocked(); inc != nil && !inc.Terminal() {
				s.faceHitLocked(inc)
			}
		}
	case FlagMotionDetected:
		s.flags.MotionDetected = on
		if on {
			s.noteActiveLocked("Motion detection enabled by operator.",
				"Motion detection ACTIVE on drone sensor channel.")
		} else {
			s.noteActiveLocked("Motion detection cleared by operator.",
				"Motion detection cleared on drone sensor channel.")
		}
	case FlagHighHeat:
		s.flags.HighHeat = on
		s.shiftHeatProfileLocked(on)
		if on {
			s.noteActiveLocked("Heat profile elevated by operator.",
				"Thermal channel spike detected.")
		} else {
			s.noteActiveLocked("Heat profile normalized by operator.",
				"Thermal channel returned to nominal range.")
		}
	case FlagNetworkDegraded:
		s.flags.NetworkDegraded = on
		if on {
			s.raiseLocked("network-degraded", "Network", anomaly.SeverityHigh,
				"Mesh link quality degraded across the fleet.",
				"Rerouting traffic through backup relay; bandwidth capped.")
			s.noteActiveLocked("Network degraded; secure channel fallback active.",
				"Network status DEGRADED for command uplink.")
		} else {
			s.alerts.Resolve("network-degraded")
			s.logLocked("security", "Network status recovered to stable.", "", "")
			s.noteActiveLocked("Network stabilized; secure channel restored.",
				"Network status stable for command uplink.")
		}
	default:
		return fmt.Errorf("unknown flag %q", name)
	}
	s.logLocked("system", fmt.Sprintf("Simulation flag %s set to %t.", name, on), "", "")
	return nil
}

// noteActiveLocked records a flag toggle on the active incident: one
// timeline note at the current status, one comms line.
func (s *Simulator) noteActiveLocked(note, comms string) {
	inc := s.activeIncidentLocked()
	if inc == nil || inc.Terminal() {
		return
	}
	inc.Timeline = append(inc.Timeline, incident.TimelineEntry{Time: s.now(), Status: inc.Status, Note: note})
	inc.Transcript = append(inc.Transcript, incident.TranscriptLine{Time: s.now(), Text: comms})
}

// shiftHeatProfileLocked applies the high-heat toggle to the world: fire and
// environmental incidents jump to crisis heat (or settle back), and every
// drone's thermal reading follows.
func (s *Simulator) shiftHeatProfileLocked(on bool) {
	for _, inc := range s.incidents {
		if inc.Type != incident.TypeFire && inc.Type != incident.TypeEnvironmental {
			continue
		}
		if on {
			inc.HeatLevel = math.Max(inc.HeatLevel, 90)
		} else {
			inc.HeatLevel = math.Min(inc.HeatLevel, 58)
		}
	}
	for _, d := range s.drones {
		if on {
			d.Sensors.Temp = math.Max(d.Sensors.Temp, 79)
		} else {
			d.Sensors.Temp = math.Min(d.Sensors.Temp, 42)
		}
	}
}

// AckAnomaly resolves an open alert by id as an operator acknowledgment.
func (s *Simulator) AckAnomaly(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOperatorLocked(); err != nil {
		return err
	}
	a := s.alerts.ResolveID(id)
	if a == nil {
		return ErrNotFound
	}
	s.recordAPILocked("/security/anomaly", "POST", 202)
	s.logLocked("anomaly", fmt.Sprintf("Alert %s (%s) acknowledged and resolved.", a.ID, a.Type), "", "")
	return nil
}
