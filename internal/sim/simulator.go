// Simulator orchestrating the emergency command console state machine
package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"responseops-sim/internal/anomaly"
	"responseops-sim/internal/auth"
	"responseops-sim/internal/config"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/metrics"
	"responseops-sim/internal/store"
	"responseops-sim/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.TelemetryRow) error
}

// EventWriter handles audit log rows.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

// AlertWriter handles anomaly alert rows.
type AlertWriter interface {
	WriteAlert(telemetry.AlertRow) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]telemetry.TelemetryRow) error
}

// Flags is the explicit simulation-behavior switchboard consulted by the
// tick loop and the sensor model.
type Flags struct {
	FaceRecognized  bool `json:"face_recognized"`
	MotionDetected  bool `json:"motion_detected"`
	HighHeat        bool `json:"high_heat"`
	NetworkDegraded bool `json:"network_degraded"`
}

// Flag names accepted by SetFlag.
const (
	FlagFaceRecognized  = "faceRecognized"
	FlagMotionDetected  = "motionDetected"
	FlagHighHeat        = "highHeat"
	FlagNetworkDegraded = "networkDegraded"
)

// GatewayRecord is one mock API gateway entry, keyed by endpoint path.
type GatewayRecord struct {
	Endpoint    string     `json:"endpoint"`
	Method      string     `json:"method"`
	LastRequest *time.Time `json:"last_request"`
	StatusCode  int        `json:"status"`
}

// Simulator owns the entire console state: drones, incidents, alerts, logs,
// gateway records, flags, and the session. All mutation goes through its
// methods under one mutex; collaborators only ever see copies.
type Simulator struct {
	mu  sync.Mutex
	cfg *config.ConsoleConfig

	consoleID    string
	mover        *telemetry.Mover
	rng          *rand.Rand
	now          func() time.Time
	sched        scheduler
	writer       TelemetryWriter
	store        store.Store
	collectors   *metrics.Collectors
	tickInterval time.Duration

	drones    []*telemetry.Drone
	incidents []*incident.Incident
	alerts    *anomaly.Engine
	logs      []telemetry.EventRow
	gateway   map[string]*GatewayRecord
	flags     Flags
	session   *auth.Session
	selected  string // focused incident id
	backupAt  time.Time

	autoRun       bool
	scenarioGroup []timerHandle

	pendingEvents []telemetry.EventRow
	pendingAlerts []telemetry.AlertRow
}

// NewSimulator builds the console from config, restoring a persisted
// snapshot when a store is attached and a readable one exists. A nil store
// selects the ephemeral, privacy-hardened mode: nothing ever touches disk.
func NewSimulator(cfg *config.ConsoleConfig, writer TelemetryWriter, st store.Store, tickInterval time.Duration, col *metrics.Collectors) *Simulator {
	if cfg == nil {
		cfg = config.Default()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &Simulator{
		cfg:          cfg,
		consoleID:    cfg.ConsoleID,
		mover:        telemetry.NewMover(cfg.Motion, rng),
		rng:          rng,
		now:          time.Now,
		sched:        realScheduler{},
		writer:       writer,
		store:        st,
		collectors:   col,
		tickInterval: tickInterval,
		alerts:       anomaly.NewEngine(),
		gateway:      make(map[string]*GatewayRecord),
	}
	if !s.loadSnapshot() {
		s.seed()
	}
	if s.selected == "" && len(s.incidents) > 0 {
		s.selected = s.incidents[0].ID
	}
	s.loadSession()
	return s
}

// seed installs the built-in demo state.
func (s *Simulator) seed() {
	for _, seed := range s.cfg.Drones {
		status := seed.Status
		if status == "" {
			status = telemetry.StatusIdle
		}
		s.drones = append(s.drones, &telemetry.Drone{
			ID:       seed.ID,
			Status:   status,
			Battery:  seed.Battery,
			Position: telemetry.Position{Lat: seed.Lat, Lng: seed.Lng},
			Sensors:  telemetry.Sensors{Temp: 34, Mic: "ON"},
		})
	}
	s.seedIncidents()
	for _, endpoint := range []struct {
		path, method string
		status       int
	}{
		{"/auth/login", "POST", 200},
		{"/incidents/list", "GET", 200},
		{"/dispatch/start", "POST", 202},
		{"/telemetry/live", "GET", 200},
		{"/vision/face-match", "POST", 200},
		{"/security/anomaly", "POST", 202},
		{"/backup/run", "POST", 200},
		{"/reports/export", "GET", 200},
	} {
		s.gateway[endpoint.path] = &GatewayRecord{Endpoint: endpoint.path, Method: endpoint.method, StatusCode: endpoint.status}
	}
	s.backupAt = s.now()
	s.logLocked("system", "Secure control platform initialized in demo mode.", "", "System")
}

// seedIncidents installs the two demo incidents and wires their assigned
// drones so the console boots mid-operation.
func (s *Simulator) seedIncidents() {
	now := s.now()
	ago := func(m int) time.Time { return now.Add(-time.Duration(m) * time.Minute) }

	traffic := &incident.Incident{
		ID:              "INC123",
		Type:            incident.TypeTraffic,
		Severity:        incident.SeverityHigh,
		Position:        telemetry.Position{Lat: 8.9713, Lng: 38.7729},
		LocationName:    "Ring Road Junction",
		CreatedAt:       ago(11),
		Status:          incident.StatusDispatched,
		AssignedDroneID: "DR-330",
		HeatLevel:       36,
		Recognized: []incident.RecognitionHit{
			{Name: "Nahom Girma", BadgeID: "AAU-2219", Confidence: 0.918, Time: ago(9)},
		},
		Transcript: []incident.TranscriptLine{
			{Time: ago(11), Text: "Command: Traffic collision report received at Ring Road Junction."},
			{Time: ago(10), Text: "Operator: Drone DR-330 dispatched, responders notified."},
		},
		Timeline: []incident.TimelineEntry{
			{Time: ago(11), Status: incident.StatusAlerted, Note: "Emergency call validated by operator."},
			{Time: ago(10), Status: incident.StatusDispatched, Note: "DR-330 assigned and en route."},
		},
	}
	environmental := &incident.Incident{
		ID:              "INC124",
		Type:            incident.TypeEnvironmental,
		Severity:        incident.SeverityMedium,
		Position:        telemetry.Position{Lat: 8.9895, Lng: 38.7477},
		LocationName:    "Riverside Sector",
		CreatedAt:       ago(33),
		Status:          incident.StatusOnScene,
		AssignedDroneID: "DR-204",
		HeatLevel:       44,
		Transcript: []incident.TranscriptLine{
			{Time: ago(33), Text: "Command: Rising river level trigger activated."},
			{Time: ago(30), Text: "Drone: Sensor package reporting humidity spike and bank erosion."},
		},
		Timeline: []incident.TimelineEntry{
			{Time: ago(33), Status: incident.StatusAlerted, Note: "Environmental threshold crossed."},
			{Time: ago(31), Status: incident.StatusDispatched, Note: "DR-204 launched for monitoring."},
			{Time: ago(28), Status: incident.StatusOnScene, Note: "Live environmental feed active."},
		},
	}
	s.incidents = append(s.incidents, traffic, environmental)

	if d := s.droneByIDLocked("DR-330"); d != nil {
		d.Status = telemetry.StatusEnRoute
		d.Target = &telemetry.Target{Position: traffic.Position, IncidentID: traffic.ID}
		d.Sensors.Temp = 37
		d.Sensors.Motion = true
	}
	if d := s.droneByIDLocked("DR-204"); d != nil {
		d.Status = telemetry.StatusOnScene
		d.Target = &telemetry.Target{Position: environmental.Position, IncidentID: environmental.ID}
		d.Sensors.Temp = 42
		d.Sensors.Motion = true
		d.Sensors.PumpPressure = 20
	}
}

func (s *Simulator) droneByIDLocked(id string) *telemetry.Drone {
	if id == "" {
		return nil
	}
	for _, d := range s.drones {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *Simulator) incidentByIDLocked(id string) *incident.Incident {
	for _, i := range s.incidents {
		if i.ID == id {
			return i
		}
	}
	return nil
}

// activeIncidentLocked returns the focused incident, or the highest-priority
// unresolved one as a fallback.
func (s *Simulator) activeIncidentLocked() *incident.Incident {
	if i := s.incidentByIDLocked(s.selected); i != nil {
		return i
	}
	var best *incident.Incident
	for _, i := range s.incidents {
		if best == nil {
			best = i
			continue
		}
		iDone, bestDone := i.Terminal(), best.Terminal()
		switch {
		case iDone && !bestDone:
		case !iDone && bestDone:
			best = i
		case i.Severity.Score() != best.Severity.Score():
			if i.Severity.Score() > best.Severity.Score() {
				best = i
			}
		case i.CreatedAt.After(best.CreatedAt):
			best = i
		}
	}
	return best
}

// logLocked appends one append-only audit record and queues it for writers.
func (s *Simulator) logLocked(category, message, incidentID, actor string) {
	if actor == "" {
		if s.session != nil {
			actor = s.session.Name
		} else {
			actor = "System"
		}
	}
	row := telemetry.EventRow{
		ID:         "LOG-" + uuid.New().String(),
		ConsoleID:  s.consoleID,
		Category:   category,
		IncidentID: incidentID,
		Actor:      actor,
		Message:    message,
		Timestamp:  s.now(),
	}
	s.logs = append(s.logs, row)
	s.pendingEvents = append(s.pendingEvents, row)
}

func (s *Simulator) genIncidentIDLocked() string {
	for {
		id := fmt.Sprintf("INC%d", 100+s.rng.Intn(900))
		if s.incidentByIDLocked(id) == nil {
			return id
		}
	}
}

// FocusIncident marks an incident as the active one for the AI panel,
// vision, and transcript widgets.
func (s *Simulator) FocusIncident(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incidentByIDLocked(id) != nil {
		s.selected = id
	}
}

// TelemetrySnapshot returns the latest state for all drones.
func (s *Simulator) TelemetrySnapshot() []telemetry.TelemetryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.telemetryRowsLocked()
}

func (s *Simulator) telemetryRowsLocked() []telemetry.TelemetryRow {
	rows := make([]telemetry.TelemetryRow, 0, len(s.drones))
	for _, d := range s.drones {
		rows = append(rows, telemetry.TelemetryRow{
			ConsoleID:    s.consoleID,
			DroneID:      d.ID,
			Lat:          d.Position.Lat,
			Lng:          d.Position.Lng,
			Battery:      d.Battery,
			Temp:         d.Sensors.Temp,
			PumpPressure: d.Sensors.PumpPressure,
			Motion:       d.Sensors.Motion,
			Status:       d.Status,
			Timestamp:    s.now().UTC(),
		})
	}
	return rows
}

// Incidents returns copies of all incidents, newest first.
func (s *Simulator) Incidents() []incident.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]incident.Incident, 0, len(s.incidents))
	for _, i := range s.incidents {
		out = append(out, *i)
	}
	return out
}

// Incident returns a copy of one incident by id.
func (s *Simulator) Incident(id string) (incident.Incident, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.incidentByIDLocked(id); i != nil {
		return *i, true
	}
	return incident.Incident{}, false
}

// Alerts returns copies of all anomaly alerts, newest first.
func (s *Simulator) Alerts() []anomaly.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.alerts.All()
	out := make([]anomaly.Alert, 0, len(all))
	for _, a := range all {
		out = append(out, *a)
	}
	return out
}

// Logs returns up to limit of the most recent audit records, newest first.
// A non-positive limit returns everything.
func (s *Simulator) Logs(limit int) []telemetry.EventRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.logs)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]telemetry.EventRow, 0, limit)
	for idx := n - 1; idx >= n-limit; idx-- {
		out = append(out, s.logs[idx])
	}
	return out
}

// Flags returns the current simulation flag switchboard.
func (s *Simulator) Flags() Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// Config returns the console configuration.
func (s *Simulator) Config() *config.ConsoleConfig {
	return s.cfg
}

// FleetHealth summarizes drone status counts.
type FleetHealth struct {
	Total        int `json:"total"`
	LowBattery   int `json:"low_battery"`
	Disconnected int `json:"disconnected"`
}

// Health returns aggregated drone fleet health.
func (s *Simulator) Health() FleetHealth {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := FleetHealth{Total: len(s.drones)}
	for _, d := range s.drones {
		if d.Status == telemetry.StatusDisconnected {
			h.Disconnected++
		} else if d.Battery <= s.mover.Params.LowBattery {
			h.LowBattery++
		}
	}
	return h
}

// StatusStrip is the dashboard header summary.
type StatusStrip struct {
	SystemHealth    string        `json:"system_health"`
	OpenAlerts      int           `json:"open_alerts"`
	Network         string        `json:"network"`
	ConnectedDrones int           `json:"connected_drones"`
	TotalDrones     int           `json:"total_drones"`
	BackupCountdown time.Duration `json:"backup_countdown"`
	Encryption      string        `json:"encryption"`
	AutoRun         bool          `json:"auto_run"`
}

// Status returns the dashboard status strip.
func (s *Simulator) Status() StatusStrip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Simulator) statusLocked() StatusStrip {
	strip := StatusStrip{
		SystemHealth: "Nominal",
		OpenAlerts:   s.alerts.OpenCount(),
		Network:      "Stable",
		TotalDrones:  len(s.drones),
		Encryption:   "ON",
		AutoRun:      s.autoRun,
	}
	if strip.OpenAlerts > 0 {
		strip.SystemHealth = "Monitor"
	}
	if s.flags.NetworkDegraded {
		strip.Network = "Degraded"
	}
	for _, d := range s.drones {
		if d.Status != telemetry.StatusDisconnected {
			strip.ConnectedDrones++
		}
	}
	interval := time.Duration(s.cfg.BackupIntervalHours) * time.Hour
	if interval > 0 {
		elapsed := s.now().Sub(s.backupAt) % interval
		strip.BackupCountdown = interval - elapsed
	}
	return strip
}
