package sim

import (
	"encoding/json"
	"time"

	"responseops-sim/internal/anomaly"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/telemetry"
)

// Store keys for persisted console state.
const (
	stateKey   = "responseops/state"
	sessionKey = "responseops/session"
)

// consoleSnapshot is the serialized form of the simulator state.
type consoleSnapshot struct {
	SavedAt   time.Time                 `json:"saved_at"`
	Drones    []*telemetry.Drone        `json:"drones"`
	Incidents []*incident.Incident      `json:"incidents"`
	Alerts    []*anomaly.Alert          `json:"alerts"`
	Logs      []telemetry.EventRow      `json:"logs"`
	Gateway   map[string]*GatewayRecord `json:"gateway"`
	Flags     Flags                     `json:"flags"`
	Selected  string                    `json:"selected"`
	BackupAt  time.Time                 `json:"backup_at"`
}

// saveSnapshotLocked persists the full console state. Without a store the
// console is ephemeral and this is a no-op.
func (s *Simulator) saveSnapshotLocked() {
	if s.store == nil {
		return
	}
	snap := consoleSnapshot{
		SavedAt:   s.now(),
		Drones:    s.drones,
		Incidents: s.incidents,
		Alerts:    s.alerts.All(),
		Logs:      s.logs,
		Gateway:   s.gateway,
		Flags:     s.flags,
		Selected:  s.selected,
		BackupAt:  s.backupAt,
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = s.store.Set(stateKey, blob)
}

// Persist saves the current state outside the backup schedule, for shutdown.
func (s *Simulator) Persist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveSnapshotLocked()
	s.saveSessionLocked()
}

// loadSnapshot restores persisted state. It reports whether a usable
// snapshot was applied; malformed blobs are discarded so the console falls
// back to the seeded defaults.
func (s *Simulator) loadSnapshot() bool {
	if s.store == nil {
		return false
	}
	blob, ok := s.store.Get(stateKey)
	if !ok {
		return false
	}
	var snap consoleSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil || len(snap.Drones) == 0 {
		_ = s.store.Remove(stateKey)
		return false
	}
	s.drones = snap.Drones
	s.incidents = snap.Incidents
	s.alerts.Restore(snap.Alerts)
	s.logs = snap.Logs
	s.gateway = snap.Gateway
	if s.gateway == nil {
		s.gateway = make(map[string]*GatewayRecord)
	}
	s.flags = snap.Flags
	s.selected = snap.Selected
	s.backupAt = snap.BackupAt
	if s.backupAt.IsZero() {
		s.backupAt = s.now()
	}
	s.logLocked("system", "Persisted console state restored.", "", "System")
	return true
}
