// Telemetry structs with greptime tags
package telemetry

import (
	"os"
	"time"
)

// Status describes the operational state of a drone.
type Status string

// Drone status values.
const (
	StatusIdle         Status = "Idle"
	StatusEnRoute      Status = "En Route"
	StatusOnScene      Status = "On Scene"
	StatusReturning    Status = "Returning"
	StatusOnPatrol     Status = "On Patrol"
	StatusDisconnected Status = "Disconnected"
)

// Position holds latitude and longitude in decimal degrees.
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Target is a destination a drone is steering toward. An empty IncidentID
// marks a return-to-base leg.
type Target struct {
	Position   `yaml:",inline"`
	IncidentID string `json:"incident_id,omitempty" yaml:"incident_id,omitempty"`
}

// Sensors is the simulated sensor bundle carried by every drone.
type Sensors struct {
	Temp         float64 `json:"temp" yaml:"temp"`
	Motion       bool    `json:"motion" yaml:"motion"`
	Mic          string  `json:"mic" yaml:"mic"`
	PumpPressure float64 `json:"pump_pressure" yaml:"pump_pressure"`
}

// Drone holds runtime state for a simulated responder drone.
type Drone struct {
	ID       string   `json:"id"`
	Status   Status   `json:"status"`
	Battery  float64  `json:"battery"`
	Position Position `json:"position"`
	Target   *Target  `json:"target,omitempty"`
	Sensors  Sensors  `json:"sensors"`
}

// TelemetryRow represents one telemetry record for GreptimeDB.
type TelemetryRow struct {
	ConsoleID    string    `json:"console_id"`    // TAG
	DroneID      string    `json:"drone_id"`      // TAG
	Lat          float64   `json:"lat"`           // FIELD
	Lng          float64   `json:"lng"`           // FIELD
	Battery      float64   `json:"battery"`       // FIELD
	Temp         float64   `json:"temp"`          // FIELD
	PumpPressure float64   `json:"pump_pressure"` // FIELD
	Motion       bool      `json:"motion"`        // FIELD
	Status       Status    `json:"status"`        // FIELD
	Timestamp    time.Time `json:"ts"`            // TIME INDEX
}

// EventRow is one append-only audit log record. It doubles as the in-memory
// log entry and the row shape handed to event writers.
type EventRow struct {
	ID         string    `json:"id"`
	ConsoleID  string    `json:"console_id"` // TAG
	Category   string    `json:"category"`   // TAG
	IncidentID string    `json:"incident_id,omitempty"`
	Actor      string    `json:"actor"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"ts"` // TIME INDEX
}

// AlertRow is the writer row shape for anomaly alerts.
type AlertRow struct {
	ConsoleID   string    `json:"console_id"` // TAG
	AlertID     string    `json:"alert_id"`
	Key         string    `json:"key"` // TAG
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"ts"` // TIME INDEX
}

// TelemetryTableName holds the table name used when writing to GreptimeDB.
// It defaults to "drone_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "drone_telemetry"
}()

func (TelemetryRow) TableName() string {
	return TelemetryTableName
}

func (EventRow) TableName() string { return "console_events" }

func (AlertRow) TableName() string { return "console_alerts" }
