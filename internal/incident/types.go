// Incident model for the emergency-response lifecycle
package incident

import (
	"time"

	"responseops-sim/internal/telemetry"
)

// Status is the incident lifecycle state.
type Status string

// Lifecycle states. StatusClosed is recognized by metrics but is never
// produced by the simulation itself; it is reachable only through an
// external archival collaborator.
const (
	StatusAlerted    Status = "Alerted"
	StatusDispatched Status = "Dispatched"
	StatusEnRoute    Status = "En Route"
	StatusOnScene    Status = "On Scene"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Severity is a totally ordered incident severity.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Score maps a severity to its fixed ranking weight.
func (s Severity) Score() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// TimelineEntry is one append-only lifecycle record.
type TimelineEntry struct {
	Time   time.Time `json:"time"`
	Status Status    `json:"status"`
	Note   string    `json:"note"`
}

// TranscriptLine is one comms feed line attached to an incident.
type TranscriptLine struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// RecognitionHit records a simulated face-recognition match.
type RecognitionHit struct {
	Name       string    `json:"name"`
	BadgeID    string    `json:"badge_id"`
	Confidence float64   `json:"confidence"`
	Time       time.Time `json:"time"`
}

// Snapshot is one captured evidence frame.
type Snapshot struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Time      time.Time `json:"time"`
	FrameHash string    `json:"frame_hash"`
}

// Incident is a reported emergency event tracked through a fixed lifecycle.
// AssignedDroneID is a weak reference; the drone is looked up by id and never
// owned by the incident.
type Incident struct {
	ID              string             `json:"id"`
	Type            string             `json:"type"`
	Severity        Severity           `json:"severity"`
	Position        telemetry.Position `json:"position"`
	LocationName    string             `json:"location_name"`
	CreatedAt       time.Time          `json:"created_at"`
	Status          Status             `json:"status"`
	AssignedDroneID string             `json:"assigned_drone_id,omitempty"`
	Recognized      []RecognitionHit   `json:"recognized"`
	Transcript      []TranscriptLine   `json:"transcript"`
	Timeline        []TimelineEntry    `json:"timeline"`
	Snapshots       []Snapshot         `json:"snapshots"`
	PayloadMagnetOn bool               `json:"payload_magnet_on"`
	FalsePositive   bool               `json:"false_positive"`
	HeatLevel       float64            `json:"heat_level"`
}

// Terminal reports whether the incident has left the active lifecycle.
func (i *Incident) Terminal() bool {
	return i.Status == StatusResolved || i.Status == StatusClosed
}

// AdvanceStatus applies a status transition with duplicate suppression:
// writing the current status again is a no-op and leaves the timeline
// untouched. It returns whether the timeline was mutated. Callers go through
// the simulator's SetStatus so that log and drone-release side effects stay
// attached to the transition.
func (i *Incident) AdvanceStatus(now time.Time, next Status, note string) bool {
	if i.Status == next {
		return false
	}
	if note == "" {
		note = "Status update"
	}
	i.Status = next
	i.Timeline = append(i.Timeline, TimelineEntry{Time: now, Status: next, Note: note})
	return true
}

// ResponseMinutes returns the minutes between the first Alerted and first
// On Scene timeline entries, or nil when either is missing or out of order.
func (i *Incident) ResponseMinutes() *float64 {
	var alerted, onScene *time.Time
	for idx := range i.Timeline {
		e := &i.Timeline[idx]
		switch {
		case e.Status == StatusAlerted && alerted == nil:
			alerted = &e.Time
		case e.Status == StatusOnScene && onScene == nil:
			onScene = &e.Time
		}
	}
	if alerted == nil || onScene == nil || onScene.Before(*alerted) {
		return nil
	}
	m := onScene.Sub(*alerted).Minutes()
	return &m
}
