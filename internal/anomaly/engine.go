// Deduplicated, keyed anomaly alerting with an Open/Resolved lifecycle
package anomaly

import (
	"time"

	"github.com/google/uuid"
)

// Severity of an alert.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Status of an alert.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusResolved Status = "Resolved"
)

// Alert represents one abnormal condition. Key is stable per alert class
// (for example per-drone battery), so repeated triggers refresh the open
// alert instead of duplicating it.
type Alert struct {
	ID          string     `json:"id"`
	Key         string     `json:"key"`
	Time        time.Time  `json:"time"`
	Type        string     `json:"type"`
	Severity    Severity   `json:"severity"`
	Status      Status     `json:"status"`
	Description string     `json:"description"`
	Response    string     `json:"response"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Engine maintains the alert list. It is not safe for concurrent use; the
// simulator serializes access behind its own lock.
type Engine struct {
	alerts []*Alert
	now    func() time.Time
	newID  func() string
}

// NewEngine creates an empty alert engine.
func NewEngine() *Engine {
	return &Engine{
		now:   time.Now,
		newID: func() string { return "ANOM-" + uuid.New().String() },
	}
}

// SetClock overrides the engine clock, for tests.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Restore replaces the alert list, used when loading a persisted snapshot.
func (e *Engine) Restore(alerts []*Alert) { e.alerts = alerts }

// Raise opens an alert for key, or refreshes the already-open one. At most
// one Open alert exists per key at any time. The returned bool is true when
// a new alert entity was created.
func (e *Engine) Raise(key, typ string, severity Severity, description, response string) (*Alert, bool) {
	if a := e.openByKey(key); a != nil {
		a.Time = e.now()
		a.Description = description
		a.Response = response
		return a, false
	}
	a := &Alert{
		ID:          e.newID(),
		Key:         key,
		Time:        e.now(),
		Type:        typ,
		Severity:    severity,
		Status:      StatusOpen,
		Description: description,
		Response:    response,
	}
	e.alerts = append([]*Alert{a}, e.alerts...)
	return a, true
}

// Resolve marks the Open alert with key as Resolved. It reports whether an
// alert was found.
func (e *Engine) Resolve(key string) bool {
	a := e.openByKey(key)
	if a == nil {
		return false
	}
	e.close(a)
	return true
}

// ResolveID resolves an Open alert by id. This is the operator
// acknowledgment path; authorization is checked by the caller.
func (e *Engine) ResolveID(id string) *Alert {
	for _, a := range e.alerts {
		if a.ID == id && a.Status == StatusOpen {
			e.close(a)
			return a
		}
	}
	return nil
}

func (e *Engine) close(a *Alert) {
	t := e.now()
	a.Status = StatusResolved
	a.ResolvedAt = &t
}

func (e *Engine) openByKey(key string) *Alert {
	for _, a := range e.alerts {
		if a.Key == key && a.Status == StatusOpen {
			return a
		}
	}
	return nil
}

// All returns every alert, newest first.
func (e *Engine) All() []*Alert { return e.alerts }

// OpenCount returns the number of Open alerts.
func (e *Engine) OpenCount() int {
	n := 0
	for _, a := range e.alerts {
		if a.Status == StatusOpen {
			n++
		}
	}
	return n
}

// OpenMatching counts Open alerts whose key satisfies the predicate.
func (e *Engine) OpenMatching(match func(key string) bool) int {
	n := 0
	for _, a := range e.alerts {
		if a.Status == StatusOpen && match(a.Key) {
			n++
		}
	}
	return n
}
