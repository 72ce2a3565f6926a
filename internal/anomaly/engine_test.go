package anomaly

import (
	"strings"
	"testing"
	"time"
)

func newTestEngine() (*Engine, *time.Time) {
	e := NewEngine()
	now := time.Unix(5000, 0)
	e.SetClock(func() time.Time { return now })
	return e, &now
}

func TestRaise_DeduplicatesByKey(t *testing.T) {
	e, now := newTestEngine()

	first, created := e.Raise("battery-DR-1", "Drone low battery", SeverityMedium, "DR-1 battery below 15%.", "Recall drone.")
	if !created {
		t.Fatal("first raise did not create an alert")
	}

	*now = now.Add(time.Minute)
	second, created := e.Raise("battery-DR-1", "Drone low battery", SeverityMedium, "DR-1 battery below 14%.", "Recall drone.")
	if created {
		t.Fatal("re-raise while open created a duplicate")
	}
	if second.ID != first.ID {
		t.Fatalf("refreshed alert id = %s, want %s", second.ID, first.ID)
	}
	if second.Description != "DR-1 battery below 14%." {
		t.Errorf("description not refreshed: %q", second.Description)
	}
	if !second.Time.Equal(*now) {
		t.Errorf("timestamp not refreshed: %v", second.Time)
	}
	if e.OpenCount() != 1 {
		t.Errorf("open count = %d, want 1", e.OpenCount())
	}
}

func TestRaise_AfterResolveCreatesNewEntity(t *testing.T) {
	e, _ := newTestEngine()
	first, _ := e.Raise("network-degraded", "Network degraded", SeverityHigh, "packet loss", "switch to mesh")
	if !e.Resolve("network-degraded") {
		t.Fatal("resolve failed")
	}
	if first.Status != StatusResolved || first.ResolvedAt == nil {
		t.Fatalf("resolved alert = %+v", first)
	}

	second, created := e.Raise("network-degraded", "Network degraded", SeverityHigh, "packet loss", "switch to mesh")
	if !created || second.ID == first.ID {
		t.Fatal("raise after resolve should create a fresh entity")
	}
	if len(e.All()) != 2 {
		t.Errorf("alert count = %d, want 2", len(e.All()))
	}
}

func TestResolve_MissingKeyIsNoop(t *testing.T) {
	e, _ := newTestEngine()
	if e.Resolve("nothing-here") {
		t.Error("resolve of unknown key reported success")
	}
}

func TestResolveID(t *testing.T) {
	e, _ := newTestEngine()
	a, _ := e.Raise("sensor-spoof", "Sensor spoof attempt", SeverityMedium, "IMU pattern", "fallback profile")
	if got := e.ResolveID(a.ID); got == nil || got.Status != StatusResolved {
		t.Fatalf("ResolveID = %+v", got)
	}
	if e.ResolveID(a.ID) != nil {
		t.Error("second ResolveID on same alert should be a no-op")
	}
}

func TestOpenMatching(t *testing.T) {
	e, _ := newTestEngine()
	e.Raise("disconnect-DR-1", "Drone disconnect", SeverityHigh, "", "")
	e.Raise("disconnect-DR-2", "Drone disconnect", SeverityHigh, "", "")
	e.Raise("battery-DR-3", "Drone low battery", SeverityMedium, "", "")
	e.Resolve("disconnect-DR-2")

	got := e.OpenMatching(func(key string) bool { return strings.HasPrefix(key, "disconnect-") })
	if got != 1 {
		t.Errorf("open disconnects = %d, want 1", got)
	}
}
