package incident

import (
	"testing"
	"time"
)

func TestAdvanceStatus_DuplicateSuppressed(t *testing.T) {
	now := time.Unix(1000, 0)
	i := &Incident{ID: "INC1", Status: StatusAlerted, Timeline: []TimelineEntry{{Time: now, Status: StatusAlerted, Note: "intake"}}}

	if changed := i.AdvanceStatus(now.Add(time.Second), StatusAlerted, "again"); changed {
		t.Fatal("duplicate status write mutated the incident")
	}
	if len(i.Timeline) != 1 {
		t.Fatalf("timeline length = %d, want 1", len(i.Timeline))
	}

	if changed := i.AdvanceStatus(now.Add(time.Second), StatusDispatched, "drone assigned"); !changed {
		t.Fatal("expected transition to Dispatched")
	}
	if i.Status != StatusDispatched || len(i.Timeline) != 2 {
		t.Fatalf("status = %s, timeline length = %d", i.Status, len(i.Timeline))
	}
}

func TestAdvanceStatus_TimelineMonotonic(t *testing.T) {
	base := time.Unix(0, 0)
	i := &Incident{ID: "INC2", Status: StatusAlerted}
	steps := []Status{StatusAlerted, StatusDispatched, StatusEnRoute, StatusOnScene, StatusOnScene, StatusResolved}
	for n, st := range steps {
		i.AdvanceStatus(base.Add(time.Duration(n)*time.Minute), st, "")
	}
	for n := 1; n < len(i.Timeline); n++ {
		if i.Timeline[n].Time.Before(i.Timeline[n-1].Time) {
			t.Fatalf("timeline not monotone at %d", n)
		}
		if i.Timeline[n].Status == i.Timeline[n-1].Status {
			t.Fatalf("consecutive duplicate status %s at %d", i.Timeline[n].Status, n)
		}
	}
}

func TestResponseMinutes(t *testing.T) {
	base := time.Unix(0, 0)
	i := &Incident{
		ID: "INC3",
		Timeline: []TimelineEntry{
			{Time: base, Status: StatusAlerted},
			{Time: base.Add(5 * time.Minute), Status: StatusOnScene},
		},
	}
	got := i.ResponseMinutes()
	if got == nil || *got != 5.0 {
		t.Fatalf("ResponseMinutes = %v, want 5.0", got)
	}

	missing := &Incident{ID: "INC4", Timeline: []TimelineEntry{{Time: base, Status: StatusAlerted}}}
	if missing.ResponseMinutes() != nil {
		t.Error("expected nil for incident without On Scene entry")
	}

	malformed := &Incident{
		ID: "INC5",
		Timeline: []TimelineEntry{
			{Time: base.Add(time.Minute), Status: StatusAlerted},
			{Time: base, Status: StatusOnScene},
		},
	}
	if malformed.ResponseMinutes() != nil {
		t.Error("expected nil when On Scene precedes Alerted")
	}
}

func TestSeverityScoreOrdering(t *testing.T) {
	sevs := Severities()
	for n := 1; n < len(sevs); n++ {
		if sevs[n].Score() <= sevs[n-1].Score() {
			t.Fatalf("severity %s not ranked above %s", sevs[n], sevs[n-1])
		}
	}
}
