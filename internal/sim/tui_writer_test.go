package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"responseops-sim/internal/config"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p, droneColors: map[string]string{}}

	tRow := telemetry.TelemetryRow{ConsoleID: "c", DroneID: "DR-101", Timestamp: time.Unix(0, 0).UTC()}
	if err := w.Write(tRow); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := p.msgs[0].(telemetryMsg); !ok {
		t.Fatalf("expected telemetryMsg, got %T", p.msgs[0])
	}
	ev := telemetry.EventRow{Category: "dispatch", Actor: "Omar", Message: "sent", Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("event: %v", err)
	}
	lm, ok := p.msgs[1].(logMsg)
	if !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[1])
	}
	if !strings.Contains(lm.line, "dispatch") || !strings.Contains(lm.line, "sent") {
		t.Fatalf("log line missing fields: %s", lm.line)
	}
	al := telemetry.AlertRow{Type: "Battery", Severity: "High", Description: "low", Timestamp: time.Unix(0, 0).UTC()}
	if err := w.WriteAlert(al); err != nil {
		t.Fatalf("alert: %v", err)
	}
	am, ok := p.msgs[2].(alertMsg)
	if !ok {
		t.Fatalf("expected alertMsg, got %T", p.msgs[2])
	}
	if !strings.Contains(am.line, colorRed) {
		t.Fatalf("high severity alert not colored red: %s", am.line)
	}
	if err := w.WriteDashboard(DashboardRow{}); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if _, ok := p.msgs[3].(dashboardMsg); !ok {
		t.Fatalf("expected dashboardMsg, got %T", p.msgs[3])
	}
}

func TestTUIModelDashboardUpdates(t *testing.T) {
	cfg := config.Default()
	m := newTUIModel(cfg, map[string]string{})
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = mi.(tuiModel)

	dash := DashboardRow{
		Strip: StatusStrip{
			SystemHealth:    "Monitor",
			OpenAlerts:      2,
			Network:         "Degraded",
			ConnectedDrones: 2,
			TotalDrones:     3,
		},
		Incidents: []incident.Incident{
			{ID: "INC123", Type: incident.TypeTraffic, Severity: incident.SeverityHigh, Status: incident.StatusDispatched, AssignedDroneID: "DR-330", LocationName: "Ring Road Junction"},
		},
		KPIs: KPIs{UptimePercent: 97.6, AvgResponseMinutes: 5},
	}
	mi, _ = m.Update(dashboardMsg{dash})
	m = mi.(tuiModel)

	if !m.haveDash {
		t.Fatalf("dashboard state not applied")
	}
	if got := len(m.incTable.Rows()); got != 1 {
		t.Fatalf("incident table rows = %d, want 1", got)
	}
	strip := m.renderStrip()
	if !strings.Contains(strip, "alerts=2") || !strings.Contains(strip, "drones=2/3") {
		t.Fatalf("strip missing counters: %s", strip)
	}
	if !strings.Contains(strip, "uptime=97.6%") {
		t.Fatalf("strip missing uptime: %s", strip)
	}
}

func TestTUIModelWrapToggle(t *testing.T) {
	m := newTUIModel(config.Default(), map[string]string{})
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	m = mi.(tuiModel)

	long := "one two three four five six seven"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	lines := strings.Split(m.logVP.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.logVP.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestTUIModelScrollToggle(t *testing.T) {
	m := newTUIModel(config.Default(), nil)
	m.logVP.Height = 1
	m.logVP.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.logVP.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.logVP.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.logVP.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.logVP.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	if m.logVP.YOffset != len(m.logs)-m.logVP.Height {
		t.Fatalf("expected bottom offset, got %d", m.logVP.YOffset)
	}
}

func TestTUIModelFleetPanel(t *testing.T) {
	m := newTUIModel(config.Default(), map[string]string{"DR-101": colorGreen})
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mi.(tuiModel)
	mi, _ = m.Update(telemetryMsg{telemetry.TelemetryRow{
		DroneID: "DR-101", Battery: 92, Status: telemetry.StatusIdle,
	}})
	m = mi.(tuiModel)
	if !strings.Contains(m.header, "DR-101") {
		t.Fatalf("fleet panel missing drone: %s", m.header)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	m = mi.(tuiModel)
	if strings.Contains(m.header, "DR-101") {
		t.Fatalf("fleet panel still rendered after toggle")
	}
}
