package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"responseops-sim/internal/config"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/metrics"
	"responseops-sim/internal/sim"
	"responseops-sim/internal/telemetry"
)

func newTestServer(t *testing.T) (*Server, *sim.Simulator) {
	t.Helper()
	simulator := sim.NewSimulator(config.Default(), nil, nil, time.Second, nil)
	return NewServer(simulator, nil), simulator
}

func login(t *testing.T, server *Server) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login?role=operator", nil)
	w := httptest.NewRecorder()
	server.handleLogin(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("login failed: %v", w.Result().Status)
	}
}

func TestHandleTelemetry(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/telemetry", nil)
	w := httptest.NewRecorder()
	server.handleTelemetry(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	var rows []telemetry.TelemetryRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 telemetry rows, got %d", len(rows))
	}
}

func TestHandleIncidentDetailIncludesPlaybook(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/incidents?id=INC123", nil)
	w := httptest.NewRecorder()
	server.handleIncidents(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Result().StatusCode)
	}
	var detail struct {
		ID       string            `json:"id"`
		Playbook incident.Playbook `json:"playbook"`
	}
	if err := json.NewDecoder(w.Result().Body).Decode(&detail); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if detail.ID != "INC123" {
		t.Errorf("detail id = %q, want INC123", detail.ID)
	}
	want := incident.PlaybookFor(incident.TypeTraffic)
	if detail.Playbook.Tone != want.Tone {
		t.Errorf("playbook tone = %q, want %q", detail.Playbook.Tone, want.Tone)
	}
	if len(detail.Playbook.Checklist) == 0 || len(detail.Playbook.Next) == 0 {
		t.Errorf("playbook missing checklist or next steps: %+v", detail.Playbook)
	}
}

func TestHandleLoginRejectsUnknownRole(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login?role=warlord", nil)
	w := httptest.NewRecorder()
	server.handleLogin(w, req)
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("expected status BadRequest, got %v", w.Result().StatusCode)
	}
}

func TestHandleDispatchRequiresSession(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/dispatch?incident=INC123", nil)
	w := httptest.NewRecorder()
	server.handleDispatch(w, req)
	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("expected status Forbidden, got %v", w.Result().StatusCode)
	}
}

func TestHandleDispatchFlow(t *testing.T) {
	server, simulator := newTestServer(t)
	login(t, server)

	// Trigger a fresh incident, then dispatch it.
	req := httptest.NewRequest(http.MethodPost, "/trigger-incident?type=Medical+Emergency&severity=High", nil)
	w := httptest.NewRecorder()
	server.handleTriggerIncident(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("trigger failed: %v", w.Result().Status)
	}
	var inc struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(w.Result().Body).Decode(&inc); err != nil {
		t.Fatalf("decode incident: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/dispatch?incident="+inc.ID, nil)
	w = httptest.NewRecorder()
	server.handleDispatch(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("dispatch failed: %v", w.Result().Status)
	}
	var out map[string]string
	if err := json.NewDecoder(w.Result().Body).Decode(&out); err != nil {
		t.Fatalf("decode dispatch: %v", err)
	}
	if out["drone"] == "" {
		t.Errorf("expected an assigned drone id")
	}
	got, ok := simulator.Incident(inc.ID)
	if !ok || got.AssignedDroneID != out["drone"] {
		t.Errorf("incident assignment mismatch: %+v vs %v", got, out)
	}
}

func TestHandleDispatchUnknownIncident(t *testing.T) {
	server, _ := newTestServer(t)
	login(t, server)

	req := httptest.NewRequest(http.MethodPost, "/dispatch?incident=INC999", nil)
	w := httptest.NewRecorder()
	server.handleDispatch(w, req)
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("expected status NotFound, got %v", w.Result().StatusCode)
	}
}

func TestHandleToggleFlag(t *testing.T) {
	server, simulator := newTestServer(t)
	login(t, server)

	req := httptest.NewRequest(http.MethodPost, "/toggle-flag?flag=networkDegraded&on=true", nil)
	w := httptest.NewRecorder()
	server.handleToggleFlag(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("toggle failed: %v", w.Result().Status)
	}
	if !simulator.Flags().NetworkDegraded {
		t.Errorf("flag not applied")
	}

	req = httptest.NewRequest(http.MethodPost, "/toggle-flag?flag=chaos&on=true", nil)
	w = httptest.NewRecorder()
	server.handleToggleFlag(w, req)
	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("unknown flag: expected status 500, got %v", w.Result().StatusCode)
	}
}

func TestHandleMapData(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/map-data", nil)
	w := httptest.NewRecorder()
	server.handleMapData(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	var data sim.MapData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(data.Drones) != 3 {
		t.Errorf("expected 3 drones, got %d", len(data.Drones))
	}
	if len(data.Incidents) != 2 {
		t.Errorf("expected 2 incidents, got %d", len(data.Incidents))
	}
}

func TestHandleReportExport(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/reports/export?format=pdf", nil)
	w := httptest.NewRecorder()
	server.handleReportExport(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %s, want application/pdf", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/export?format=xlsx", nil)
	w = httptest.NewRecorder()
	server.handleReportExport(w, req)
	resp = w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK for xlsx, got %v", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheet") {
		t.Errorf("content type = %s, want spreadsheet", ct)
	}
}

func TestHandleIndexRenders(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.handleIndex(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Result().StatusCode)
	}
	body := w.Body.String()
	if !strings.Contains(body, "INC123") {
		t.Errorf("dashboard missing seeded incident: %s", body)
	}
}

func TestMetricsRoute(t *testing.T) {
	col := metrics.New()
	simulator := sim.NewSimulator(config.Default(), nil, nil, time.Second, col)
	server := NewServer(simulator, col)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Result().StatusCode)
	}
	if !strings.Contains(w.Body.String(), "responseops_") {
		t.Errorf("expected responseops metrics in scrape output")
	}
}
