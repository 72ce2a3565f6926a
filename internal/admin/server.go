// Admin console: HTML overview plus the JSON API the dashboard polls.
package admin

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"responseops-sim/internal/auth"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/metrics"
	"responseops-sim/internal/report"
	"responseops-sim/internal/sim"
)

type Server struct {
	Sim        *sim.Simulator
	Collectors *metrics.Collectors
	tpl        *template.Template
	mux        *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

func NewServer(s *sim.Simulator, col *metrics.Collectors) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, Collectors: col, tpl: tpl, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/telemetry", s.handleTelemetry)
	s.mux.HandleFunc("/incidents", s.handleIncidents)
	s.mux.HandleFunc("/alerts", s.handleAlerts)
	s.mux.HandleFunc("/logs", s.handleLogs)
	s.mux.HandleFunc("/kpis", s.handleKPIs)
	s.mux.HandleFunc("/map-data", s.handleMapData)
	s.mux.HandleFunc("/gateway", s.handleGateway)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/logout", s.handleLogout)
	s.mux.HandleFunc("/dispatch", s.handleDispatch)
	s.mux.HandleFunc("/trigger-incident", s.handleTriggerIncident)
	s.mux.HandleFunc("/set-status", s.handleSetStatus)
	s.mux.HandleFunc("/auto-run", s.handleAutoRun)
	s.mux.HandleFunc("/cancel-run", s.handleCancelRun)
	s.mux.HandleFunc("/toggle-flag", s.handleToggleFlag)
	s.mux.HandleFunc("/ack-anomaly", s.handleAckAnomaly)
	s.mux.HandleFunc("/focus", s.handleFocus)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/pump", s.handlePump)
	s.mux.HandleFunc("/magnet", s.handleMagnet)
	s.mux.HandleFunc("/doctor", s.handleDoctor)
	s.mux.HandleFunc("/advisory", s.handleAdvisory)
	s.mux.HandleFunc("/false-positive", s.handleFalsePositive)
	s.mux.HandleFunc("/reports/export", s.handleReportExport)
	if s.Collectors != nil {
		s.mux.Handle("/metrics", s.Collectors.Handler())
	}
}

// Handler exposes the routed mux, for embedding and tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeErr maps simulator errors onto HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sim.ErrNoSession), errors.Is(err, sim.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, sim.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sim.ErrNoDrone):
		status = http.StatusConflict
	case errors.Is(err, sim.ErrUnknownRole):
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, loggedIn := s.Sim.Session()
	data := struct {
		Status    sim.StatusStrip
		KPIs      sim.KPIs
		Health    sim.FleetHealth
		Session   auth.Session
		LoggedIn  bool
		Incidents []incident.Incident
	}{
		Status:    s.Sim.Status(),
		KPIs:      s.Sim.KPIs(),
		Health:    s.Sim.Health(),
		Session:   sess,
		LoggedIn:  loggedIn,
		Incidents: s.Sim.Incidents(),
	}
	s.tpl.Execute(w, data)
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.TelemetrySnapshot())
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		inc, ok := s.Sim.Incident(id)
		if !ok {
			writeErr(w, sim.ErrNotFound)
			return
		}
		// Detail view carries the response playbook for the assist panel.
		writeJSON(w, struct {
			incident.Incident
			Playbook incident.Playbook `json:"playbook"`
		}{inc, incident.PlaybookFor(inc.Type)})
		return
	}
	writeJSON(w, s.Sim.Incidents())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Alerts())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, s.Sim.Logs(limit))
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.KPIs())
}

func (s *Server) handleMapData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.MapSnapshot())
}

func (s *Server) handleGateway(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Gateway())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Status())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	role, ok := auth.NormalizeRole(r.URL.Query().Get("role"))
	if !ok {
		writeErr(w, fmt.Errorf("%w: %q", sim.ErrUnknownRole, r.URL.Query().Get("role")))
		return
	}
	sess, err := s.Sim.Login(role, r.URL.Query().Get("name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sim.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	droneID, err := s.Sim.Dispatch(r.URL.Query().Get("incident"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"drone": droneID})
}

func (s *Server) handleTriggerIncident(w http.ResponseWriter, r *http.Request) {
	inc, err := s.Sim.CreateIncident(r.URL.Query().Get("type"), incident.Severity(r.URL.Query().Get("severity")))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, inc)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := s.Sim.SetStatus(q.Get("incident"), incident.Status(q.Get("status")), q.Get("note"))
	if err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAutoRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Sim.RunScenario(); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	s.Sim.CancelScenario()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleFlag(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	on, _ := strconv.ParseBool(q.Get("on"))
	if err := s.Sim.SetFlag(q.Get("flag"), on); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, s.Sim.Flags())
}

func (s *Server) handleAckAnomaly(w http.ResponseWriter, r *http.Request) {
	if err := s.Sim.AckAnomaly(r.URL.Query().Get("id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	s.Sim.FocusIncident(r.URL.Query().Get("incident"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Sim.CaptureSnapshot(r.URL.Query().Get("incident"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handlePump(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		writeErr(w, fmt.Errorf("bad pump value %q", q.Get("value")))
		return
	}
	if err := s.Sim.SetPumpPressure(q.Get("drone"), value); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMagnet(w http.ResponseWriter, r *http.Request) {
	on, err := s.Sim.TogglePayloadMagnet(r.URL.Query().Get("incident"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]bool{"magnet": on})
}

func (s *Server) handleDoctor(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.Sim.SendDoctorInstructions(q.Get("incident"), q.Get("text")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvisory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := s.Sim.PushHazardAdvisory(q.Get("incident"), q.Get("text")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFalsePositive(w http.ResponseWriter, r *http.Request) {
	if err := s.Sim.MarkFalsePositive(r.URL.Query().Get("incident")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	s.Sim.RecordAPI("/reports/export", "GET", 200)
	op := report.FromSimulator(s.Sim, time.Now())
	switch r.URL.Query().Get("format") {
	case "xlsx":
		blob, err := report.BuildOperationsXLSX(op)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="operations-report.xlsx"`)
		w.Write(blob)
	default:
		blob, err := report.BuildOperationsPDF(op)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="operations-report.pdf"`)
		w.Write(blob)
	}
}
