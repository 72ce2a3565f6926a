package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"responseops-sim/internal/anomaly"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/logging"
	"responseops-sim/internal/telemetry"
)

// Run drives the simulation loop until the context is canceled.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	log.Info("simulation loop started", "interval", s.tickInterval.String(), "console", s.consoleID)
	for {
		select {
		case <-ctx.Done():
			log.Info("simulation loop stopped")
			return
		case <-ticker.C:
			s.Tick(log)
		}
	}
}

// Tick advances the whole console by one step: backup schedule, drone
// physics and thresholds, the comms feed, and finally the writer flush.
// Writer I/O happens outside the lock.
func (s *Simulator) Tick(log *slog.Logger) {
	s.mu.Lock()
	s.backupTickLocked()
	s.droneTickLocked()
	s.feedTickLocked()
	rows := s.telemetryRowsLocked()
	events := s.pendingEvents
	alerts := s.pendingAlerts
	s.pendingEvents = nil
	s.pendingAlerts = nil
	var dash *DashboardRow
	if _, ok := s.writer.(dashboardWriter); ok {
		dash = &DashboardRow{Strip: s.statusLocked(), KPIs: s.kpisLocked()}
		for _, i := range s.incidents {
			dash.Incidents = append(dash.Incidents, *i)
		}
	}
	if s.collectors != nil {
		s.collectors.Ticks.Inc()
		s.collectors.OpenAlerts.Set(float64(s.alerts.OpenCount()))
	}
	s.mu.Unlock()

	s.emit(log, rows, events, alerts)
	if dash != nil {
		if dw, ok := s.writer.(dashboardWriter); ok {
			if err := dw.WriteDashboard(*dash); err != nil {
				log.Error("dashboard write failed", "err", err)
				s.writerError()
			}
		}
	}
}

// DashboardRow is the per-tick aggregate pushed to dashboard-capable
// writers such as the TUI.
type DashboardRow struct {
	Strip     StatusStrip
	Incidents []incident.Incident
	KPIs      KPIs
}

// Optional: writers can render the aggregate dashboard state.
type dashboardWriter interface {
	WriteDashboard(DashboardRow) error
}

func (s *Simulator) emit(log *slog.Logger, rows []telemetry.TelemetryRow, events []telemetry.EventRow, alerts []telemetry.AlertRow) {
	if s.writer == nil {
		return
	}
	if bw, ok := s.writer.(batchWriter); ok {
		if err := bw.WriteBatch(rows); err != nil {
			log.Error("telemetry batch write failed", "err", err)
			s.writerError()
		}
	} else {
		for _, row := range rows {
			if err := s.writer.Write(row); err != nil {
				log.Error("telemetry write failed", "drone", row.DroneID, "err", err)
				s.writerError()
			}
		}
	}
	if s.collectors != nil {
		s.collectors.TelemetryRows.Add(float64(len(rows)))
	}
	if ew, ok := s.writer.(EventWriter); ok {
		for _, ev := range events {
			if err := ew.WriteEvent(ev); err != nil {
				log.Error("event write failed", "err", err)
				s.writerError()
			}
		}
	}
	if aw, ok := s.writer.(AlertWriter); ok {
		for _, al := range alerts {
			if err := aw.WriteAlert(al); err != nil {
				log.Error("alert write failed", "err", err)
				s.writerError()
			}
		}
	}
}

func (s *Simulator) writerError() {
	if s.collectors != nil {
		s.collectors.WriterErrors.Inc()
	}
}

func (s *Simulator) droneTickLocked() {
	for _, d := range s.drones {
		if s.mover.Advance(d) && d.Target != nil {
			s.handleArrivalLocked(d)
		}
		if d.Status == telemetry.StatusEnRoute && d.Target != nil && d.Target.IncidentID != "" {
			if inc := s.incidentByIDLocked(d.Target.IncidentID); inc != nil && inc.Status == incident.StatusDispatched {
				s.setIncidentStatusLocked(inc, incident.StatusEnRoute, fmt.Sprintf("%s en route to %s", d.ID, inc.LocationName))
			}
		}
		s.mover.StepBattery(d)
		inc := s.assignedIncidentLocked(d.ID)
		forceHeat := s.flags.HighHeat ||
			(inc != nil && d.Status == telemetry.StatusOnScene && inc.HeatLevel >= s.mover.Params.HeatFloor)
		s.mover.StepSensors(d, s.flags.MotionDetected, forceHeat)
		s.batteryThresholdsLocked(d)
	}
}

// batteryThresholdsLocked evaluates battery alert and disconnect thresholds
// for one drone. Alert keys are per drone, so a condition that persists
// across ticks refreshes its open alert instead of flooding the board.
func (s *Simulator) batteryThresholdsLocked(d *telemetry.Drone) {
	p := s.mover.Params
	if d.Status != telemetry.StatusDisconnected && d.Battery <= p.CriticalBattery {
		d.Status = telemetry.StatusDisconnected
		d.Target = nil
		s.raiseLocked("disconnect-"+d.ID, "Connectivity", anomaly.SeverityHigh,
			fmt.Sprintf("%s lost link at %.1f%% battery.", d.ID, d.Battery),
			"Attempting encrypted channel re-handshake; last known position held on map.")
		s.logLocked("anomaly", fmt.Sprintf("%s disconnected: battery critically low.", d.ID), "", "System")
		return
	}
	if d.Status == telemetry.StatusDisconnected {
		return
	}
	if d.Battery <= p.LowBattery {
		s.raiseLocked("battery-"+d.ID, "Battery", anomaly.SeverityMedium,
			fmt.Sprintf("%s battery at %.1f%%, recall threshold reached.", d.ID, d.Battery),
			"Return-to-base planned; reserve drone ranked for takeover.")
	}
}

// handleArrivalLocked finishes a movement leg. Incident legs flip the drone
// and the incident to On Scene; empty-incident legs are return-to-base.
// Arrival at a resolved or vanished incident changes nothing: the drone
// keeps loitering until the operator re-tasks it.
func (s *Simulator) handleArrivalLocked(d *telemetry.Drone) {
	target := d.Target
	if target.IncidentID == "" {
		d.Target = nil
		d.Status = telemetry.StatusIdle
		s.logLocked("dispatch", fmt.Sprintf("%s returned to base and entered charge cycle.", d.ID), "", "System")
		return
	}
	inc := s.incidentByIDLocked(target.IncidentID)
	if inc == nil || inc.Terminal() {
		return
	}
	d.Target = nil
	d.Status = telemetry.StatusOnScene
	s.setIncidentStatusLocked(inc, incident.StatusOnScene, fmt.Sprintf("%s on scene at %s.", d.ID, inc.LocationName))
}

func (s *Simulator) assignedIncidentLocked(droneID string) *incident.Incident {
	for _, i := range s.incidents {
		if i.AssignedDroneID == droneID && !i.Terminal() {
			return i
		}
	}
	return nil
}

// feedTickLocked injects a canned comms line into the active incident with
// the configured per-tick probability.
func (s *Simulator) feedTickLocked() {
	if s.rng.Float64() >= s.cfg.FeedProbability {
		return
	}
	inc := s.activeIncidentLocked()
	if inc == nil || inc.Terminal() {
		return
	}
	lines := incident.FeedLines()
	inc.Transcript = append(inc.Transcript, incident.TranscriptLine{
		Time: s.now(),
		Text: lines[s.rng.Intn(len(lines))],
	})
}

func (s *Simulator) backupTickLocked() {
	interval := time.Duration(s.cfg.BackupIntervalHours) * time.Hour
	if interval <= 0 || s.now().Sub(s.backupAt) < interval {
		return
	}
	s.backupAt = s.now()
	s.saveSnapshotLocked()
	s.recordAPILocked("/backup/run", "POST", 200)
	s.logLocked("system", "Encrypted state backup completed and verified.", "", "System")
}

// raiseLocked opens or refreshes an alert and, on creation, queues the
// writer row and bumps metrics.
func (s *Simulator) raiseLocked(key, typ string, sev anomaly.Severity, desc, resp string) *anomaly.Alert {
	a, created := s.alerts.Raise(key, typ, sev, desc, resp)
	if created {
		if s.collectors != nil {
			s.collectors.AnomaliesRaised.WithLabelValues(string(sev)).Inc()
		}
		s.pendingAlerts = append(s.pendingAlerts, telemetry.AlertRow{
			ConsoleID:   s.consoleID,
			AlertID:     a.ID,
			Key:         a.Key,
			Type:        a.Type,
			Severity:    string(a.Severity),
			Status:      string(a.Status),
			Description: a.Description,
			Timestamp:   a.Time,
		})
	}
	return a
}
