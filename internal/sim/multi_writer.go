package sim

import "responseops-sim/internal/telemetry"

// MultiWriter fans telemetry, event, and alert rows out to multiple writers.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...TelemetryWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a telemetry row to all writers.
func (mw *MultiWriter) Write(row telemetry.TelemetryRow) error {
	for _, w := range mw.writers {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple telemetry rows to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteEvent sends an event row to every writer that handles events.
func (mw *MultiWriter) WriteEvent(row telemetry.EventRow) error {
	for _, w := range mw.writers {
		if ew, ok := w.(EventWriter); ok {
			if err := ew.WriteEvent(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteDashboard forwards the dashboard aggregate to capable writers.
func (mw *MultiWriter) WriteDashboard(row DashboardRow) error {
	for _, w := range mw.writers {
		if dw, ok := w.(dashboardWriter); ok {
			if err := dw.WriteDashboard(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteAlert sends an alert row to every writer that handles alerts.
func (mw *MultiWriter) WriteAlert(row telemetry.AlertRow) error {
	for _, w := range mw.writers {
		if aw, ok := w.(AlertWriter); ok {
			if err := aw.WriteAlert(row); err != nil {
				return err
			}
		}
	}
	return nil
}
