package sim

import (
	"testing"

	"responseops-sim/internal/telemetry"
)

// plainWriter only implements the base telemetry interface.
type plainWriter struct {
	rows []telemetry.TelemetryRow
}

func (p *plainWriter) Write(row telemetry.TelemetryRow) error {
	p.rows = append(p.rows, row)
	return nil
}

type batchCapableWriter struct {
	MockWriter
	batches int
}

func (b *batchCapableWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	b.batches++
	b.Rows = append(b.Rows, rows...)
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	plain := &plainWriter{}
	full := &MockWriter{}
	mw := NewMultiWriter(plain, full)

	row := telemetry.TelemetryRow{DroneID: "DR-101"}
	if err := mw.Write(row); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(plain.rows) != 1 || len(full.Rows) != 1 {
		t.Fatalf("row not fanned out: plain=%d full=%d", len(plain.rows), len(full.Rows))
	}

	// Events and alerts only reach writers that accept them.
	if err := mw.WriteEvent(telemetry.EventRow{ID: "LOG-1"}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if err := mw.WriteAlert(telemetry.AlertRow{AlertID: "ANOM-1"}); err != nil {
		t.Fatalf("WriteAlert: %v", err)
	}
	if len(full.Events) != 1 || len(full.Alerts) != 1 {
		t.Fatalf("event/alert not forwarded: %d/%d", len(full.Events), len(full.Alerts))
	}
}

func TestMultiWriterBatchMode(t *testing.T) {
	plain := &plainWriter{}
	batch := &batchCapableWriter{}
	mw := NewMultiWriter(plain, batch)

	rows := []telemetry.TelemetryRow{{DroneID: "DR-101"}, {DroneID: "DR-204"}}
	if err := mw.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if batch.batches != 1 {
		t.Errorf("batch-capable writer got %d batch calls, want 1", batch.batches)
	}
	if len(batch.Rows) != 2 {
		t.Errorf("batch writer rows = %d, want 2", len(batch.Rows))
	}
	if len(plain.rows) != 2 {
		t.Errorf("plain writer rows = %d, want per-row fallback of 2", len(plain.rows))
	}
}
