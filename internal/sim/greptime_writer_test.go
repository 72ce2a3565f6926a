package sim

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"responseops-sim/internal/telemetry"
)

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterTelemetryBatch(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.TelemetryRow{
		{
			ConsoleID:    "c1",
			DroneID:      "DR-101",
			Lat:          8.98,
			Lng:          38.75,
			Battery:      92,
			Temp:         34,
			PumpPressure: 0,
			Motion:       true,
			Status:       telemetry.StatusIdle,
			Timestamp:    ts,
		},
		{
			ConsoleID: "c1",
			DroneID:   "DR-204",
			Battery:   78,
			Status:    telemetry.StatusOnScene,
			Timestamp: ts,
		},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, teleTable: "drone_telemetry"}

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	if got := len(m.table.GetRows().Rows); got != 2 {
		t.Fatalf("row count = %d, want 2", got)
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 10 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[7].Datatype != gpb.ColumnDataType_BOOLEAN {
		t.Fatalf("motion column type = %v, want %v", schema[7].Datatype, gpb.ColumnDataType_BOOLEAN)
	}

	values := m.table.GetRows().Rows[0].Values
	if got := values[1].GetStringValue(); got != "DR-101" {
		t.Fatalf("drone_id = %s, want DR-101", got)
	}
	if got := values[8].GetStringValue(); got != "Idle" {
		t.Fatalf("status = %s, want Idle", got)
	}
}

func TestGreptimeWriterEvents(t *testing.T) {
	row := telemetry.EventRow{
		ID:         "LOG-1",
		ConsoleID:  "c1",
		Category:   "dispatch",
		IncidentID: "INC123",
		Actor:      "Omar",
		Message:    "DR-101 dispatched",
		Timestamp:  time.Unix(0, 0).UTC(),
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, eventTable: "console_events"}

	if err := w.WriteEvent(row); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	values := m.table.GetRows().Rows[0].Values
	if got := values[1].GetStringValue(); got != "dispatch" {
		t.Fatalf("category = %s, want dispatch", got)
	}
	if got := values[5].GetStringValue(); got != "DR-101 dispatched" {
		t.Fatalf("message = %s, want the log line", got)
	}
}

func TestGreptimeWriterAlerts(t *testing.T) {
	row := telemetry.AlertRow{
		ConsoleID:   "c1",
		AlertID:     "ANOM-1",
		Key:         "battery-DR-101",
		Type:        "Battery",
		Severity:    "Medium",
		Status:      "Open",
		Description: "battery low",
		Timestamp:   time.Unix(0, 0).UTC(),
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, alertTable: "console_alerts"}

	if err := w.WriteAlert(row); err != nil {
		t.Fatalf("WriteAlert: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	values := m.table.GetRows().Rows[0].Values
	if got := values[1].GetStringValue(); got != "battery-DR-101" {
		t.Fatalf("key = %s, want battery-DR-101", got)
	}
	if got := values[4].GetStringValue(); got != "Medium" {
		t.Fatalf("severity = %s, want Medium", got)
	}
}
