package sim

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"responseops-sim/internal/telemetry"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	ts := time.Unix(0, 0).UTC()
	tRow := telemetry.TelemetryRow{
		ConsoleID:    "c1",
		DroneID:      "DR-101",
		Lat:          8.98,
		Lng:          38.75,
		Battery:      92,
		Temp:         34,
		PumpPressure: 20,
		Motion:       true,
		Status:       telemetry.StatusEnRoute,
		Timestamp:    ts,
	}
	eRow := telemetry.EventRow{ID: "LOG-1", ConsoleID: "c1", Category: "dispatch", Actor: "Omar", Message: "sent", Timestamp: ts}
	aRow := telemetry.AlertRow{ConsoleID: "c1", AlertID: "ANOM-1", Key: "battery-DR-101", Severity: "Medium", Timestamp: ts}

	telePath := filepath.Join(dir, "telemetry.json")
	eventPath := filepath.Join(dir, "events.json")
	alertPath := filepath.Join(dir, "alerts.json")

	fw, err := NewFileWriter(telePath, eventPath, alertPath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.Write(tRow); err != nil {
		t.Fatalf("write telemetry: %v", err)
	}
	if err := fw.WriteEvent(eRow); err != nil {
		t.Fatalf("write event: %v", err)
	}
	if err := fw.WriteAlert(aRow); err != nil {
		t.Fatalf("write alert: %v", err)
	}
	fw.Close()

	data, err := os.ReadFile(telePath)
	if err != nil {
		t.Fatalf("read telemetry file: %v", err)
	}
	var gotT telemetry.TelemetryRow
	if err := json.Unmarshal(data, &gotT); err != nil {
		t.Fatalf("decode telemetry: %v", err)
	}
	if gotT.Battery != tRow.Battery || gotT.Status != tRow.Status || !gotT.Motion {
		t.Fatalf("unexpected telemetry: %#v", gotT)
	}

	data, err = os.ReadFile(eventPath)
	if err != nil {
		t.Fatalf("read event file: %v", err)
	}
	var gotE telemetry.EventRow
	if err := json.Unmarshal(data, &gotE); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if gotE.Category != eRow.Category || gotE.Message != eRow.Message {
		t.Fatalf("unexpected event: %#v", gotE)
	}

	data, err = os.ReadFile(alertPath)
	if err != nil {
		t.Fatalf("read alert file: %v", err)
	}
	var gotA telemetry.AlertRow
	if err := json.Unmarshal(data, &gotA); err != nil {
		t.Fatalf("decode alert: %v", err)
	}
	if gotA.Key != aRow.Key || gotA.Severity != aRow.Severity {
		t.Fatalf("unexpected alert: %#v", gotA)
	}
}

func TestFileWriterOptionalStreams(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(filepath.Join(dir, "telemetry.json"), "", "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()
	if err := fw.WriteEvent(telemetry.EventRow{ID: "LOG-1"}); err != nil {
		t.Fatalf("event without stream: %v", err)
	}
	if err := fw.WriteAlert(telemetry.AlertRow{AlertID: "ANOM-1"}); err != nil {
		t.Fatalf("alert without stream: %v", err)
	}
}
