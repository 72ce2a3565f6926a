package report

import (
	"bytes"
	"testing"
	"time"

	"responseops-sim/internal/anomaly"
	"responseops-sim/internal/config"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/sim"

	"github.com/xuri/excelize/v2"
)

func testOperations() *Operations {
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	return &Operations{
		ConsoleID:   "otf-command-01",
		GeneratedAt: ts,
		KPIs: sim.KPIs{
			AvgResponseMinutes: 5,
			IncidentsHandled:   1,
			UptimePercent:      97.6,
			ActiveIncidents:    1,
		},
		Incidents: []incident.Incident{
			{
				ID:           "INC123",
				Type:         incident.TypeTraffic,
				Severity:     incident.SeverityHigh,
				Status:       incident.StatusResolved,
				CreatedAt:    ts.Add(-30 * time.Minute),
				LocationName: "Ring Road Junction",
				Timeline: []incident.TimelineEntry{
					{Time: ts.Add(-30 * time.Minute), Status: incident.StatusAlerted},
					{Time: ts.Add(-25 * time.Minute), Status: incident.StatusOnScene},
				},
			},
		},
		Alerts: []anomaly.Alert{
			{
				ID:          "ANOM-1",
				Key:         "battery-DR-101",
				Time:        ts,
				Type:        "Battery",
				Severity:    anomaly.SeverityMedium,
				Status:      anomaly.StatusOpen,
				Description: "battery low",
			},
		},
	}
}

func TestBuildOperationsPDF(t *testing.T) {
	blob, err := BuildOperationsPDF(testOperations())
	if err != nil {
		t.Fatalf("BuildOperationsPDF: %v", err)
	}
	if !bytes.HasPrefix(blob, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", blob[:4])
	}
}

func TestBuildOperationsXLSX(t *testing.T) {
	blob, err := BuildOperationsXLSX(testOperations())
	if err != nil {
		t.Fatalf("BuildOperationsXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("summary", "B3")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "otf-command-01" {
		t.Errorf("console cell = %q, want otf-command-01", got)
	}
	got, err = f.GetCellValue("incidents", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "INC123" {
		t.Errorf("incident cell = %q, want INC123", got)
	}
	got, err = f.GetCellValue("alerts", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "Battery" {
		t.Errorf("alert cell = %q, want Battery", got)
	}
}

func TestFromSimulator(t *testing.T) {
	s := sim.NewSimulator(config.Default(), nil, nil, time.Second, nil)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	op := FromSimulator(s, now)
	if op.ConsoleID != "otf-command-01" {
		t.Errorf("console id = %s", op.ConsoleID)
	}
	if len(op.Incidents) != 2 {
		t.Errorf("expected 2 seeded incidents, got %d", len(op.Incidents))
	}
	if op.GeneratedAt != now {
		t.Errorf("generated at = %v, want %v", op.GeneratedAt, now)
	}
}
