// Operations report export in PDF and XLSX formats
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"responseops-sim/internal/anomaly"
	"responseops-sim/internal/incident"
	"responseops-sim/internal/sim"
)

// Operations is the assembled report input: console identity, derived
// metrics, and the incident and alert boards at generation time.
type Operations struct {
	ConsoleID   string
	GeneratedAt time.Time
	KPIs        sim.KPIs
	Incidents   []incident.Incident
	Alerts      []anomaly.Alert
}

// BuildOperationsPDF renders the operations report as a PDF.
func BuildOperationsPDF(op *Operations) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Emergency Response Operations Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Console: %s", op.ConsoleID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", op.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Average response time (min): %.1f", op.KPIs.AvgResponseMinutes))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Incidents handled: %d", op.KPIs.IncidentsHandled))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Active incidents: %d", op.KPIs.ActiveIncidents))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Drone uptime: %.1f%%", op.KPIs.UptimePercent))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("False positives: %d", op.KPIs.FalsePositives))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Open alerts: %d", op.KPIs.OpenAlerts))
	pdf.Ln(8)

	// Incident table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(22, 6, "ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(58, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Severity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 6, "Resp (min)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(44, 6, "Location", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i := range op.Incidents {
		inc := &op.Incidents[i]
		resp := "-"
		if m := inc.ResponseMinutes(); m != nil {
			resp = fmt.Sprintf("%.1f", *m)
		}
		pdf.CellFormat(22, 6, inc.ID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(58, 6, inc.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, string(inc.Severity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, string(inc.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 6, resp, "1", 0, "R", false, 0, "")
		pdf.CellFormat(44, 6, inc.LocationName, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	// Alert table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Severity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "Description", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i := range op.Alerts {
		a := &op.Alerts[i]
		pdf.CellFormat(30, 6, a.Time.Format("15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, a.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, string(a.Severity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, string(a.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 6, a.Description, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildOperationsXLSX renders the operations report as an XLSX workbook.
func BuildOperationsXLSX(op *Operations) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	incidentSheet := "incidents"
	alertSheet := "alerts"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(incidentSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(alertSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Emergency Response Operations Report")
	_ = f.SetCellValue(summarySheet, "A3", "Console")
	_ = f.SetCellValue(summarySheet, "B3", op.ConsoleID)
	_ = f.SetCellValue(summarySheet, "A4", "Generated")
	_ = f.SetCellValue(summarySheet, "B4", op.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Average response time (min)")
	_ = f.SetCellValue(summarySheet, "B5", op.KPIs.AvgResponseMinutes)
	_ = f.SetCellValue(summarySheet, "A6", "Incidents handled")
	_ = f.SetCellValue(summarySheet, "B6", op.KPIs.IncidentsHandled)
	_ = f.SetCellValue(summarySheet, "A7", "Active incidents")
	_ = f.SetCellValue(summarySheet, "B7", op.KPIs.ActiveIncidents)
	_ = f.SetCellValue(summarySheet, "A8", "Drone uptime (%)")
	_ = f.SetCellValue(summarySheet, "B8", op.KPIs.UptimePercent)
	_ = f.SetCellValue(summarySheet, "A9", "False positives")
	_ = f.SetCellValue(summarySheet, "B9", op.KPIs.FalsePositives)
	_ = f.SetCellValue(summarySheet, "A10", "Open alerts")
	_ = f.SetCellValue(summarySheet, "B10", op.KPIs.OpenAlerts)

	_ = f.SetCellValue(incidentSheet, "A1", "ID")
	_ = f.SetCellValue(incidentSheet, "B1", "Type")
	_ = f.SetCellValue(incidentSheet, "C1", "Severity")
	_ = f.SetCellValue(incidentSheet, "D1", "Status")
	_ = f.SetCellValue(incidentSheet, "E1", "Created")
	_ = f.SetCellValue(incidentSheet, "F1", "Response (min)")
	_ = f.SetCellValue(incidentSheet, "G1", "Location")
	_ = f.SetCellValue(incidentSheet, "H1", "Assigned drone")
	for i := range op.Incidents {
		inc := &op.Incidents[i]
		row := i + 2
		_ = f.SetCellValue(incidentSheet, fmt.Sprintf("A%d", row), inc.ID)
		_ = f.SetCellValue(incidentSheet, fmt.Sprintf("B%d", row), inc.Type)
		_ = f.SetCellValue(incidentSheet, fmt.Sprintf("C%d", row), string(inc.Severity))
		_ = f.SetCellValue(incidentSheet, fmt.Sprintf("D%d", row), string(inc.Status))
		_ = f.SetCellValue(incidentSheet, fmt.Sprintf("E%d", row), inc.CreatedAt.Format(time.RFC3339))
		if m := inc.ResponseMinutes(); m != nil {
			_ = f.SetCellValue(incidentSheet, fmt.Sprintf("F%d", row), *m)
		}
		_ = f.SetCellValue(incidentSheet, fmt.Sprintf("G%d", row), inc.LocationName)
		_ = f.SetCellValue(incidentSheet, fmt.Sprintf("H%d", row), inc.AssignedDroneID)
	}

	_ = f.SetCellValue(alertSheet, "A1", "Time")
	_ = f.SetCellValue(alertSheet, "B1", "Type")
	_ = f.SetCellValue(alertSheet, "C1", "Severity")
	_ = f.SetCellValue(alertSheet, "D1", "Status")
	_ = f.SetCellValue(alertSheet, "E1", "Description")
	_ = f.SetCellValue(alertSheet, "F1", "Response")
	for i := range op.Alerts {
		a := &op.Alerts[i]
		row := i + 2
		_ = f.SetCellValue(alertSheet, fmt.Sprintf("A%d", row), a.Time.Format(time.RFC3339))
		_ = f.SetCellValue(alertSheet, fmt.Sprintf("B%d", row), a.Type)
		_ = f.SetCellValue(alertSheet, fmt.Sprintf("C%d", row), string(a.Severity))
		_ = f.SetCellValue(alertSheet, fmt.Sprintf("D%d", row), string(a.Status))
		_ = f.SetCellValue(alertSheet, fmt.Sprintf("E%d", row), a.Description)
		_ = f.SetCellValue(alertSheet, fmt.Sprintf("F%d", row), a.Response)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromSimulator assembles the report input from the live console.
func FromSimulator(s *sim.Simulator, now time.Time) *Operations {
	return &Operations{
		ConsoleID:   s.Config().ConsoleID,
		GeneratedAt: now,
		KPIs:        s.KPIs(),
		Incidents:   s.Incidents(),
		Alerts:      s.Alerts(),
	}
}
