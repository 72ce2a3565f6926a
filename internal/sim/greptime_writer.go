package sim

import (
	"context"
	"strconv"
	"strings"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"responseops-sim/internal/telemetry"
)

// greptimeClient is the slice of the ingester client the writer needs,
// kept narrow so tests can substitute a capture mock.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes telemetry, events, and alerts to GreptimeDB via
// the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	teleTable  string
	eventTable string
	alertTable string
}

// NewGreptimeDBWriter creates a GreptimeDB writer. The endpoint is
// "host[:port]"; the port defaults to the client's gRPC default.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, portStr, hasPort := strings.Cut(endpoint, ":")
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if hasPort {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg = cfg.WithPort(port)
		}
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:     client,
		teleTable:  telemetry.TelemetryTableName,
		eventTable: telemetry.EventRow{}.TableName(),
		alertTable: telemetry.AlertRow{}.TableName(),
	}, nil
}

// Write inserts a single telemetry row.
func (w *GreptimeDBWriter) Write(row telemetry.TelemetryRow) error {
	return w.WriteBatch([]telemetry.TelemetryRow{row})
}

// WriteBatch inserts multiple telemetry rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.teleTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("console_id", types.STRING)
	tbl.AddTagColumn("drone_id", types.STRING)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lng", types.FLOAT64)
	tbl.AddFieldColumn("battery", types.FLOAT64)
	tbl.AddFieldColumn("temp", types.FLOAT64)
	tbl.AddFieldColumn("pump_pressure", types.FLOAT64)
	tbl.AddFieldColumn("motion", types.BOOLEAN)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.ConsoleID, r.DroneID, r.Lat, r.Lng, r.Battery, r.Temp, r.PumpPressure, r.Motion, string(r.Status), r.Timestamp); err != nil {
			return err
		}
	}

	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteEvent inserts one audit event row.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.EventRow) error {
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("console_id", types.STRING)
	tbl.AddTagColumn("category", types.STRING)
	tbl.AddFieldColumn("id", types.STRING)
	tbl.AddFieldColumn("incident_id", types.STRING)
	tbl.AddFieldColumn("actor", types.STRING)
	tbl.AddFieldColumn("message", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(row.ConsoleID, row.Category, row.ID, row.IncidentID, row.Actor, row.Message, row.Timestamp); err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

// WriteAlert inserts one alert row.
func (w *GreptimeDBWriter) WriteAlert(row telemetry.AlertRow) error {
	tbl, err := table.New(w.alertTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("console_id", types.STRING)
	tbl.AddTagColumn("key", types.STRING)
	tbl.AddFieldColumn("alert_id", types.STRING)
	tbl.AddFieldColumn("type", types.STRING)
	tbl.AddFieldColumn("severity", types.STRING)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddFieldColumn("description", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	if err := tbl.AddRow(row.ConsoleID, row.Key, row.AlertID, row.Type, row.Severity, row.Status, row.Description, row.Timestamp); err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}
