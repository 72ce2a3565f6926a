// ColorStdoutWriter prints human-friendly, colorized console output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"responseops-sim/internal/config"
	"responseops-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints telemetry, events, and alerts using ANSI colors.
type ColorStdoutWriter struct {
	cfg         *config.ConsoleConfig
	out         io.Writer
	once        sync.Once
	droneColors map[string]string
	colorIdx    int
}

var dronePalette = []string{colorGreen, colorBlue, colorMagenta, colorCyan, colorYellow}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.ConsoleConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:         cfg,
		out:         os.Stdout,
		droneColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) getDroneColor(id string) string {
	if c, ok := w.droneColors[id]; ok {
		return c
	}
	c := dronePalette[w.colorIdx%len(dronePalette)]
	w.droneColors[id] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Console Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Console ID:\t%s\n", w.cfg.ConsoleID)
	fmt.Fprintf(tw, "Base:\t(%.4f, %.4f)\n", w.cfg.Base.Lat, w.cfg.Base.Lng)
	fmt.Fprintf(tw, "Geofence Radius (m):\t%.0f\n", w.cfg.GeofenceRadiusM)
	fmt.Fprintf(tw, "Backup Interval (h):\t%d\n", w.cfg.BackupIntervalHours)
	fmt.Fprintf(tw, "Feed Probability:\t%.2f\n", w.cfg.FeedProbability)
	tw.Flush()

	fmt.Fprintln(w.out, "\nFleet:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tStatus\tBattery\n")
	for _, d := range w.cfg.Drones {
		col := w.getDroneColor(d.ID)
		fmt.Fprintf(tw, "%s%s%s\t%s\t%.0f%%\n", col, d.ID, colorReset, d.Status, d.Battery)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single telemetry row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.TelemetryRow) error {
	w.once.Do(w.printOverview)

	dColor := w.getDroneColor(row.DroneID)
	statusColor := colorGreen
	switch row.Status {
	case telemetry.StatusDisconnected:
		statusColor = colorRed
	case telemetry.StatusEnRoute, telemetry.StatusReturning:
		statusColor = colorYellow
	}

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%sconsole=%s%s ", colorBlue, row.ConsoleID, colorReset)
	fmt.Fprintf(w.out, "%sdrone=%s%s ", dColor, row.DroneID, colorReset)
	fmt.Fprintf(w.out, "%slat=%.5f%s ", colorGreen, row.Lat, colorReset)
	fmt.Fprintf(w.out, "%slng=%.5f%s ", colorYellow, row.Lng, colorReset)
	fmt.Fprintf(w.out, "%sbatt=%.1f%s ", colorCyan, row.Battery, colorReset)
	fmt.Fprintf(w.out, "%stemp=%.1f%s ", colorMagenta, row.Temp, colorReset)
	if row.PumpPressure > 0 {
		fmt.Fprintf(w.out, "%spump=%.0f%s ", colorCyan, row.PumpPressure, colorReset)
	}
	if row.Motion {
		fmt.Fprintf(w.out, "%smotion%s ", colorMagenta, colorReset)
	}
	fmt.Fprintf(w.out, "%sstatus=%s%s", statusColor, row.Status, colorReset)
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvent prints one audit event row.
func (w *ColorStdoutWriter) WriteEvent(row telemetry.EventRow) error {
	fmt.Fprintf(w.out, "%s[%s]%s %s[%s]%s %s: %s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.Category, colorReset,
		row.Actor, row.Message)
	return nil
}

// WriteAlert prints one alert row, severity-colored.
func (w *ColorStdoutWriter) WriteAlert(row telemetry.AlertRow) error {
	sevColor := colorYellow
	if row.Severity == "High" || row.Severity == "Critical" {
		sevColor = colorRed
	}
	fmt.Fprintf(w.out, "%s[%s]%s %sALERT %s%s %s: %s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		sevColor, row.Severity, colorReset,
		row.Type, row.Description)
	return nil
}
