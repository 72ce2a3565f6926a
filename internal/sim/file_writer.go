package sim

import (
	"encoding/json"
	"os"

	"responseops-sim/internal/telemetry"
)

// FileWriter writes telemetry, audit events, and alerts to JSONL files.
type FileWriter struct {
	teleFile  *os.File
	eventFile *os.File
	alertFile *os.File
	teleEnc   *json.Encoder
	eventEnc  *json.Encoder
	alertEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. eventPath or alertPath may be empty to
// skip those logs.
func NewFileWriter(telemetryPath, eventPath, alertPath string) (*FileWriter, error) {
	tf, err := os.Create(telemetryPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{teleFile: tf, teleEnc: json.NewEncoder(tf)}
	if eventPath != "" {
		ef, err := os.Create(eventPath)
		if err != nil {
			tf.Close()
			return nil, err
		}
		fw.eventFile = ef
		fw.eventEnc = json.NewEncoder(ef)
	}
	if alertPath != "" {
		af, err := os.Create(alertPath)
		if err != nil {
			if fw.eventFile != nil {
				fw.eventFile.Close()
			}
			tf.Close()
			return nil, err
		}
		fw.alertFile = af
		fw.alertEnc = json.NewEncoder(af)
	}
	return fw, nil
}

// Write logs a single telemetry row.
func (f *FileWriter) Write(row telemetry.TelemetryRow) error {
	return f.teleEnc.Encode(row)
}

// WriteBatch logs multiple telemetry rows.
func (f *FileWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvent logs one audit event row, if an event file is configured.
func (f *FileWriter) WriteEvent(row telemetry.EventRow) error {
	if f.eventEnc == nil {
		return nil
	}
	return f.eventEnc.Encode(row)
}

// WriteAlert logs one alert row, if an alert file is configured.
func (f *FileWriter) WriteAlert(row telemetry.AlertRow) error {
	if f.alertEnc == nil {
		return nil
	}
	return f.alertEnc.Encode(row)
}

// Close flushes and closes the underlying files.
func (f *FileWriter) Close() error {
	var firstErr error
	for _, file := range []*os.File{f.teleFile, f.eventFile, f.alertFile} {
		if file == nil {
			continue
		}
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
