package main

import (
	"os"

	"responseops-sim/internal/config"
	"responseops-sim/internal/sim"
)

// newWriters sets up the telemetry writer stack based on flags and env vars.
// It returns the writer and a cleanup function to close any resources.
func newWriters(cfg *config.ConsoleConfig, printOnly, tui bool, logFile string) (sim.TelemetryWriter, func(), error) {
	cleanup := func() {}

	writer, wCleanup, err := baseWriter(cfg, printOnly, tui)
	if err != nil {
		return nil, nil, err
	}
	if logFile == "" {
		return writer, wCleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".events", logFile+".alerts")
	if err != nil {
		wCleanup()
		return nil, nil, err
	}
	mw := sim.NewMultiWriter(writer, fw)
	cleanup = func() {
		fw.Close()
		wCleanup()
	}
	return mw, cleanup, nil
}

// baseWriter chooses the primary writer: TUI, colorized STDOUT, or GreptimeDB.
func baseWriter(cfg *config.ConsoleConfig, printOnly, tui bool) (sim.TelemetryWriter, func(), error) {
	if tui {
		tw := sim.NewTUIWriter(cfg)
		return tw, func() { tw.Close() }, nil
	}
	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		return sim.NewColorStdoutWriter(cfg), func() {}, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	w, err := sim.NewGreptimeDBWriter(endpoint, database)
	if err != nil {
		return nil, nil, err
	}
	return w, func() {}, nil
}
