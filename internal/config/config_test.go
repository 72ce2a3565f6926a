package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Valid(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "console.yaml")
	yaml := `
console_id: console-x
base:
  lat: 48.2
  lng: 16.4
drones:
  - id: DR-900
    status: Idle
    battery: 80
    lat: 48.2
    lng: 16.4
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(tmpFile, "../../schemas/simulation.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ConsoleID != "console-x" {
		t.Errorf("ConsoleID = %q", cfg.ConsoleID)
	}
	if len(cfg.Drones) != 1 || cfg.Drones[0].ID != "DR-900" {
		t.Errorf("unexpected drone data: %+v", cfg.Drones)
	}
	// untouched fields keep defaults
	if cfg.Motion.ApproachRate != 0.07 {
		t.Errorf("motion defaults not preserved: %+v", cfg.Motion)
	}
}

func TestLoadConfig_InvalidRoleRejected(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "console.yaml")
	yaml := `
users:
  - id: U9
    name: nobody
    role: superuser
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if _, err := Load(tmpFile, "../../schemas/simulation.cue"); err == nil {
		t.Fatal("expected CUE validation error for invalid role")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if len(cfg.Drones) != 3 || len(cfg.Users) != 3 {
		t.Fatalf("default seed sizes: drones=%d users=%d", len(cfg.Drones), len(cfg.Users))
	}
	if cfg.Motion.CriticalBattery >= cfg.Motion.LowBattery {
		t.Error("critical battery threshold must sit below low battery threshold")
	}
}
