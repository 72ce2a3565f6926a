// YAML config loader with CUE validation integration
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"responseops-sim/internal/telemetry"
)

// DroneSeed describes one drone present at console start.
type DroneSeed struct {
	ID      string           `yaml:"id"`
	Status  telemetry.Status `yaml:"status"`
	Battery float64          `yaml:"battery"`
	Lat     float64          `yaml:"lat"`
	Lng     float64          `yaml:"lng"`
}

// User is a known console login identity.
type User struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// ConsoleConfig is the root configuration for the command console simulation.
type ConsoleConfig struct {
	ConsoleID           string             `yaml:"console_id"`
	Base                telemetry.Position `yaml:"base"`
	GeofenceRadiusM     float64            `yaml:"geofence_radius_m"`
	BackupIntervalHours int                `yaml:"backup_interval_hours"`
	FeedProbability     float64            `yaml:"feed_probability"`
	IncidentSpread      float64            `yaml:"incident_spread"` // random incident offset span in degrees, centered on base (max ±spread/2)
	SessionSecret       string             `yaml:"session_secret"`
	Motion              telemetry.Params   `yaml:"motion"`
	Drones              []DroneSeed        `yaml:"drones"`
	Users               []User             `yaml:"users"`
}

// Default returns the built-in configuration used when no config file is
// given or a persisted snapshot cannot be read.
func Default() *ConsoleConfig {
	return &ConsoleConfig{
		ConsoleID:           "otf-command-01",
		Base:                telemetry.Position{Lat: 8.9806, Lng: 38.7578},
		GeofenceRadiusM:     2500,
		BackupIntervalHours: 12,
		FeedProbability:     0.14,
		IncidentSpread:      0.045,
		SessionSecret:       "responseops-demo-secret",
		Motion:              telemetry.DefaultParams(),
		Drones: []DroneSeed{
			{ID: "DR-101", Status: telemetry.StatusIdle, Battery: 92, Lat: 8.9812, Lng: 38.7567},
			{ID: "DR-204", Status: telemetry.StatusOnPatrol, Battery: 78, Lat: 8.9895, Lng: 38.7477},
			{ID: "DR-330", Status: telemetry.StatusIdle, Battery: 65, Lat: 8.9738, Lng: 38.7690},
		},
		Users: []User{
			{ID: "U001", Name: "Awaiz Ahmed", Role: "Admin"},
			{ID: "U002", Name: "Omar", Role: "Operator"},
			{ID: "U003", Name: "Anas", Role: "Viewer"},
		},
	}
}

// Load loads YAML config and validates it against a CUE schema. Fields left
// empty in the file keep their defaults.
func Load(configPath, cueSchemaPath string) (*ConsoleConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if env := os.Getenv("SESSION_SECRET"); env != "" {
		cfg.SessionSecret = env
	}
	return cfg, nil
}
