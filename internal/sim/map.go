package sim

import (
	"responseops-sim/internal/incident"
	"responseops-sim/internal/telemetry"
)

// Marker colors for the tactical map.
const (
	colorFleet     = "#0e8f78"
	colorAttention = "#c93f3f"
	colorTransit   = "#d18924"
	colorOnScene   = "#208450"
	colorResolved  = "#6f7f88"
)

// MapDrone is one drone marker on the tactical map.
type MapDrone struct {
	ID      string           `json:"id"`
	Lat     float64          `json:"lat"`
	Lng     float64          `json:"lng"`
	Status  telemetry.Status `json:"status"`
	Battery float64          `json:"battery"`
	Color   string           `json:"color"`
}

// MapIncident is one incident marker on the tactical map. Radius grows with
// attention signals: focus, active motion or heat flags, and recognitions.
type MapIncident struct {
	ID       string            `json:"id"`
	Lat      float64           `json:"lat"`
	Lng      float64           `json:"lng"`
	Status   incident.Status   `json:"status"`
	Severity incident.Severity `json:"severity"`
	Color    string            `json:"color"`
	Radius   int               `json:"radius"`
}

// MapData is everything the tactical map widget needs to render.
type MapData struct {
	Base            telemetry.Position `json:"base"`
	GeofenceRadiusM float64            `json:"geofence_radius_m"`
	Drones          []MapDrone         `json:"drones"`
	Incidents       []MapIncident      `json:"incidents"`
}

// MapSnapshot returns the current tactical map state.
func (s *Simulator) MapSnapshot() MapData {
	s.mu.Lock()
	defer s.mu.Unlock()
	md := MapData{Base: s.cfg.Base, GeofenceRadiusM: s.cfg.GeofenceRadiusM}
	for _, d := range s.drones {
		color := colorFleet
		if d.Status == telemetry.StatusDisconnected {
			color = colorAttention
		}
		md.Drones = append(md.Drones, MapDrone{
			ID: d.ID, Lat: d.Position.Lat, Lng: d.Position.Lng,
			Status: d.Status, Battery: d.Battery, Color: color,
		})
	}
	for _, i := range s.incidents {
		var color string
		switch {
		case i.Status == incident.StatusResolved || i.Status == incident.StatusClosed:
			color = colorResolved
		case i.Status == incident.StatusOnScene:
			color = colorOnScene
		case i.Status == incident.StatusDispatched || i.Status == incident.StatusEnRoute:
			color = colorTransit
		default:
			color = colorAttention
		}
		boost := 0
		if i.ID == s.selected {
			boost++
		}
		if s.flags.MotionDetected {
			boost++
		}
		if s.flags.HighHeat {
			boost += 2
		}
		if len(i.Recognized) > 0 {
			boost++
		}
		radius := 8 + boost
		if radius > 14 {
			radius = 14
		}
		md.Incidents = append(md.Incidents, MapIncident{
			ID: i.ID, Lat: i.Position.Lat, Lng: i.Position.Lng,
			Status: i.Status, Severity: i.Severity, Color: color, Radius: radius,
		})
	}
	return md
}
