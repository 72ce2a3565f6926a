package sim

import "strings"

// KPIs are the derived operations metrics shown on the reports panel.
type KPIs struct {
	AvgResponseMinutes float64 `json:"avg_response_minutes"`
	IncidentsHandled   int     `json:"incidents_handled"`
	UptimePercent      float64 `json:"uptime_percent"`
	FalsePositives     int     `json:"false_positives"`
	ActiveIncidents    int     `json:"active_incidents"`
	OpenAlerts         int     `json:"open_alerts"`
}

// KPIs derives fresh metrics from the current state. Average response time
// skips incidents that never reached the scene or whose timeline is out of
// order; with no usable samples it reports zero. Uptime is a synthetic score
// penalized per open disconnect alert and for a degraded network, floored
// at 88 percent.
func (s *Simulator) KPIs() KPIs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kpisLocked()
}

func (s *Simulator) kpisLocked() KPIs {
	k := KPIs{OpenAlerts: s.alerts.OpenCount()}
	var sum float64
	var samples int
	for _, i := range s.incidents {
		if m := i.ResponseMinutes(); m != nil {
			sum += *m
			samples++
		}
		if i.Terminal() {
			k.IncidentsHandled++
		} else {
			k.ActiveIncidents++
		}
		if i.FalsePositive {
			k.FalsePositives++
		}
	}
	if samples > 0 {
		k.AvgResponseMinutes = sum / float64(samples)
	}
	disconnects := s.alerts.OpenMatching(func(key string) bool {
		return strings.HasPrefix(key, "disconnect-")
	})
	uptime := 99.2 - float64(disconnects)*1.4
	if s.flags.NetworkDegraded {
		uptime -= 1.6
	}
	if uptime < 88 {
		uptime = 88
	}
	k.UptimePercent = uptime
	return k
}
