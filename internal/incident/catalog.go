package incident

// Fixed incident categories.
const (
	TypeTraffic       = "Traffic Accident"
	TypeMedical       = "Medical Emergency"
	TypeFire          = "Fire/Rescue"
	TypeDelivery      = "Event/Delivery"
	TypeEnvironmental = "Environmental/Disaster Monitoring"
)

// Types returns the five fixed incident categories in display order.
func Types() []string {
	return []string{TypeTraffic, TypeMedical, TypeFire, TypeDelivery, TypeEnvironmental}
}

// Severities returns all severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Person is a watchlist entry used by the simulated vision engine.
type Person struct {
	Name    string
	BadgeID string
}

// Playbook is the canned response guidance for one incident category.
type Playbook struct {
	Tone       string   `json:"tone"`
	Responders []string `json:"responders"`
	Checklist  []string `json:"checklist"`
	Next       []string `json:"next"`
}

var locations = map[string][]string{
	TypeTraffic:       {"Ring Road Junction", "East Gate Overpass", "Commerce Roundabout"},
	TypeMedical:       {"AAU Main Library", "Science Block C", "Student Dorm 2"},
	TypeFire:          {"Lab Complex 4", "North Market Annex", "Warehouse Zone B"},
	TypeDelivery:      {"Stadium Entry Gate", "Community Hall", "Relief Tent Alpha"},
	TypeEnvironmental: {"Riverside Sector", "Landslide Watchpoint", "Air Quality Zone 5"},
}

// LocationsFor returns the known location labels for a category.
func LocationsFor(typ string) []string {
	if locs, ok := locations[typ]; ok {
		return locs
	}
	return []string{"Urban Sector"}
}

// Watchlist returns the people the vision engine can match against.
func Watchlist() []Person {
	return []Person{
		{Name: "Martha Alemu", BadgeID: "AAU-1902"},
		{Name: "Tomas Hailu", BadgeID: "AAU-3481"},
		{Name: "Nahom Girma", BadgeID: "AAU-2219"},
		{Name: "Saron Mulu", BadgeID: "AAU-1773"},
	}
}

// FeedLines returns the canned comms lines injected by the ticker.
func FeedLines() []string {
	return []string{
		"Command: Visual lock acquired; forwarding stream to operator.",
		"Field responder: Traffic redirected, lane cleared for ambulance.",
		"Drone: Thermal sweep complete, no secondary hotspot detected.",
		"Command: Microphone channel stable; capturing witness statement.",
		"AI: Elevated crowd density detected on south perimeter.",
		"Operator: Confirming ETA to nearest responder team now.",
		"Command: Environmental readings stable after wind shift.",
	}
}

var playbooks = map[string]Playbook{
	TypeTraffic: {
		Tone:       "Stabilize the scene and clear responder access lanes first.",
		Responders: []string{"Traffic Police", "Ambulance"},
		Checklist: []string{
			"Activate aerial hazard lights and scene beacon.",
			"Capture plate evidence and lane obstruction footprint.",
			"Guide bystanders 20m away from impact zone.",
		},
		Next: []string{
			"Dispatch nearest traffic unit to coordinate diversion.",
			"Share vehicle position snapshots with command tablet.",
			"Prepare digital violation receipt if rule breach confirmed.",
		},
	},
	TypeMedical: {
		Tone:       "Prioritize patient airway and route medical responders immediately.",
		Responders: []string{"Ambulance", "Campus Clinic"},
		Checklist: []string{
			"Open medical telemetry packet for heart-rate sync.",
			"Push first-aid guidance to bystander audio channel.",
			"Reserve nearest safe landing corridor for med drone.",
		},
		Next: []string{
			"Broadcast location pin to ambulance lead.",
			"Enable live microphone for doctor instruction relay.",
			"Prepare first-aid kit release if requested by medic.",
		},
	},
	TypeFire: {
		Tone:       "Isolate heat source and coordinate fire unit entry path now.",
		Responders: []string{"Fire Brigade", "Police"},
		Checklist: []string{
			"Switch thermal camera to hotspot tracking mode.",
			"Engage pump pressure readiness and nozzle orientation.",
			"Mark safe evacuation corridor on command map.",
		},
		Next: []string{
			"Notify fire unit with live heat map overlay.",
			"Escalate to high-pressure pump if heat index climbs.",
			"Maintain crowd exclusion boundary until handover.",
		},
	},
	TypeDelivery: {
		Tone:       "Secure drop zone and verify payload handoff identity.",
		Responders: []string{"Event Security", "Rapid Logistics Team"},
		Checklist: []string{
			"Confirm magnetic payload lock before descent.",
			"Validate recipient identity using badge scan.",
			"Record handoff confirmation and item checklist.",
		},
		Next: []string{
			"Enable payload arm with operator confirmation.",
			"Share drop ETA with onsite event coordinator.",
			"Log delivery proof snapshot and witness name.",
		},
	},
	TypeEnvironmental: {
		Tone:       "Monitor hazard trend and secure vulnerable perimeter sectors.",
		Responders: []string{"Disaster Unit", "Municipal Safety Team"},
		Checklist: []string{
			"Activate environmental sensor fusion packet.",
			"Track wind, heat, and movement anomalies continuously.",
			"Issue precaution alert to nearby public zone.",
		},
		Next: []string{
			"Dispatch reconnaissance drone for secondary sweep.",
			"Share live readings with disaster management desk.",
			"Prepare evacuation advisory if threshold rises.",
		},
	},
}

// PlaybookFor returns the response playbook for a category, falling back to
// the medical playbook for unknown types.
func PlaybookFor(typ string) Playbook {
	if pb, ok := playbooks[typ]; ok {
		return pb
	}
	return playbooks[TypeMedical]
}
