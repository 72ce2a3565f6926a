package telemetry

import (
	"math"
	"math/rand"
)

// Params tunes the per-tick motion, battery, and sensor models.
type Params struct {
	ApproachRate    float64 `yaml:"approach_rate"`   // fraction of remaining vector per tick
	ArrivalEpsilon  float64 `yaml:"arrival_epsilon"` // degrees, per axis
	Jitter          float64 `yaml:"jitter"`          // idle loiter noise span, degrees
	DrainRate       float64 `yaml:"drain_rate"`      // battery per active tick
	RechargeRate    float64 `yaml:"recharge_rate"`   // battery per idle tick
	BatteryFloor    float64 `yaml:"battery_floor"`
	LowBattery      float64 `yaml:"low_battery"`
	CriticalBattery float64 `yaml:"critical_battery"`
	TempBaseline    float64 `yaml:"temp_baseline"`
	TempRelax       float64 `yaml:"temp_relax"`
	HeatFloor       float64 `yaml:"heat_floor"`
}

// DefaultParams returns the stock tuning for the motion model.
func DefaultParams() Params {
	return Params{
		ApproachRate:    0.07,
		ArrivalEpsilon:  0.0002,
		Jitter:          0.00015,
		DrainRate:       0.07,
		RechargeRate:    0.03,
		BatteryFloor:    5,
		LowBattery:      15,
		CriticalBattery: 5.5,
		TempBaseline:    34,
		TempRelax:       0.04,
		HeatFloor:       78,
	}
}

// Mover advances drone positions, batteries, and sensors one tick at a time.
type Mover struct {
	Params Params
	rng    *rand.Rand
}

// NewMover creates a Mover with the given tuning and random source.
func NewMover(p Params, rng *rand.Rand) *Mover {
	return &Mover{Params: p, rng: rng}
}

// Advance moves a drone one tick toward its target and reports arrival.
// Movement is an exponential approach: each tick covers a fixed fraction of
// the remaining vector, so drones decelerate into the scene. Disconnected
// drones never move. Idle drones without a target loiter with bounded jitter.
func (m *Mover) Advance(d *Drone) bool {
	if d.Status == StatusDisconnected {
		return false
	}
	if d.Target == nil {
		if d.Status == StatusIdle {
			d.Position.Lat += (m.rng.Float64() - 0.5) * m.Params.Jitter
			d.Position.Lng += (m.rng.Float64() - 0.5) * m.Params.Jitter
		}
		return false
	}
	dLat := d.Target.Lat - d.Position.Lat
	dLng := d.Target.Lng - d.Position.Lng
	d.Position.Lat += dLat * m.Params.ApproachRate
	d.Position.Lng += dLng * m.Params.ApproachRate
	return math.Abs(dLat) < m.Params.ArrivalEpsilon && math.Abs(dLng) < m.Params.ArrivalEpsilon
}

// StepBattery drains or recovers a drone battery depending on its status,
// clamped to [floor, 100].
func (m *Mover) StepBattery(d *Drone) {
	switch d.Status {
	case StatusOnScene, StatusEnRoute, StatusReturning:
		d.Battery = math.Max(m.Params.BatteryFloor, d.Battery-m.Params.DrainRate)
	default:
		d.Battery = math.Min(100, d.Battery+m.Params.RechargeRate)
	}
}

// StepSensors updates the sensor bundle. Externally forced motion and heat
// override the readings; otherwise temperature relaxes toward the baseline.
func (m *Mover) StepSensors(d *Drone, forceMotion, forceHeat bool) {
	if forceMotion {
		d.Sensors.Motion = true
	}
	if forceHeat {
		d.Sensors.Temp = math.Max(d.Sensors.Temp, m.Params.HeatFloor)
		return
	}
	d.Sensors.Temp += (m.Params.TempBaseline - d.Sensors.Temp) * m.Params.TempRelax
}

// DistanceKM calculates the haversine distance between two positions.
func DistanceKM(a, b Position) float64 {
	const earthRadius = 6371.0
	rad := func(x float64) float64 { return x * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	q := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Atan2(math.Sqrt(q), math.Sqrt(1-q))
}
