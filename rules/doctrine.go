package rules

import "math"

// Doctrine is a high-level economic posture. Weights are 0.0–1.0; the
// compiler maps them to concrete rule parameters.
type Doctrine struct {
	Name            string  `yaml:"name" json:"name"`
	Rationale       string  `yaml:"rationale" json:"rationale"`
	EconomyPriority float64 `yaml:"economy_priority" json:"economy_priority"`
	TechPriority    float64 `yaml:"tech_priority" json:"tech_priority"`
	MilitaryWeight  float64 `yaml:"military_weight" json:"military_weight"`
	RangedWeight    float64 `yaml:"ranged_weight" json:"ranged_weight"` // archers vs footmen
	GoldWeight      float64 `yaml:"gold_weight" json:"gold_weight"`     // gold share of gold+wood harvesting
	OilWeight       float64 `yaml:"oil_weight" json:"oil_weight"`
	WorkerTarget    int     `yaml:"worker_target" json:"worker_target"`
	ArmyTarget      int     `yaml:"army_target" json:"army_target"`
	SupplyHeadroom  int     `yaml:"supply_headroom" json:"supply_headroom"`
	RepairReserve   int     `yaml:"repair_reserve" json:"repair_reserve"`
}

// DefaultDoctrine returns a balanced baseline doctrine.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name:            "Balanced",
		Rationale:       "Default balanced opening",
		EconomyPriority: 0.5,
		TechPriority:    0.4,
		MilitaryWeight:  0.5,
		RangedWeight:    0.3,
		GoldWeight:      0.6,
		OilWeight:       0.0,
		WorkerTarget:    12,
		ArmyTarget:      8,
		SupplyHeadroom:  2,
		RepairReserve:   0,
	}
}

// Validate clamps all weights to their valid ranges.
func (d *Doctrine) Validate() {
	d.EconomyPriority = clamp(d.EconomyPriority, 0, 1)
	d.TechPriority = clamp(d.TechPriority, 0, 1)
	d.MilitaryWeight = clamp(d.MilitaryWeight, 0, 1)
	d.RangedWeight = clamp(d.RangedWeight, 0, 1)
	d.GoldWeight = clamp(d.GoldWeight, 0, 1)
	d.OilWeight = clamp(d.OilWeight, 0, 1)
	d.WorkerTarget = clampInt(d.WorkerTarget, 4, 40)
	d.ArmyTarget = clampInt(d.ArmyTarget, 0, 60)
	d.SupplyHeadroom = clampInt(d.SupplyHeadroom, 1, 8)
	d.RepairReserve = clampInt(d.RepairReserve, 0, 2000)
}

// collectPercent splits harvesting between gold, wood and oil. The three
// shares always sum to 100.
func (d Doctrine) collectPercent() (gold, wood, oil int) {
	oil = lerp(0, 40, d.OilWeight)
	gold = lerp(0, 100-oil, d.GoldWeight)
	wood = 100 - oil - gold
	return gold, wood, oil
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// lerp linearly interpolates between min and max by t (0–1), returning an int.
func lerp(min, max int, t float64) int {
	return min + int(math.Round(float64(max-min)*t))
}

// lerpf linearly interpolates between min and max by t (0–1), returning a float64.
func lerpf(min, max, t float64) float64 {
	return min + (max-min)*t
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
