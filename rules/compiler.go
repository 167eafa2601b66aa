package rules

import (
	"fmt"
	"math"
)

// DefaultRules is the rule set of the default doctrine.
func DefaultRules() []*Rule { return CompileDoctrine(DefaultDoctrine()) }

// CompileDoctrine generates a complete build plan from a doctrine's weights.
// All conditions are built via fmt.Sprintf with interpolated values, so the
// compiler never generates invalid expr.
func CompileDoctrine(d Doctrine) []*Rule {
	d.Validate()
	var rules []*Rule

	// --- Setup (once per rule set) ---

	gold, wood, oil := d.collectPercent()
	rules = append(rules, &Rule{
		Name:         "set-collect",
		Priority:     1000,
		Category:     "setup",
		Once:         true,
		ConditionSrc: `true`,
		Action:       Collect(map[string]int{"gold": gold, "wood": wood, "oil": oil}),
	})

	if d.RepairReserve > 0 {
		rules = append(rules, &Rule{
			Name:         "set-reserve",
			Priority:     990,
			Category:     "setup",
			Once:         true,
			ConditionSrc: `true`,
			Action:       Reserve(map[string]int{"gold": d.RepairReserve, "wood": d.RepairReserve}),
		})
	}

	// --- Rebuild ---

	rules = append(rules, &Rule{
		Name:         "rebuild-hall",
		Priority:     900,
		Category:     "rebuild",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`HasUnit(%q) && !HasRole("hall") && Requested(%q) == 0`, Worker, TownHall),
		Action:       Request(TownHall, 1),
	})

	// --- Economy ---

	rules = append(rules, &Rule{
		Name:      "train-worker",
		Priority:  lerp(400, 700, d.EconomyPriority),
		Category:  "economy",
		Exclusive: true,
		ConditionSrc: fmt.Sprintf(`HasRole("hall") && RoleCount("harvester") + Requested(%q) < %d && FreeSupply() > 0`,
			Worker, d.WorkerTarget),
		Action: Request(Worker, 1),
	})

	rules = append(rules, &Rule{
		Name:      "supply-headroom",
		Priority:  650,
		Category:  "supply",
		Exclusive: true,
		ConditionSrc: fmt.Sprintf(`HasRole("hall") && FreeSupply() < %d && Requested(%q) == 0 && !Sleeping()`,
			d.SupplyHeadroom, Farm),
		Action: Request(Farm, 1),
	})

	millWorkers := lerp(8, 4, d.TechPriority)
	rules = append(rules, &Rule{
		Name:      "build-lumber-mill",
		Priority:  500,
		Category:  "production",
		Exclusive: true,
		ConditionSrc: fmt.Sprintf(`HasRole("hall") && Harvesters() >= %d && Planned(%q) == 0`,
			millWorkers, LumberMill),
		Action: Request(LumberMill, 1),
	})

	rules = append(rules, &Rule{
		Name:         "pause-supply-when-broke",
		Priority:     100,
		Category:     "pause",
		Exclusive:    true,
		ConditionSrc: `!Sleeping() && Needed("gold") && Needed("wood") && IdleHarvesters() == 0 && Resource("gold") < 500`,
		Action:       SleepFor(lerp(300, 90, d.EconomyPriority)),
	})

	// --- Military production (conditional on weight) ---

	if d.MilitaryWeight > 0 {
		// The more the doctrine favours the economy, the larger the work
		// force before the first barracks goes down.
		barracksWorkers := int(math.Round(lerpf(0.3, 0.9, d.EconomyPriority) * float64(d.WorkerTarget)))
		rules = append(rules, &Rule{
			Name:      "build-barracks",
			Priority:  lerp(350, 600, d.MilitaryWeight),
			Category:  "production",
			Exclusive: true,
			ConditionSrc: fmt.Sprintf(`HasRole("hall") && Harvesters() >= %d && Planned(%q) < %d`,
				barracksWorkers, Barracks, lerp(1, 3, d.MilitaryWeight)),
			Action: Request(Barracks, 1),
		})

		archers := lerp(0, d.ArmyTarget, d.RangedWeight)
		footmen := d.ArmyTarget - archers
		armyPriority := lerp(200, 450, d.MilitaryWeight)
		if footmen > 0 {
			rules = append(rules, &Rule{
				Name:      "train-footman",
				Priority:  armyPriority,
				Category:  "military",
				Exclusive: true,
				ConditionSrc: fmt.Sprintf(`HasUnit(%q) && Planned(%q) < %d && FreeSupply() > 0`,
					Barracks, Footman, footmen),
				Action: Request(Footman, 1),
			})
		}
		if archers > 0 {
			rules = append(rules, &Rule{
				Name:      "train-archer",
				Priority:  armyPriority + 5,
				Category:  "military",
				Exclusive: true,
				ConditionSrc: fmt.Sprintf(`HasUnit(%q) && HasUnit(%q) && Planned(%q) < %d && FreeSupply() > 0`,
					Barracks, LumberMill, Archer, archers),
				Action: Request(Archer, 1),
			})
		}
	}

	// --- Tech (conditional on priority) ---

	if d.TechPriority >= 0.3 {
		goldBar := lerp(1600, 800, d.TechPriority)
		rules = append(rules, &Rule{
			Name:      "build-blacksmith",
			Priority:  lerp(250, 450, d.TechPriority),
			Category:  "production",
			Exclusive: true,
			ConditionSrc: fmt.Sprintf(`HasRole("hall") && HasUnit(%q) && Planned(%q) == 0 && Resource("gold") >= %d`,
				Barracks, Blacksmith, goldBar),
			Action: Request(Blacksmith, 1),
		})

		research := []struct{ upgrade, at string }{
			{Swords, Blacksmith},
			{Shields, Blacksmith},
			{Arrows, LumberMill},
		}
		for i, r := range research {
			rules = append(rules, &Rule{
				Name:      "research-" + r.upgrade,
				Priority:  lerp(200, 400, d.TechPriority) - i,
				Category:  "tech",
				Exclusive: true,
				ConditionSrc: fmt.Sprintf(`HasUnit(%q) && !HasUpgrade(%q) && Resource("gold") >= %d`,
					r.at, r.upgrade, goldBar),
				Action: Research(r.upgrade),
			})
		}
	}

	if d.TechPriority >= 0.6 {
		rules = append(rules, &Rule{
			Name:      "upgrade-keep",
			Priority:  lerp(250, 450, d.TechPriority) + 10,
			Category:  "tech",
			Exclusive: true,
			ConditionSrc: fmt.Sprintf(`HasUnit(%q) && !HasUnit(%q) && Resource("oil") >= 200 && Harvesters() >= %d`,
				TownHall, Keep, d.WorkerTarget/2),
			Action: UpgradeTo(Keep),
		})
	}

	return rules
}
