package rules

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/nstehr/quartermaster/model"
)

// Request queues count units of the named type.
func Request(ident string, count int) ActionFunc {
	return func(env PlanEnv, p Planner) error {
		t, ok := env.Types.UnitType(ident)
		if !ok {
			return fmt.Errorf("unknown unit type %q", ident)
		}
		slog.Debug("plan requests production", "type", ident, "count", count)
		p.AddUnitTypeRequest(t, count)
		return nil
	}
}

// Research starts the named upgrade if a researcher is free and it is
// affordable. A refusal is not an error; the rule fires again next pass.
func Research(ident string) ActionFunc {
	return func(env PlanEnv, p Planner) error {
		u, ok := env.Types.Upgrade(ident)
		if !ok {
			return fmt.Errorf("unknown upgrade %q", ident)
		}
		if !p.AddResearchRequest(env.World, u) {
			slog.Debug("plan research refused", "upgrade", ident)
		}
		return nil
	}
}

// UpgradeTo upgrades one idle unit in place to the named type.
func UpgradeTo(ident string) ActionFunc {
	return func(env PlanEnv, p Planner) error {
		t, ok := env.Types.UnitType(ident)
		if !ok {
			return fmt.Errorf("unknown unit type %q", ident)
		}
		if !p.AddUpgradeToRequest(env.World, t) {
			slog.Debug("plan upgrade refused", "type", ident)
		}
		return nil
	}
}

// Collect sets the harvest weights, in percent per resource name.
func Collect(percent map[string]int) ActionFunc {
	return func(env PlanEnv, p Planner) error {
		c, err := costsOf(env.Types, percent)
		if err != nil {
			return err
		}
		p.SetCollect(c)
		return nil
	}
}

// Reserve sets the amounts production leaves untouched.
func Reserve(amounts map[string]int) ActionFunc {
	return func(env PlanEnv, p Planner) error {
		c, err := costsOf(env.Types, amounts)
		if err != nil {
			return err
		}
		p.SetReserve(c)
		return nil
	}
}

// SleepFor suppresses supply requests for the given number of cycles.
func SleepFor(cycles int) ActionFunc {
	return func(env PlanEnv, p Planner) error {
		p.Sleep(cycles)
		return nil
	}
}

// costsOf converts a resource-name keyed map into a cost vector.
func costsOf(types model.TypeResolver, m map[string]int) (model.Costs, error) {
	var c model.Costs
	for _, name := range slices.Sorted(maps.Keys(m)) {
		k, ok := types.ResourceKind(name)
		if !ok || k == model.TimeCost {
			return c, fmt.Errorf("unknown resource %q", name)
		}
		c[k] = m[name]
	}
	return c, nil
}
