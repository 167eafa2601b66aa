package rules

import (
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/model"
)

// PlanEnv wraps one faction's view of the world and exposes helper methods
// callable from expr expressions.
type PlanEnv struct {
	Player  *model.Player
	Units   []*model.Unit // active units only
	Manager *econ.Manager
	World   econ.World
	Types   model.TypeResolver
	Census  econ.Census
	cycle   uint64
}

// NewPlanEnv captures the state rule conditions read for m's faction.
func NewPlanEnv(m *econ.Manager, w econ.World, types model.TypeResolver) PlanEnv {
	env := PlanEnv{
		Player:  w.Player(m.State.Player),
		Manager: m,
		World:   w,
		Types:   types,
		Census:  m.Census(w),
		cycle:   w.Cycle(),
	}
	for _, u := range w.Units(m.State.Player) {
		if u.Active {
			env.Units = append(env.Units, u)
		}
	}
	return env
}

func (e PlanEnv) Cycle() int { return int(e.cycle) }

func (e PlanEnv) HasUnit(t string) bool { return containsType(e.Units, t) }

func (e PlanEnv) UnitCount(t string) int { return countType(e.Units, t) }

// RoleCount counts active units whose type fills role.
func (e PlanEnv) RoleCount(role string) int {
	n := 0
	for _, u := range e.Units {
		if hasRole(u.Type, role) {
			n++
		}
	}
	return n
}

func (e PlanEnv) HasRole(role string) bool { return e.RoleCount(role) > 0 }

// Requested returns how many units of t the production queue still asks for.
func (e PlanEnv) Requested(t string) int {
	typ, ok := e.Types.UnitType(t)
	if !ok || e.Manager == nil {
		return 0
	}
	return e.Manager.Requested(typ)
}

// Planned is UnitCount plus Requested: what the faction will have once the
// queue drains.
func (e PlanEnv) Planned(t string) int { return e.UnitCount(t) + e.Requested(t) }

func (e PlanEnv) QueueLength() int {
	if e.Manager == nil {
		return 0
	}
	return len(e.Manager.State.Queue)
}

// Resource returns the stock of the named resource, stored amounts included.
func (e PlanEnv) Resource(name string) int {
	k, ok := e.Types.ResourceKind(name)
	if !ok || e.Player == nil {
		return 0
	}
	return e.Player.Available(k)
}

func (e PlanEnv) Supply() int {
	if e.Player == nil {
		return 0
	}
	return e.Player.Supply
}

func (e PlanEnv) Demand() int {
	if e.Player == nil {
		return 0
	}
	return e.Player.Demand
}

func (e PlanEnv) FreeSupply() int { return e.Supply() - e.Demand() }

func (e PlanEnv) Harvesters() int { return e.Census.Total }

func (e PlanEnv) IdleHarvesters() int { return len(e.Census.Idle) }

// Needed reports whether the scheduler was short of the named resource on
// its last pass.
func (e PlanEnv) Needed(name string) bool {
	k, ok := e.Types.ResourceKind(name)
	if !ok || e.Manager == nil {
		return false
	}
	s := e.Manager.State
	return s.LastNeeded.Has(k) || s.Needed.Has(k)
}

func (e PlanEnv) HasUpgrade(u string) bool {
	return e.Player != nil && e.Player.Upgrades[u]
}

func (e PlanEnv) Sleeping() bool {
	return e.Manager != nil && e.Manager.State.SleepCycles > 0
}
