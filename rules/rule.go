package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/model"
)

// Planner is the part of a faction's scheduler that rule actions drive.
// *econ.Manager satisfies it.
type Planner interface {
	AddUnitTypeRequest(t *model.UnitType, count int)
	AddResearchRequest(w econ.World, u *model.Upgrade) bool
	AddUpgradeToRequest(w econ.World, t *model.UnitType) bool
	SetCollect(c model.Costs)
	SetReserve(c model.Costs)
	Sleep(cycles int)
}

// ActionFunc changes the faction's plan when a rule's condition is true.
type ActionFunc func(env PlanEnv, p Planner) error

// Rule is one step of a build plan: a condition → action pair.
// The engine evaluates rules by priority and uses Category + Exclusive
// so only one request per category is added each evaluation.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	Once         bool        // fires at most once per rule set
	ConditionSrc string      // expr source (preserved for serialization)
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
