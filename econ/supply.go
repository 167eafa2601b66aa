package econ

import (
	"cmp"
	"slices"

	"github.com/nstehr/quartermaster/model"
)

// checkSupply reports whether typ fits in the faction's supply, counting
// supply buildings already started from the queue and the demand of every
// queued unit already made. Requests are walked in queue order and the
// check fails as soon as the running total goes negative.
func (t *turn) checkSupply(typ *model.UnitType) bool {
	queue := t.s.requests()
	remaining := 0
	for _, r := range queue {
		if r.Type.Supply > 0 {
			remaining += r.Made * r.Type.Supply
		}
	}

	remaining += t.player.Supply - t.player.Demand - typ.Demand
	if remaining < 0 {
		return false
	}
	for _, r := range queue {
		remaining -= r.Made * r.Type.Demand
		if remaining < 0 {
			return false
		}
	}
	return true
}

// requestAllowed reports whether some active builder can put up typ and its
// prerequisites are met.
func (t *turn) requestAllowed(typ *model.UnitType) bool {
	for _, b := range t.caps.Builders(typ) {
		if t.active[b] > 0 && t.w.CheckDepend(t.s.Player, typ) {
			return true
		}
	}
	return false
}

type supplyCandidate struct {
	typ  *model.UnitType
	cost int // resources per point of supply, rounded up
	need model.CostMask
}

// requestSupply starts the cheapest supply building. It returns true while
// supply is still needed: when sleeping, or when nothing could be started.
// A started building is put at the front of the queue as already made.
func (t *turn) requestSupply() bool {
	if t.s.SleepCycles != 0 {
		return true
	}

	var cands []supplyCandidate
	for _, typ := range t.caps.SupplyProducers() {
		if t.s.requestedCount(typ) > 0 {
			return false
		}
		if !t.requestAllowed(typ) {
			continue
		}
		cands = append(cands, supplyCandidate{
			typ:  typ,
			cost: (typ.Costs.Sum() + typ.Supply - 1) / typ.Supply,
			need: t.checkTypeCosts(typ),
		})
	}
	if len(cands) == 0 {
		return true
	}
	slices.SortStableFunc(cands, func(a, b supplyCandidate) int { return cmp.Compare(a.cost, b.cost) })

	best := cands[0]
	if best.need == 0 && t.makeUnit(best.typ, model.NoPos) {
		t.insertFront(&ProductionRequest{Type: best.typ, Wanted: 1, Made: 1, Pos: model.NoPos})
		t.Logger.Debug("supply requested", "type", best.typ.Ident, "costPerSupply", best.cost)
		t.Recorder.Production(t.s.Player, best.typ.Ident, OutcomeIssued)
		return false
	}
	t.s.Needed |= best.need
	t.Logger.Debug("supply blocked", "type", best.typ.Ident, "needed", best.need.Format(t.caps.ResourceNames()))
	return true
}
