package econ

import (
	"github.com/nstehr/quartermaster/model"
)

// availableEquivalents returns typ followed by its interchangeable types,
// keeping those whose prerequisites the faction meets.
func (t *turn) availableEquivalents(typ *model.UnitType) []*model.UnitType {
	var out []*model.UnitType
	for _, e := range append([]*model.UnitType{typ}, t.caps.Equivalents(typ)...) {
		if t.w.CheckDepend(t.s.Player, e) {
			out = append(out, e)
		}
	}
	return out
}

// makeUnit orders one unit of typ (or an equivalent) from the first
// available producer. Buildings are placed near pos when it is on the map.
func (t *turn) makeUnit(typ *model.UnitType, pos model.Vec2) bool {
	for _, e := range t.availableEquivalents(typ) {
		var producers []*model.UnitType
		if e.Building {
			producers = t.caps.Builders(e)
		} else {
			producers = t.caps.Trainers(e)
		}
		if len(producers) == 0 {
			t.Logger.Debug("nothing known about type", "type", e.Ident, "op", "make")
			t.Recorder.Production(t.s.Player, e.Ident, OutcomeUnknown)
			continue
		}
		for _, p := range producers {
			if t.active[p] == 0 {
				continue
			}
			if e.Building {
				if t.buildBuilding(p, e, pos) {
					return true
				}
			} else if t.trainUnit(p, e) {
				return true
			}
		}
	}
	return false
}

// alreadyWorking reports whether a worker is building, repairing or has
// started gathering.
func alreadyWorking(u *model.Unit) bool {
	for _, o := range u.Orders {
		switch o := o.(type) {
		case *model.BuildOrder, *model.RepairOrder:
			return true
		case *model.ResourceOrder:
			if o.Started {
				return true
			}
		}
	}
	return false
}

func (t *turn) buildBuilding(builder, building *model.UnitType, near model.Vec2) bool {
	var workers []*model.Unit
	for _, u := range t.activeUnitsOf(builder) {
		if !alreadyWorking(u) {
			workers = append(workers, u)
		}
	}
	if len(workers) == 0 {
		return false
	}

	first := workers[0]
	if len(workers) > 1 {
		first = workers[t.rng.Next()%uint32(len(workers))]
	}
	if t.orderBuild(first, building, near) {
		return true
	}
	// One failed placement usually means every worker fails, so only keep
	// trying when the caller asked for a specific spot.
	if !t.w.IsPointOnMap(near) {
		return false
	}
	for _, u := range workers {
		if u != first && t.orderBuild(u, building, near) {
			return true
		}
	}
	return false
}

func (t *turn) orderBuild(worker *model.Unit, building *model.UnitType, near model.Vec2) bool {
	pos, ok := t.w.FindBuildingPlace(worker, building, near)
	if !ok {
		return false
	}
	t.w.Issue(model.Command{Unit: worker.ID, Order: &model.BuildOrder{Type: building, Goal: pos}})
	return true
}

func (t *turn) trainUnit(trainer, what *model.UnitType) bool {
	for _, u := range t.activeUnitsOf(trainer) {
		if u.IsIdle() {
			t.w.Issue(model.Command{Unit: u.ID, Order: &model.TrainOrder{Type: what}})
			return true
		}
	}
	return false
}

// AddResearchRequest starts researching u at the first idle researcher.
// One-shot upgrades already being researched are ignored.
func (m *Manager) AddResearchRequest(w World, u *model.Upgrade) bool {
	t := m.begin(w)
	if t.player == nil {
		return false
	}
	if t.player.Upgrades[u.Ident] {
		return false
	}
	if need := t.checkCosts(u.Costs); need != 0 {
		t.s.Needed |= need
		t.Recorder.Research(t.s.Player, u.Ident, OutcomeShort)
		return false
	}

	if table := t.caps.Researchers(u); len(table) > 0 {
		return t.research(table, u)
	}
	if table := t.caps.SingleResearchers(u); len(table) > 0 {
		if t.researching(u) {
			return false
		}
		return t.research(table, u)
	}
	t.Logger.Debug("nothing known about upgrade", "upgrade", u.Ident, "op", "research")
	t.Recorder.Research(t.s.Player, u.Ident, OutcomeUnknown)
	return false
}

func (t *turn) research(table []*model.UnitType, u *model.Upgrade) bool {
	for _, typ := range table {
		if t.active[typ] == 0 {
			continue
		}
		for _, unit := range t.activeUnitsOf(typ) {
			if unit.IsIdle() {
				t.w.Issue(model.Command{Unit: unit.ID, Order: &model.ResearchOrder{Upgrade: u}})
				t.Recorder.Research(t.s.Player, u.Ident, OutcomeIssued)
				return true
			}
		}
	}
	return false
}

func (t *turn) researching(u *model.Upgrade) bool {
	for _, unit := range t.units() {
		for _, o := range unit.Orders {
			if r, ok := o.(*model.ResearchOrder); ok && r.Upgrade == u {
				return true
			}
		}
	}
	return false
}

// AddUpgradeToRequest upgrades the first idle unit able to turn into typ.
func (m *Manager) AddUpgradeToRequest(w World, typ *model.UnitType) bool {
	t := m.begin(w)
	if t.player == nil {
		return false
	}
	if need := t.checkTypeCosts(typ); need != 0 {
		t.s.Needed |= need
		t.Recorder.Production(t.s.Player, typ.Ident, OutcomeShort)
		return false
	}
	if !t.w.CheckLimits(t.s.Player, typ) {
		t.Recorder.Production(t.s.Player, typ.Ident, OutcomeLimited)
		return false
	}
	table := t.caps.Upgraders(typ)
	if len(table) == 0 {
		t.Logger.Debug("nothing known about type", "type", typ.Ident, "op", "upgrade")
		t.Recorder.Production(t.s.Player, typ.Ident, OutcomeUnknown)
		return false
	}
	for _, from := range table {
		if t.active[from] > 0 && t.upgradeTo(from, typ) {
			t.Recorder.Production(t.s.Player, typ.Ident, OutcomeIssued)
			return true
		}
	}
	return false
}

func (t *turn) upgradeTo(from, what *model.UnitType) bool {
	if t.tuning.AIChecksDependencies && !t.w.CheckDepend(t.s.Player, what) {
		return false
	}
	for _, u := range t.activeUnitsOf(from) {
		if u.IsIdle() {
			t.w.Issue(model.Command{Unit: u.ID, Order: &model.UpgradeToOrder{Type: what}})
			return true
		}
	}
	return false
}

// NewDepotRequest handles a worker whose trips home have grown too long: it
// queues the cheapest depot type for the worker's resource at the harvest
// location, unless a depot is already close by or already queued.
func (m *Manager) NewDepotRequest(w World, worker *model.Unit) {
	t := m.begin(w)
	order, ok := worker.ResourceOrder()
	if !ok || t.player == nil {
		return
	}
	k := order.Kind
	pos := order.Goal
	if order.Target != 0 {
		if node := w.Unit(order.Target); node != nil {
			pos = node.Pos
		}
	}
	if pos.Valid() && w.FindDepositNear(t.s.Player, pos, t.tuning.NewDepotRange, k) != nil {
		return
	}

	var best *model.UnitType
	bestCost := 0
	for _, typ := range t.caps.Depots(k) {
		if t.s.requestedCount(typ) > 0 {
			return
		}
		if !t.requestAllowed(typ) {
			continue
		}
		if cost := typ.Costs.Sum(); best == nil || cost < bestCost {
			best, bestCost = typ, cost
		}
	}
	if best == nil {
		return
	}
	t.s.Queue = append(t.s.Queue, &ProductionRequest{Type: best, Wanted: 1, Pos: pos})
	t.Logger.Debug("depot requested", "type", best.Ident, "worker", worker.ID, "x", pos.X, "y", pos.Y)
}
