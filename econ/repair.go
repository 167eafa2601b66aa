package econ

import "github.com/nstehr/quartermaster/model"

// checkRepair dispatches at most one repair per call. The scan resumes after
// the unit the previous call stopped at so every unit gets its turn.
func (t *turn) checkRepair() {
	units := t.units()
	start := 0
	for i := len(units) - 1; i >= 0; i-- {
		if units[i].ID == t.s.LastRepairUnit {
			start = i + 1
		}
	}

	graceCycles := uint64(t.tuning.AttackedGraceSeconds * t.tuning.CyclesPerSecond)
	for _, u := range units[start:] {
		if !u.IsAliveOnMap() {
			continue
		}
		action := u.CurrentAction()

		if u.Type.RepairHP > 0 &&
			action != model.ActionBuilt && action != model.ActionUpgradeTo &&
			u.HP < u.MaxHP &&
			u.Attacked+graceCycles < t.cycle {
			if t.w.EnemiesInRange(t.s.Player, u.Pos, u.Type.SightRange) {
				continue
			}
			if t.canAffordRepair(u.Type) {
				t.repairUnit(u, "damaged")
				t.s.LastRepairUnit = u.ID
				return
			}
		}

		if action == model.ActionBuilt && !t.hasRepairer(u) && t.canAfford(u.Type.Costs) {
			t.repairUnit(u, "construction")
			t.s.LastRepairUnit = u.ID
			return
		}
	}
	t.s.LastRepairUnit = 0
}

// canAffordRepair requires a minimum stock of every resource the unit type
// is made of.
func (t *turn) canAffordRepair(typ *model.UnitType) bool {
	for k := model.CostKind(1); k < model.MaxCosts; k++ {
		if typ.Costs[k] > 0 && t.player.Available(k) < t.tuning.RepairMinReserve {
			return false
		}
	}
	return true
}

func (t *turn) canAfford(costs model.Costs) bool {
	for k := model.CostKind(1); k < model.MaxCosts; k++ {
		if t.player.Available(k) < costs[k] {
			return false
		}
	}
	return true
}

func (t *turn) hasRepairer(target *model.Unit) bool {
	for _, u := range t.units() {
		if o, ok := u.CurrentOrder().(*model.RepairOrder); ok && o.Target == target.ID {
			return true
		}
	}
	return false
}

func (t *turn) repairUnit(target *model.Unit, reason string) bool {
	table := t.caps.Repairers(target.Type)
	if len(table) == 0 {
		t.Logger.Debug("nothing known about type", "type", target.Type.Ident, "op", "repair")
		return false
	}
	for _, typ := range table {
		if t.active[typ] > 0 && t.repairWith(typ, target) {
			t.Logger.Debug("repair dispatched", "target", target.ID, "type", target.Type.Ident, "reason", reason)
			t.Recorder.Repair(t.s.Player, reason)
			return true
		}
	}
	return false
}

// readyToRepair reports whether a worker is idle or only walking to a
// resource it has not started on.
func readyToRepair(u *model.Unit) bool {
	if u.IsIdle() {
		return true
	}
	if len(u.Orders) == 1 {
		if o, ok := u.Orders[0].(*model.ResourceOrder); ok && !o.Started {
			return true
		}
	}
	return false
}

// repairWith sends the nearest ready worker of type typ within repair range.
func (t *turn) repairWith(typ *model.UnitType, target *model.Unit) bool {
	if typ.RepairRange == 0 {
		return false
	}
	cands := t.w.SelectUnits(target.Pos, t.tuning.RepairRange, func(u *model.Unit) bool {
		return u.Owner == t.s.Player && u.Active && u.Type == typ && readyToRepair(u)
	})
	var best *model.Unit
	bestDist := 0
	for _, u := range cands {
		if d := t.w.MapDistance(u.Pos, target.Pos); best == nil || d < bestDist {
			best, bestDist = u, d
		}
	}
	if best == nil {
		return false
	}
	t.w.Issue(model.Command{Unit: best.ID, Order: &model.RepairOrder{Target: target.ID, Goal: model.NoPos}})
	return true
}
