package econ

import "github.com/nstehr/quartermaster/model"

// checkCosts returns the kinds the faction cannot afford for costs, after
// subtracting the reserve and what pending Build orders will consume. Used
// is recomputed from scratch on every call.
func (t *turn) checkCosts(costs model.Costs) model.CostMask {
	t.s.Used = model.Costs{}
	for _, u := range t.units() {
		for _, o := range u.Orders {
			if b, ok := o.(*model.BuildOrder); ok {
				for k := 1; k < model.MaxCosts; k++ {
					t.s.Used[k] += b.Type.Costs[k]
				}
			}
		}
	}

	var need model.CostMask
	for k := model.CostKind(1); k < model.MaxCosts; k++ {
		want := costs[k] - t.s.Reserve[k]
		if want <= 0 {
			continue
		}
		if t.player.Available(k)-t.s.Used[k] < want {
			need = need.With(k)
		}
	}
	return need
}

func (t *turn) checkTypeCosts(typ *model.UnitType) model.CostMask { return t.checkCosts(typ.Costs) }
