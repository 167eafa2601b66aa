package econ

import (
	"cmp"
	"slices"

	"github.com/nstehr/quartermaster/model"
)

// SuitableDepot picks another depot for a gathering worker whose current
// one has become a poor choice, paired with a resource node near it. It
// returns nils when the faction has fewer than two usable depots for the
// resource or none qualifies.
func (m *Manager) SuitableDepot(w World, worker *model.Unit, oldDepot *model.Unit) (depot, node *model.Unit) {
	order, ok := worker.ResourceOrder()
	if !ok {
		return nil, nil
	}
	k := order.Kind
	tun := m.tuning

	var depots []*model.Unit
	for _, u := range w.Units(worker.Owner) {
		if u.Type.CanStore[k] && !u.Unusable && u.IsAliveOnMap() {
			depots = append(depots, u)
		}
	}
	if len(depots) < 2 {
		return nil, nil
	}
	slices.SortStableFunc(depots, func(a, b *model.Unit) int {
		return cmp.Compare(w.MapDistance(a.Pos, worker.Pos), w.MapDistance(b.Pos, worker.Pos))
	})

	threatened := w.EnemiesInRange(worker.Owner, worker.Pos, tun.DepotRange)
	for _, d := range depots {
		if d == oldDepot || d.Refs > tun.DepotCrowding || threatened {
			continue
		}
		if res := w.FindResource(worker, d.Pos, tun.DepotRange, k); res != nil {
			return d, res
		}
	}
	return nil, nil
}

// RedirectHarvester moves a gathering worker to a better depot and the
// resource node next to it, as picked by SuitableDepot.
func (m *Manager) RedirectHarvester(w World, worker *model.Unit) bool {
	order, ok := worker.ResourceOrder()
	if !ok {
		return false
	}
	var old *model.Unit
	if order.Depot != 0 {
		old = w.Unit(order.Depot)
	}
	depot, node := m.SuitableDepot(w, worker, old)
	if depot == nil {
		return false
	}
	w.Issue(model.Command{Unit: worker.ID, Order: &model.ResourceOrder{
		Kind:   order.Kind,
		Target: node.ID,
		Goal:   node.Pos,
		Depot:  depot.ID,
	}})
	m.Logger.Debug("harvester redirected", "unit", worker.ID, "depot", depot.ID, "node", node.ID)
	m.Recorder.Harvest(m.State.Player, m.caps.ResourceNames()[order.Kind], OutcomeRedirected)
	return true
}
