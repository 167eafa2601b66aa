package econ

import (
	"cmp"
	"slices"

	"github.com/nstehr/quartermaster/model"
)

// Census classifies a faction's harvesters for one allocation pass. It is
// rebuilt from live unit state every time and never cached.
type Census struct {
	Assigned  [model.MaxCosts][]*model.Unit // gathering kind k and nothing else
	Returning [model.MaxCosts][]*model.Unit // carrying kind k home, counted toward k
	// Unassigned lists every idle empty-handed worker under each kind it
	// can gather; Idle lists each of them once.
	Unassigned [model.MaxCosts][]*model.Unit
	Idle       []*model.Unit
	Busy       int // building, repairing, fighting...
	Total      int // Assigned + Returning + Idle
}

// Classified returns the number of distinct harvesters in the census.
func (c *Census) Classified() int {
	n := len(c.Idle)
	for k := range c.Assigned {
		n += len(c.Assigned[k]) + len(c.Returning[k])
	}
	return n
}

func takeCensus(units []*model.Unit) Census {
	var c Census
	for _, u := range units {
		if !u.Type.IsHarvester() {
			continue
		}
		if len(u.Orders) == 1 {
			switch o := u.Orders[0].(type) {
			case *model.ResourceOrder:
				c.Assigned[o.Kind] = append(c.Assigned[o.Kind], u)
				c.Total++
				continue
			case *model.ReturnGoodsOrder:
				if u.ResourcesHeld > 0 {
					c.Returning[u.CurrentResource] = append(c.Returning[u.CurrentResource], u)
					c.Total++
					continue
				}
			}
		}
		if !u.IsIdle() {
			c.Busy++
			continue
		}
		if u.ResourcesHeld > 0 {
			c.Returning[u.CurrentResource] = append(c.Returning[u.CurrentResource], u)
			c.Total++
			continue
		}
		for k := model.CostKind(1); k < model.MaxCosts; k++ {
			if u.Type.CanHarvest(k) {
				c.Unassigned[k] = append(c.Unassigned[k], u)
			}
		}
		c.Idle = append(c.Idle, u)
		c.Total++
	}
	return c
}

// Census classifies the faction's harvesters without changing anything.
func (m *Manager) Census(w World) Census {
	return takeCensus(w.Units(m.State.Player))
}

// quota turns the collect weights into wanted harvester counts. Weights of
// kinds in the needed mask count double.
func (t *turn) quota(total int) [model.MaxCosts]int {
	var percent, wanted [model.MaxCosts]int
	percentTotal := 100
	for k := model.CostKind(1); k < model.MaxCosts; k++ {
		percent[k] = t.s.Collect[k]
		if t.s.Needed.Has(k) {
			percentTotal += percent[k]
			percent[k] <<= 1
		}
	}
	n := max(total, t.tuning.SmallEconomyHarvesters)
	for k := 1; k < model.MaxCosts; k++ {
		if percent[k] > 0 {
			wanted[k] = 1 + percent[k]*n/percentTotal
		}
	}
	return wanted
}

// collectResources redistributes harvesters across resource kinds. Idle
// workers go to the highest ranked kind they can reach, quota met or not;
// when a needy kind has no idle worker it may take one from a kind that
// needs fewer. The pass ends when a round over every kind moves nobody.
func (t *turn) collectResources() {
	c := takeCensus(t.units())
	for k, list := range c.Returning {
		for _, u := range list {
			if u.IsIdle() {
				t.w.Issue(model.Command{Unit: u.ID, Order: &model.ReturnGoodsOrder{}})
				t.Recorder.Harvest(t.s.Player, t.resourceName(model.CostKind(k)), OutcomeReturned)
			}
		}
	}
	if c.Total == 0 {
		return
	}

	wanted := t.quota(c.Total)
	var need [model.MaxCosts]int
	assigned := c.Assigned
	unassigned := c.Unassigned
	for k := 1; k < model.MaxCosts; k++ {
		need[k] = wanted[k] - len(assigned[k]) - len(c.Returning[k])
		// Workers carrying little are the cheapest to move.
		slices.SortStableFunc(assigned[k], func(a, b *model.Unit) int {
			return cmp.Compare(a.ResourcesHeld, b.ResourcesHeld)
		})
	}

	order := make([]model.CostKind, 0, model.MaxCosts-1)
	for k := model.CostKind(1); k < model.MaxCosts; k++ {
		order = append(order, k)
	}
	for {
		slices.SortStableFunc(order, func(a, b model.CostKind) int { return cmp.Compare(need[b], need[a]) })

		moved := false
		for i, k := range order {
			var u *model.Unit
			if u = t.takeIdle(&unassigned, k); u != nil {
				t.Logger.Debug("harvester assigned", "unit", u.ID, "resource", t.resourceName(k))
				t.Recorder.Harvest(t.s.Player, t.resourceName(k), OutcomeAssigned)
			} else if need[k] <= 0 {
				continue
			} else if u = t.steal(&assigned, order[i+1:], k, wanted, &need); u != nil {
				t.Logger.Debug("harvester moved", "unit", u.ID, "resource", t.resourceName(k))
				t.Recorder.Harvest(t.s.Player, t.resourceName(k), OutcomeStolen)
			} else {
				continue
			}
			// u now counts toward k for the steal rules.
			assigned[k] = append(assigned[k], u)
			need[k]--
			moved = true
			break
		}
		if !moved {
			return
		}
	}
}

// takeIdle assigns the first idle worker of kind k that can be attached to
// a resource. Workers that cannot are dropped from k's pool; the assigned
// one is dropped from every pool.
func (t *turn) takeIdle(pools *[model.MaxCosts][]*model.Unit, k model.CostKind) *model.Unit {
	for len(pools[k]) > 0 {
		u := pools[k][0]
		if !t.assignHarvester(u, k) {
			pools[k] = swapRemove(pools[k], 0)
			continue
		}
		for j := range pools {
			if i := slices.Index(pools[j], u); i >= 0 {
				pools[j] = swapRemove(pools[j], i)
			}
		}
		return u
	}
	return nil
}

// steal moves one worker to kind k from a lower-ranked kind. A source kind
// is left alone when it wants more workers than k, or as many while having
// at most one more, or when it needs as much as k. Workers on their way
// home with a full load are never moved.
func (t *turn) steal(assigned *[model.MaxCosts][]*model.Unit, lower []model.CostKind, k model.CostKind, wanted [model.MaxCosts]int, need *[model.MaxCosts]int) *model.Unit {
	for _, src := range lower {
		if wanted[src] > wanted[k] ||
			(wanted[src] == wanted[k] && len(assigned[src]) <= len(assigned[k])+1) ||
			need[src] >= need[k] {
			continue
		}
		for i := len(assigned[src]) - 1; i >= 0; i-- {
			u := assigned[src][i]
			o, ok := u.ResourceOrder()
			if !ok || o.Finished {
				continue
			}
			if !u.Type.CanHarvest(k) || !t.assignHarvester(u, k) {
				continue
			}
			assigned[src] = swapRemove(assigned[src], i)
			need[src]++
			return u
		}
	}
	return nil
}

func swapRemove(list []*model.Unit, i int) []*model.Unit {
	last := len(list) - 1
	list[i] = list[last]
	return list[:last]
}

// assignHarvester sends u to gather kind k: terrain harvesters to the
// nearest field of the kind, others to the nearest resource node from their
// nearest depot. When nothing is in reach an exploration request is left
// at the worker's position.
func (t *turn) assignHarvester(u *model.Unit, k model.CostKind) bool {
	if u.Removed {
		return false
	}
	info := u.Type.Harvests[k]
	if info == nil {
		return false
	}
	r := t.tuning.HarvestSearchRange

	if info.TerrainHarvester {
		field := t.caps.ResourceField(k)
		if pos, ok := t.w.FindTerrain(u.Type.MoveType.Mask(), field, r, t.s.Player, u.Pos); ok {
			t.w.Issue(model.Command{Unit: u.ID, Order: &model.ResourceOrder{Kind: k, Goal: pos}})
			return true
		}
		t.explore(u.Pos, model.MoveLand)
		return false
	}

	from := u.Pos
	depotID := 0
	if depot := t.w.FindDeposit(u, r, k); depot != nil {
		from, depotID = depot.Pos, depot.ID
	}
	if node := t.w.FindResource(u, from, r, k); node != nil {
		t.w.Issue(model.Command{Unit: u.ID, Order: &model.ResourceOrder{Kind: k, Target: node.ID, Goal: node.Pos, Depot: depotID}})
		return true
	}

	var mask model.MoveMask
	for _, g := range t.caps.Givers(k) {
		mask |= g.MoveType.Mask()
	}
	t.explore(u.Pos, mask)
	t.Recorder.Harvest(t.s.Player, t.resourceName(k), OutcomeFailed)
	return false
}
