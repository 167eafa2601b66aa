package agent

import (
	"fmt"

	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/ipc"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/world"
)

// EventKind identifies something that happened to a faction's economy.
type EventKind string

const (
	// Detected by diffing consecutive observations.
	EventCompleted         EventKind = "completed"
	EventLost              EventKind = "lost"
	EventHarvestersLost    EventKind = "harvesters_lost"
	EventDepotLost         EventKind = "depot_lost"
	EventSupplyBlocked     EventKind = "supply_blocked"
	EventProductionStalled EventKind = "production_stalled"

	// Reported by the host (or the world stepper in sim runs).
	EventDepotFar     EventKind = "depot_far"
	EventDepotCrowded EventKind = "depot_crowded"
	EventCaptured     EventKind = "captured"
)

// Event is a change to one faction's economy.
type Event struct {
	Kind   EventKind
	Cycle  uint64
	Unit   int
	Target int
	Type   *model.UnitType
	Detail string
}

// harvesterLossThreshold is how many harvesters must vanish between two
// observations to raise EventHarvestersLost.
const harvesterLossThreshold = 3

// stallCycles is how long the queue may sit on a shortfall before
// EventProductionStalled fires.
const stallCycles = 900

type unitMark struct {
	typ    *model.UnitType
	active bool
}

// stateSnapshot captures the diffable fields of one observation.
type stateSnapshot struct {
	cycle   uint64
	units   map[int]unitMark
	blocked bool // supply blocked: demand reached supply and more is needed

	// stalledSince is the cycle the current shortfall streak began; carried
	// forward between observations.
	stalledSince uint64
	stalled      bool
	reported     bool // EventProductionStalled already raised for this streak
}

func takeSnapshot(m *econ.Manager, w econ.World) stateSnapshot {
	s := stateSnapshot{cycle: w.Cycle(), units: make(map[int]unitMark)}
	for _, u := range w.Units(m.State.Player) {
		s.units[u.ID] = unitMark{typ: u.Type, active: u.Active}
	}
	if p := w.Player(m.State.Player); p != nil {
		s.blocked = m.State.NeedsSupply && p.Demand >= p.Supply
	}
	return s
}

// stalledNow reports whether some request still wants units while the last
// pass was short of resources.
func stalledNow(m *econ.Manager) bool {
	if m.State.LastNeeded == 0 {
		return false
	}
	for _, r := range m.State.Queue {
		if r.Pending() {
			return true
		}
	}
	return false
}

// detectEvents compares cur against prev and carries the stall streak
// forward into cur. A nil prev yields no events.
func detectEvents(m *econ.Manager, prev *stateSnapshot, cur *stateSnapshot) []Event {
	if prev == nil {
		if stalledNow(m) {
			cur.stalled, cur.stalledSince = true, cur.cycle
		}
		return nil
	}
	var events []Event
	ev := func(kind EventKind, unit int, t *model.UnitType, detail string) {
		events = append(events, Event{Kind: kind, Cycle: cur.cycle, Unit: unit, Type: t, Detail: detail})
	}

	for _, id := range sortedIDs(cur.units) {
		now := cur.units[id]
		if !now.active {
			continue
		}
		was, seen := prev.units[id]
		switch {
		case !seen || !was.active:
			ev(EventCompleted, id, now.typ, "")
		case was.typ != now.typ:
			ev(EventCompleted, id, now.typ, fmt.Sprintf("upgraded from %s", was.typ.Ident))
		}
	}

	lostHarvesters := 0
	for _, id := range sortedIDs(prev.units) {
		was := prev.units[id]
		if _, ok := cur.units[id]; ok {
			continue
		}
		if !was.active {
			ev(EventLost, id, was.typ, "destroyed before completion")
			continue
		}
		if was.typ.IsHarvester() {
			lostHarvesters++
		}
		if was.typ.IsDepot() {
			ev(EventDepotLost, id, was.typ, "")
		}
	}
	if lostHarvesters >= harvesterLossThreshold {
		ev(EventHarvestersLost, 0, nil, fmt.Sprintf("%d harvesters lost", lostHarvesters))
	}

	if cur.blocked && !prev.blocked {
		ev(EventSupplyBlocked, 0, nil, "")
	}

	if stalledNow(m) {
		cur.stalled = true
		cur.stalledSince = cur.cycle
		if prev.stalled {
			cur.stalledSince, cur.reported = prev.stalledSince, prev.reported
		}
		if !cur.reported && cur.cycle-cur.stalledSince >= stallCycles {
			cur.reported = true
			ev(EventProductionStalled, 0, nil, fmt.Sprintf("short of %b since cycle %d", m.State.LastNeeded, cur.stalledSince))
		}
	}
	return events
}

// FromHost converts host-reported events, dropping kinds the sidecar does
// not act on.
func FromHost(cycle uint64, hevs []ipc.HostEvent) []Event {
	var out []Event
	for _, h := range hevs {
		switch k := EventKind(h.Kind); k {
		case EventDepotFar, EventDepotCrowded, EventCaptured:
			out = append(out, Event{Kind: k, Cycle: cycle, Unit: h.Unit, Target: h.Target})
		}
	}
	return out
}

// FromWorld converts the world stepper's depot events for player.
func FromWorld(w *world.Map, player int, wevs []world.Event) []Event {
	var out []Event
	for _, e := range wevs {
		if e.Owner != player {
			continue
		}
		switch e.Kind {
		case world.EventDepotFar:
			out = append(out, Event{Kind: EventDepotFar, Cycle: w.Cycle(), Unit: e.Unit})
		case world.EventDepotCrowded:
			out = append(out, Event{Kind: EventDepotCrowded, Cycle: w.Cycle(), Unit: e.Unit})
		}
	}
	return out
}
