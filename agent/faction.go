package agent

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/journal"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/rules"
)

// EventRecorder counts economy events.
type EventRecorder interface {
	Event(faction int, kind string)
}

type nopEvents struct{}

func (nopEvents) Event(int, string) {}

// Faction drives one AI faction: it turns observations into scheduler
// calls and evaluates the faction's build plan.
type Faction struct {
	Manager *econ.Manager
	Engine  *rules.Engine // nil: no build plan
	Types   model.TypeResolver
	Events  EventRecorder

	prev *stateSnapshot
}

func NewFaction(m *econ.Manager, engine *rules.Engine, types model.TypeResolver) *Faction {
	return &Faction{Manager: m, Engine: engine, Types: types, Events: nopEvents{}}
}

func (f *Faction) player() int { return f.Manager.State.Player }

// Observe applies reported events, then diffs w against the previous
// observation and applies what changed. It returns every event handled.
func (f *Faction) Observe(w econ.World, reported []Event) []Event {
	for _, e := range reported {
		f.apply(w, e)
	}
	cur := takeSnapshot(f.Manager, w)
	detected := detectEvents(f.Manager, f.prev, &cur)
	for _, e := range detected {
		f.apply(w, e)
	}
	f.prev = &cur
	return append(slices.Clip(reported), detected...)
}

func (f *Faction) apply(w econ.World, e Event) {
	m := f.Manager
	f.Events.Event(f.player(), string(e.Kind))
	switch e.Kind {
	case EventCompleted:
		m.UnitCompleted(e.Type)
	case EventLost:
		m.UnitLost(e.Type)
	case EventDepotFar:
		if u := w.Unit(e.Unit); u != nil && u.Owner == f.player() {
			m.NewDepotRequest(w, u)
		}
	case EventDepotCrowded:
		if u := w.Unit(e.Unit); u != nil && u.Owner == f.player() {
			m.RedirectHarvester(w, u)
		}
	case EventCaptured:
		caster, target := w.Unit(e.Unit), w.Unit(e.Target)
		if caster != nil && target != nil {
			m.JoinCaptured(w, caster, target)
		}
	case EventHarvestersLost, EventDepotLost, EventSupplyBlocked, EventProductionStalled:
		m.Logger.Info("economy event", "kind", e.Kind, "cycle", e.Cycle, "unit", e.Unit, "detail", e.Detail)
	}
	if e.Type != nil {
		slog.Debug("event applied", "faction", f.player(), "kind", e.Kind, "unit", e.Unit, "type", e.Type.Ident)
	}
}

// Plan evaluates the build plan and returns the rules that fired.
func (f *Faction) Plan(w econ.World) []string {
	if f.Engine == nil {
		return nil
	}
	return f.Engine.Evaluate(rules.NewPlanEnv(f.Manager, w, f.Types), f.Manager)
}

// TickRow summarises the pass that just ran for the tick index.
func (f *Faction) TickRow(cycle uint64, explorations, commands int) journal.TickRow {
	s := f.Manager.State
	return journal.TickRow{
		Cycle:        cycle,
		Faction:      s.Player,
		NeededMask:   uint32(s.LastNeeded),
		QueueLen:     len(s.Queue),
		Explorations: explorations,
		Commands:     commands,
	}
}

func sortedIDs[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}
