// Package econ is the per-faction production and resource-allocation
// scheduler: it advances the production queue, plans supply, distributes
// harvesters across resource kinds, picks depots and dispatches repairs.
//
// A Manager owns one faction's FactionState. Every entry point takes the
// World explicitly; nothing is kept in package globals, so managers for
// different factions never share mutable state.
package econ

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/nstehr/quartermaster/model"
)

// Manager schedules one AI faction.
type Manager struct {
	State    *FactionState
	Recorder Recorder
	Logger   *slog.Logger

	caps     Capabilities
	rng      Random
	tuning   Tuning
	lastTick uint64
	ticked   bool
}

// NewManager returns a manager for player with an empty queue and a no-op
// recorder.
func NewManager(player int, caps Capabilities, rng Random, tuning Tuning) *Manager {
	return &Manager{
		State:    NewFactionState(player),
		Recorder: NopRecorder,
		Logger:   slog.Default().With("faction", player),
		caps:     caps,
		rng:      rng,
		tuning:   tuning,
	}
}

// Tuning returns the constants the manager was built with.
func (m *Manager) Tuning() Tuning { return m.tuning }

// turn is the context of one entry-point call: the manager, the world it
// acts on and values fixed for the duration of the call.
type turn struct {
	*Manager
	w      World
	s      *FactionState
	player *model.Player
	cycle  uint64
	active map[*model.UnitType]int

	walking bool // checkWork is iterating the queue
}

func (m *Manager) begin(w World) *turn {
	t := &turn{
		Manager: m,
		w:       w,
		s:       m.State,
		player:  w.Player(m.State.Player),
		cycle:   w.Cycle(),
		active:  make(map[*model.UnitType]int),
	}
	for _, u := range w.Units(m.State.Player) {
		if u.Active {
			t.active[u.Type]++
		}
	}
	return t
}

func (t *turn) units() []*model.Unit { return t.w.Units(t.s.Player) }

// activeUnitsOf returns the faction's active units of type typ.
func (t *turn) activeUnitsOf(typ *model.UnitType) []*model.Unit {
	var out []*model.Unit
	for _, u := range t.units() {
		if u.Active && u.Type == typ {
			out = append(out, u)
		}
	}
	return out
}

func (t *turn) resourceName(k model.CostKind) string { return t.caps.ResourceNames()[k] }

// Tick runs one scheduling pass: production queue, supply in advance,
// harvester allocation on this faction's phase, repair, then clears the
// needed mask.
func (m *Manager) Tick(w World) {
	t := m.begin(w)
	if t.player == nil {
		m.Logger.Warn("tick for unknown player")
		return
	}
	m.advanceSleep(t.cycle)

	t.checkWork()
	if !t.s.NeedsSupply && t.player.Supply == t.player.Demand {
		t.requestSupply()
	}
	if t.collectDue() {
		t.collectResources()
	}
	t.checkRepair()

	m.Recorder.Needed(t.s.Player, t.s.Needed)
	t.s.LastNeeded, t.s.Needed = t.s.Needed, 0
}

func (m *Manager) advanceSleep(cycle uint64) {
	if m.ticked && m.State.SleepCycles > 0 {
		elapsed := int(cycle - m.lastTick)
		m.State.SleepCycles = max(0, m.State.SleepCycles-elapsed)
	}
	m.lastTick, m.ticked = cycle, true
}

// collectDue staggers harvester allocation so a faction always runs on the
// same phase of the collect interval.
func (t *turn) collectDue() bool {
	sec := t.cycle / uint64(t.tuning.CyclesPerSecond)
	iv := uint64(t.tuning.CollectInterval)
	return sec%iv == uint64(t.s.Player)%iv
}

// AddUnitTypeRequest appends a request for count units of typ.
func (m *Manager) AddUnitTypeRequest(typ *model.UnitType, count int) {
	m.State.Queue = append(m.State.Queue, &ProductionRequest{Type: typ, Wanted: count, Pos: model.NoPos})
	m.Logger.Debug("production requested", "type", typ.Ident, "count", count)
}

// Requested returns how many units of typ the queue asks for in total.
func (m *Manager) Requested(typ *model.UnitType) int { return m.State.requestedCount(typ) }

// SetCollect sets the harvest weights in percent per resource kind.
func (m *Manager) SetCollect(c model.Costs) { m.State.Collect = c }

// SetReserve sets the amounts production must leave untouched.
func (m *Manager) SetReserve(c model.Costs) { m.State.Reserve = c }

// Sleep suppresses supply requests for the given number of cycles.
func (m *Manager) Sleep(cycles int) { m.State.SleepCycles = cycles }

// Scheduler ticks the managers of every AI faction once per simulated
// second, in faction index order.
type Scheduler struct {
	managers []*Manager
	last     uint64
	started  bool
}

// NewScheduler returns a scheduler over managers, kept in faction order.
func NewScheduler(managers ...*Manager) *Scheduler {
	s := &Scheduler{}
	for _, m := range managers {
		s.Add(m)
	}
	return s
}

// Add registers a manager, keeping faction index order.
// Add inserts m in faction order.
func (s *Scheduler) Add(m *Manager) {
	i, _ := slices.BinarySearchFunc(s.managers, m.State.Player, func(x *Manager, p int) int {
		return cmp.Compare(x.State.Player, p)
	})
	s.managers = slices.Insert(s.managers, i, m)
}

func (s *Scheduler) Managers() []*Manager { return s.managers }

// Manager returns the manager for the faction, or nil.
func (s *Scheduler) Manager(player int) *Manager {
	for _, m := range s.managers {
		if m.State.Player == player {
			return m
		}
	}
	return nil
}

// Step ticks every manager if w's cycle entered a new simulated second
// since the last call. It reports whether the managers ran.
func (s *Scheduler) Step(w World) bool {
	if len(s.managers) == 0 {
		return false
	}
	cps := uint64(s.managers[0].tuning.CyclesPerSecond)
	cycle := w.Cycle()
	if s.started && cycle/cps == s.last/cps {
		return false
	}
	s.last, s.started = cycle, true
	for _, m := range s.managers {
		m.Tick(w)
	}
	return true
}
