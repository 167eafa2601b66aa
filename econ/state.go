package econ

import "github.com/nstehr/quartermaster/model"

// ProductionRequest is a queued intent to build or train Wanted units of
// Type. Satisfied requests stay in the queue; the supply planner and the
// "already ordered" checks count them.
type ProductionRequest struct {
	Type    *model.UnitType
	Wanted  int
	Made    int
	Pos     model.Vec2 // placement hint, model.NoPos for none
	RetryAt uint64     // cycle before which a failed building is not retried
}

// Pending reports whether more units are still wanted.
func (r *ProductionRequest) Pending() bool { return r.Wanted > r.Made }

// ExplorationRequest marks a region that blocked an allocation.
type ExplorationRequest struct {
	Pos  model.Vec2
	Mask model.MoveMask
}

// Force is a group of units managed together. Captured units join the
// capturer's force.
type Force struct {
	ID    int
	Units []int
}

// Has reports whether the unit is in the force.
func (f *Force) Has(id int) bool {
	for _, u := range f.Units {
		if u == id {
			return true
		}
	}
	return false
}

// FactionState is the scheduler's per-faction memory. Only the faction's own
// Manager mutates it.
type FactionState struct {
	Player int

	Queue   []*ProductionRequest
	pending []*ProductionRequest // front inserts made while Queue is being walked

	Used       model.Costs
	Reserve    model.Costs
	Collect    model.Costs // harvest weights in percent
	Needed     model.CostMask
	LastNeeded model.CostMask // Needed as it stood at the end of the previous tick

	NeedsSupply    bool
	SleepCycles    int
	LastRepairUnit int // ID of the unit the last repair scan stopped at; 0 = none

	Explorations []ExplorationRequest
	Forces       []*Force
}

// NewFactionState returns an empty state for player.
func NewFactionState(player int) *FactionState {
	return &FactionState{Player: player}
}

// requests returns the queue as it will look once pending inserts are
// spliced in.
func (s *FactionState) requests() []*ProductionRequest {
	if len(s.pending) == 0 {
		return s.Queue
	}
	out := make([]*ProductionRequest, 0, len(s.pending)+len(s.Queue))
	out = append(out, s.pending...)
	return append(out, s.Queue...)
}

// requestedCount sums Wanted over every request for t.
func (s *FactionState) requestedCount(t *model.UnitType) int {
	n := 0
	for _, r := range s.requests() {
		if r.Type == t {
			n += r.Wanted
		}
	}
	return n
}

// ForceOf returns the force holding the unit, or nil.
func (s *FactionState) ForceOf(id int) *Force {
	for _, f := range s.Forces {
		if f.Has(id) {
			return f
		}
	}
	return nil
}
