package econ

import "github.com/nstehr/quartermaster/model"

// explore records that the region around pos should be scouted by units
// moving with mask. Newest requests go first.
func (t *turn) explore(pos model.Vec2, mask model.MoveMask) {
	if !t.tuning.AIExplores {
		return
	}
	t.s.Explorations = append([]ExplorationRequest{{Pos: pos, Mask: mask}}, t.s.Explorations...)
	t.Recorder.Exploration(t.s.Player)
}

// Explorations returns the pending exploration requests, newest first.
func (m *Manager) Explorations() []ExplorationRequest { return m.State.Explorations }

// DrainExplorations hands the pending requests to a scout and clears them.
func (m *Manager) DrainExplorations() []ExplorationRequest {
	out := m.State.Explorations
	m.State.Explorations = nil
	return out
}
