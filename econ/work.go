package econ

import "github.com/nstehr/quartermaster/model"

// insertFront queues r ahead of everything else. While checkWork walks the
// queue the insert is held in pending and spliced in after the walk.
func (t *turn) insertFront(r *ProductionRequest) {
	if t.walking {
		t.s.pending = append([]*ProductionRequest{r}, t.s.pending...)
		return
	}
	t.s.Queue = append([]*ProductionRequest{r}, t.s.Queue...)
}

// checkWork advances the production queue once.
func (t *turn) checkWork() {
	s := t.s
	if s.NeedsSupply && (len(s.Queue) == 0 || s.Queue[0].Type.Supply == 0) {
		s.NeedsSupply = false
		t.requestSupply()
	}

	t.walking = true
	for _, r := range s.Queue {
		t.advance(r)
	}
	t.walking = false

	if len(s.pending) > 0 {
		s.Queue = append(s.pending, s.Queue...)
		s.pending = nil
	}
}

func (t *turn) advance(r *ProductionRequest) {
	s := t.s
	typ := r.Type
	newSupply := false
	if typ.Demand > 0 && !t.checkSupply(typ) {
		s.NeedsSupply = true
		newSupply = true
	}

	if r.Pending() && !t.w.CheckLimits(s.Player, typ) {
		t.Recorder.Production(s.Player, typ.Ident, OutcomeLimited)
		return
	}
	// A shortfall only skips this request; cheaper ones further down the
	// queue still get their chance.
	if need := t.checkTypeCosts(typ); need != 0 {
		s.Needed |= need
		if r.Pending() {
			t.Recorder.Production(s.Player, typ.Ident, OutcomeShort)
		}
		return
	}
	switch {
	case !r.Pending():
	case r.RetryAt > t.cycle:
		t.Recorder.Production(s.Player, typ.Ident, OutcomeBackoff)
	case t.makeUnit(typ, r.Pos):
		r.Made++
		r.RetryAt = 0
		t.Logger.Debug("production issued", "type", typ.Ident, "made", r.Made, "wanted", r.Wanted)
		t.Recorder.Production(s.Player, typ.Ident, OutcomeIssued)
	default:
		t.Recorder.Production(s.Player, typ.Ident, OutcomeFailed)
		if typ.Building {
			if r.RetryAt == 0 {
				r.RetryAt = t.cycle + t.tuning.BuildRetryFirst
			} else {
				r.RetryAt = t.cycle + t.tuning.BuildRetryLater
			}
		}
	}

	if newSupply {
		t.requestSupply()
	}
}

// UnitCompleted releases one made unit of typ from the queue once the host
// reports it finished: Wanted and Made both drop by one and a request that
// wants nothing more is removed.
func (m *Manager) UnitCompleted(typ *model.UnitType) {
	r, i := m.madeRequest(typ)
	if r == nil {
		return
	}
	r.Wanted--
	r.Made--
	if r.Wanted <= 0 {
		m.State.Queue = append(m.State.Queue[:i], m.State.Queue[i+1:]...)
	}
}

// UnitLost reports that a made unit of typ was destroyed before it was
// finished, so the queue makes it again.
func (m *Manager) UnitLost(typ *model.UnitType) {
	if r, _ := m.madeRequest(typ); r != nil {
		r.Made--
	}
}

func (m *Manager) madeRequest(typ *model.UnitType) (*ProductionRequest, int) {
	for i, r := range m.State.Queue {
		if r.Type == typ && r.Made > 0 {
			return r, i
		}
	}
	for i, r := range m.State.Queue {
		if r.Made > 0 && m.equivalent(r.Type, typ) {
			return r, i
		}
	}
	return nil, -1
}

func (m *Manager) equivalent(a, b *model.UnitType) bool {
	for _, e := range m.caps.Equivalents(a) {
		if e == b {
			return true
		}
	}
	return false
}
