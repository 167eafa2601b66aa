package world

import "github.com/nstehr/quartermaster/model"

// CheckLimits reports whether player may own one more unit of t under its
// per-type and total caps.
func (m *Map) CheckLimits(player int, t *model.UnitType) bool {
	p := m.Player(player)
	if p == nil {
		return false
	}
	owned, ofType := 0, 0
	for _, u := range m.units {
		if u.Owner != player {
			continue
		}
		owned++
		if u.Type == t {
			ofType++
		}
	}
	if limit, ok := p.Limits[t.Ident]; ok && ofType >= limit {
		return false
	}
	if p.TotalLimit > 0 && owned >= p.TotalLimit {
		return false
	}
	return true
}

// CheckDepend reports whether player owns a finished unit of every type t
// requires.
func (m *Map) CheckDepend(player int, t *model.UnitType) bool {
	for _, req := range t.Requires {
		if !m.hasFinished(player, req) {
			return false
		}
	}
	return true
}

func (m *Map) hasFinished(player int, ident string) bool {
	for _, u := range m.units {
		if u.Owner == player && u.Type.Ident == ident && u.IsAliveOnMap() && u.CurrentAction() != model.ActionBuilt {
			return true
		}
	}
	return false
}
