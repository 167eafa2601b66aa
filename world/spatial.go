package world

import "github.com/nstehr/quartermaster/model"

// placeSearchRadius bounds the spiral search for building sites.
const placeSearchRadius = 24

func (m *Map) MapDistance(a, b model.Vec2) int { return a.ChebyshevTo(b) }

func (m *Map) IsPointOnMap(p model.Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width() && p.Y < m.Height()
}

// SelectUnits returns the live units within r of center matching pred.
func (m *Map) SelectUnits(center model.Vec2, r int, pred func(*model.Unit) bool) []*model.Unit {
	var out []*model.Unit
	for _, u := range m.units {
		if u.IsAliveOnMap() && u.Pos.ChebyshevTo(center) <= r && (pred == nil || pred(u)) {
			out = append(out, u)
		}
	}
	return out
}

func (m *Map) EnemiesInRange(player int, pos model.Vec2, r int) bool {
	p := m.Player(player)
	if p == nil {
		return false
	}
	for _, u := range m.units {
		if u.IsAliveOnMap() && u.Pos.ChebyshevTo(pos) <= r && p.IsEnemy(m.Player(u.Owner)) {
			return true
		}
	}
	return false
}

// ring calls fn for every tile at exactly Chebyshev distance r from c, in
// row-major order, until fn returns true.
func ring(c model.Vec2, r int, fn func(model.Vec2) bool) bool {
	for y := c.Y - r; y <= c.Y+r; y++ {
		for x := c.X - r; x <= c.X+r; x++ {
			p := model.Vec2{X: x, Y: y}
			if p.ChebyshevTo(c) != r {
				continue
			}
			if fn(p) {
				return true
			}
		}
	}
	return false
}

func (m *Map) maxRadius(r int) int {
	return min(r, max(m.Width(), m.Height()))
}

// FindBuildingPlace searches outward from near (or the worker when near is
// off the map) for the closest site where t fits on open land.
func (m *Map) FindBuildingPlace(worker *model.Unit, t *model.UnitType, near model.Vec2) (model.Vec2, bool) {
	origin := near
	if !m.IsPointOnMap(origin) {
		origin = worker.Pos
	}
	var found model.Vec2
	for r := 0; r <= m.maxRadius(placeSearchRadius); r++ {
		if ring(origin, r, func(p model.Vec2) bool {
			if m.fits(t, p) {
				found = p
				return true
			}
			return false
		}) {
			return found, true
		}
	}
	return model.Vec2{}, false
}

func (m *Map) fits(t *model.UnitType, at model.Vec2) bool {
	for dy := range t.TileHeight {
		for dx := range t.TileWidth {
			p := model.Vec2{X: at.X + dx, Y: at.Y + dy}
			if !m.IsPointOnMap(p) || m.terrain.At(p.X, p.Y) != model.Land {
				return false
			}
		}
	}
	for _, u := range m.units {
		if !u.Type.Building || u.Removed {
			continue
		}
		if overlaps(at, t.TileWidth, t.TileHeight, u.Pos, u.Type.TileWidth, u.Type.TileHeight) {
			return false
		}
	}
	return true
}

func overlaps(a model.Vec2, aw, ah int, b model.Vec2, bw, bh int) bool {
	return a.X < b.X+bw && b.X < a.X+aw && a.Y < b.Y+bh && b.Y < a.Y+ah
}

// FindTerrain returns the nearest tile within r of from whose terrain has
// field and that a unit moving with move can stand next to.
func (m *Map) FindTerrain(move model.MoveMask, field model.FieldMask, r int, player int, from model.Vec2) (model.Vec2, bool) {
	if field == 0 {
		return model.Vec2{}, false
	}
	var found model.Vec2
	for d := 0; d <= m.maxRadius(r); d++ {
		if ring(from, d, func(p model.Vec2) bool {
			if !m.IsPointOnMap(p) || m.terrain.At(p.X, p.Y).Fields()&field == 0 {
				return false
			}
			if !m.approachable(p, move) {
				return false
			}
			found = p
			return true
		}) {
			return found, true
		}
	}
	return model.Vec2{}, false
}

func (m *Map) approachable(p model.Vec2, move model.MoveMask) bool {
	return ring(p, 1, func(n model.Vec2) bool {
		return m.IsPointOnMap(n) && m.terrain.At(n.X, n.Y).Passable(move)
	})
}

func (m *Map) FindDeposit(worker *model.Unit, r int, k model.CostKind) *model.Unit {
	return m.FindDepositNear(worker.Owner, worker.Pos, r, k)
}

// FindDepositNear returns the player's nearest usable depot for kind k
// within r of pos.
func (m *Map) FindDepositNear(player int, pos model.Vec2, r int, k model.CostKind) *model.Unit {
	return m.nearest(pos, r, func(u *model.Unit) bool {
		return u.Owner == player && u.Type.CanStore[k] && !u.Unusable
	})
}

// FindResource returns the nearest resource node of kind k with something
// left in it, within r of from.
func (m *Map) FindResource(worker *model.Unit, from model.Vec2, r int, k model.CostKind) *model.Unit {
	return m.nearest(from, r, func(u *model.Unit) bool {
		return u.Type.GivesResource == k && u.ResourceValue > 0
	})
}

func (m *Map) nearest(pos model.Vec2, r int, pred func(*model.Unit) bool) *model.Unit {
	var best *model.Unit
	bestDist := 0
	for _, u := range m.units {
		if !u.IsAliveOnMap() || !pred(u) {
			continue
		}
		d := u.Pos.ChebyshevTo(pos)
		if d > r {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = u, d
		}
	}
	return best
}
