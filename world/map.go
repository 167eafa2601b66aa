// Package world is an in-memory game world: players, units and terrain,
// with the spatial, placement and limit queries the scheduler consumes and a
// small economy stepper that plays out issued orders.
package world

import (
	"github.com/nstehr/quartermaster/model"
)

// Map holds the whole world state. Unit list order is creation order and is
// the order every query walks, so results are deterministic.
type Map struct {
	cycle   uint64
	terrain *model.TerrainGrid
	players []*model.Player
	units   []*model.Unit
	byID    map[int]*model.Unit
	nextID  int
	issued  []model.Command
	events  []Event
	fields  [model.MaxCosts]model.FieldMask
}

// New returns an empty all-land map of the given size in tiles.
func New(width, height int) *Map {
	return &Map{
		terrain: model.NewTerrainGrid(width, height),
		byID:    make(map[int]*model.Unit),
		nextID:  1,
	}
}

// SetResourceFields tells the stepper which terrain field each resource
// kind is gathered from.
func (m *Map) SetResourceFields(f [model.MaxCosts]model.FieldMask) { m.fields = f }

func (m *Map) Width() int                  { return m.terrain.Cols }
func (m *Map) Height() int                 { return m.terrain.Rows }
func (m *Map) Terrain() *model.TerrainGrid { return m.terrain }
func (m *Map) Cycle() uint64               { return m.cycle }
func (m *Map) SetCycle(c uint64)           { m.cycle = c }

// AddPlayer registers p at its Index, growing the player table as needed.
func (m *Map) AddPlayer(p *model.Player) *model.Player {
	for len(m.players) <= p.Index {
		m.players = append(m.players, nil)
	}
	if p.Limits == nil {
		p.Limits = map[string]int{}
	}
	if p.Upgrades == nil {
		p.Upgrades = map[string]bool{}
	}
	m.players[p.Index] = p
	return p
}

func (m *Map) Player(index int) *model.Player {
	if index < 0 || index >= len(m.players) {
		return nil
	}
	return m.players[index]
}

// Players returns the player table; entries may be nil.
func (m *Map) Players() []*model.Player { return m.players }

// AddUnit places u in the world. A zero ID is replaced with the next free
// one; HP and MaxHP default to 100.
func (m *Map) AddUnit(u *model.Unit) *model.Unit {
	if u.ID == 0 {
		u.ID = m.nextID
	}
	if u.ID >= m.nextID {
		m.nextID = u.ID + 1
	}
	if u.MaxHP == 0 {
		u.MaxHP = 100
	}
	if u.HP == 0 {
		u.HP = u.MaxHP
	}
	m.units = append(m.units, u)
	m.byID[u.ID] = u
	return u
}

// Spawn adds an active, finished unit of type t.
func (m *Map) Spawn(owner int, t *model.UnitType, pos model.Vec2) *model.Unit {
	return m.AddUnit(&model.Unit{Owner: owner, Type: t, Pos: pos, Active: true})
}

// RemoveUnit deletes a unit from the world.
func (m *Map) RemoveUnit(id int) {
	u, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	for i, x := range m.units {
		if x == u {
			m.units = append(m.units[:i], m.units[i+1:]...)
			break
		}
	}
}

func (m *Map) Unit(id int) *model.Unit { return m.byID[id] }

// AllUnits returns every unit in list order.
func (m *Map) AllUnits() []*model.Unit { return m.units }

// Units returns the player's units in list order.
func (m *Map) Units(player int) []*model.Unit {
	var out []*model.Unit
	for _, u := range m.units {
		if u.Owner == player {
			out = append(out, u)
		}
	}
	return out
}

// Issue replaces the unit's orders with the command's order and records the
// command.
func (m *Map) Issue(cmd model.Command) {
	u := m.byID[cmd.Unit]
	if u == nil {
		return
	}
	u.Orders = []model.Order{model.CloneOrder(cmd.Order)}
	m.issued = append(m.issued, model.Command{Unit: cmd.Unit, Order: model.CloneOrder(cmd.Order)})
}

// Issued returns the commands issued since the last drain.
func (m *Map) Issued() []model.Command { return m.issued }

// DrainIssued returns and clears the issued commands.
func (m *Map) DrainIssued() []model.Command {
	out := m.issued
	m.issued = nil
	return out
}

// Clone returns a deep copy. Catalog types are shared.
func (m *Map) Clone() *Map {
	c := &Map{
		cycle:   m.cycle,
		terrain: m.terrain.Clone(),
		byID:    make(map[int]*model.Unit, len(m.byID)),
		nextID:  m.nextID,
		fields:  m.fields,
	}
	for _, p := range m.players {
		if p == nil {
			c.players = append(c.players, nil)
			continue
		}
		c.players = append(c.players, p.Clone())
	}
	for _, u := range m.units {
		cu := u.Clone()
		c.units = append(c.units, cu)
		c.byID[cu.ID] = cu
	}
	for _, cmd := range m.issued {
		c.issued = append(c.issued, model.Command{Unit: cmd.Unit, Order: model.CloneOrder(cmd.Order)})
	}
	c.events = append(c.events, m.events...)
	return c
}
