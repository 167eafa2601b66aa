package world

import (
	"slices"

	"github.com/nstehr/quartermaster/model"
)

// EventKind classifies what happened during a Step.
type EventKind int

const (
	// EventCompleted: a building finished, a unit was trained or a unit
	// finished upgrading in place.
	EventCompleted EventKind = iota
	EventResearched
	EventDepleted // a resource node ran dry and was removed
	// EventDepotFar: a worker delivered to a depot far from where it
	// gathers.
	EventDepotFar
	// EventDepotCrowded: a worker delivered to a depot with more than
	// DepotCrowding workers using it.
	EventDepotCrowded
)

// Event reports a state change the scheduler may want to react to.
type Event struct {
	Kind    EventKind
	Unit    int
	Owner   int
	Type    *model.UnitType
	Upgrade *model.Upgrade
}

const (
	// DepotCrowding is how many workers may use one depot before
	// EventDepotCrowded fires.
	DepotCrowding = 15
	// FarDepotDistance is the trip length that raises EventDepotFar.
	FarDepotDistance = 20

	defaultCapacity = 100
	gatherPerCycle  = 10
	searchRange     = 1000
)

// DrainEvents returns and clears the events produced since the last drain.
func (m *Map) DrainEvents() []Event {
	out := m.events
	m.events = nil
	return out
}

func (m *Map) emit(e Event) { m.events = append(m.events, e) }

// Step advances the world by one cycle, moving every unit one step along
// its current order. Units created during the step start acting next cycle.
func (m *Map) Step() {
	m.cycle++
	m.countRefs()
	for _, u := range slices.Clone(m.units) {
		if m.byID[u.ID] != u || u.HP <= 0 {
			continue
		}
		m.stepUnit(u)
	}
}

func (m *Map) countRefs() {
	for _, u := range m.units {
		u.Refs = 0
	}
	for _, u := range m.units {
		if o, ok := u.ResourceOrder(); ok && o.Depot != 0 {
			if d := m.byID[o.Depot]; d != nil {
				d.Refs++
			}
		}
	}
}

func pop(u *model.Unit) {
	if len(u.Orders) > 0 {
		u.Orders = u.Orders[1:]
	}
}

func (m *Map) stepUnit(u *model.Unit) {
	p := m.Player(u.Owner)
	switch o := u.CurrentOrder().(type) {
	case *model.MoveOrder:
		if m.moveToward(u, o.Goal, 1, 1, 0) {
			pop(u)
		}
	case *model.BuildOrder:
		m.stepBuild(u, p, o)
	case *model.BuiltOrder:
		o.Progress++
		if o.Progress >= max(1, u.Type.Costs[model.TimeCost]) {
			u.Orders = nil
			u.Active = true
			u.Unusable = false
			u.HP = u.MaxHP
			if p != nil {
				p.Supply += u.Type.Supply
			}
			m.emit(Event{Kind: EventCompleted, Unit: u.ID, Owner: u.Owner, Type: u.Type})
		}
	case *model.TrainOrder:
		if !m.progress(p, &o.Progress, o.Type.Costs) {
			pop(u)
			return
		}
		if o.Progress >= max(1, o.Type.Costs[model.TimeCost]) {
			pop(u)
			spot, ok := m.freeTileNear(u.Pos)
			if !ok {
				return
			}
			nu := m.Spawn(u.Owner, o.Type, spot)
			if p != nil {
				p.Demand += o.Type.Demand
				p.Supply += o.Type.Supply
			}
			m.emit(Event{Kind: EventCompleted, Unit: nu.ID, Owner: u.Owner, Type: o.Type})
		}
	case *model.ResearchOrder:
		if !m.progress(p, &o.Progress, o.Upgrade.Costs) {
			pop(u)
			return
		}
		if o.Progress >= max(1, o.Upgrade.Costs[model.TimeCost]) {
			pop(u)
			if p != nil {
				p.Upgrades[o.Upgrade.Ident] = true
			}
			m.emit(Event{Kind: EventResearched, Unit: u.ID, Owner: u.Owner, Upgrade: o.Upgrade})
		}
	case *model.UpgradeToOrder:
		if !m.progress(p, &o.Progress, o.Type.Costs) {
			pop(u)
			return
		}
		if o.Progress >= max(1, o.Type.Costs[model.TimeCost]) {
			pop(u)
			if p != nil {
				p.Supply += o.Type.Supply - u.Type.Supply
			}
			u.Type = o.Type
			m.emit(Event{Kind: EventCompleted, Unit: u.ID, Owner: u.Owner, Type: o.Type})
		}
	case *model.ResourceOrder:
		m.stepGather(u, p, o)
	case *model.ReturnGoodsOrder:
		depot := m.depotFor(u, o.Depot)
		if depot == nil {
			pop(u)
			return
		}
		if m.moveToward(u, depot.Pos, depot.Type.TileWidth, depot.Type.TileHeight, 1) {
			m.deposit(u, p)
			pop(u)
		}
	case *model.RepairOrder:
		m.stepRepair(u, o)
	case *model.AttackOrder:
		pop(u)
	}
}

// progress pays for an order on its first cycle and advances it. It
// returns false if the player cannot pay.
func (m *Map) progress(p *model.Player, prog *int, costs model.Costs) bool {
	if *prog == 0 {
		if !pay(p, costs) {
			return false
		}
	}
	*prog++
	return true
}

func pay(p *model.Player, costs model.Costs) bool {
	if p == nil {
		return false
	}
	for k := model.CostKind(1); k < model.MaxCosts; k++ {
		if p.Available(k) < costs[k] {
			return false
		}
	}
	for k := model.CostKind(1); k < model.MaxCosts; k++ {
		take := min(costs[k], p.Resources[k])
		p.Resources[k] -= take
		p.Stored[k] -= costs[k] - take
	}
	return true
}

func (m *Map) stepBuild(u *model.Unit, p *model.Player, o *model.BuildOrder) {
	t := o.Type
	if !m.moveToward(u, o.Goal, t.TileWidth, t.TileHeight, 1) {
		return
	}
	if !m.fits(t, o.Goal) || !pay(p, t.Costs) {
		pop(u)
		return
	}
	b := m.AddUnit(&model.Unit{
		Owner:    u.Owner,
		Type:     t,
		Pos:      o.Goal,
		MaxHP:    100,
		HP:       10,
		Orders:   []model.Order{&model.BuiltOrder{}},
		Unusable: true,
	})
	u.Orders = []model.Order{&model.RepairOrder{Target: b.ID, Goal: model.NoPos}}
}

func (m *Map) stepRepair(u *model.Unit, o *model.RepairOrder) {
	target := m.byID[o.Target]
	if target == nil || !target.IsAliveOnMap() {
		pop(u)
		return
	}
	if !m.moveToward(u, target.Pos, target.Type.TileWidth, target.Type.TileHeight, 1) {
		return
	}
	if b, ok := target.CurrentOrder().(*model.BuiltOrder); ok {
		b.Progress++
		return
	}
	target.HP = min(target.MaxHP, target.HP+max(1, target.Type.RepairHP))
	if target.HP >= target.MaxHP {
		pop(u)
	}
}

func (m *Map) stepGather(u *model.Unit, p *model.Player, o *model.ResourceOrder) {
	k := o.Kind
	if o.Finished {
		depot := m.depotFor(u, o.Depot)
		if depot == nil {
			return
		}
		o.Depot = depot.ID
		if !m.moveToward(u, depot.Pos, depot.Type.TileWidth, depot.Type.TileHeight, 1) {
			return
		}
		from := o.Goal
		m.deposit(u, p)
		o.Finished, o.Started = false, false
		if depot.Pos.ChebyshevTo(from) > FarDepotDistance {
			m.emit(Event{Kind: EventDepotFar, Unit: u.ID, Owner: u.Owner})
		}
		if depot.Refs > DepotCrowding {
			m.emit(Event{Kind: EventDepotCrowded, Unit: u.ID, Owner: u.Owner})
		}
		return
	}

	var node *model.Unit
	w, h := 1, 1
	if o.Target != 0 {
		node = m.byID[o.Target]
		if node == nil || node.ResourceValue <= 0 {
			node = m.FindResource(u, u.Pos, searchRange, k)
			if node == nil {
				pop(u)
				return
			}
			o.Target, o.Goal = node.ID, node.Pos
		}
		w, h = node.Type.TileWidth, node.Type.TileHeight
	} else if m.terrain.At(o.Goal.X, o.Goal.Y).Fields()&m.resourceField(k) == 0 {
		pop(u)
		return
	}
	if !m.moveToward(u, o.Goal, w, h, 1) {
		return
	}

	o.Started = true
	capacity := defaultCapacity
	if info := u.Type.Harvests[k]; info != nil && info.Capacity > 0 {
		capacity = info.Capacity
	}
	if u.CurrentResource != k {
		u.ResourcesHeld = 0
		u.CurrentResource = k
	}
	take := min(gatherPerCycle, capacity-u.ResourcesHeld)
	if node != nil {
		take = min(take, node.ResourceValue)
		node.ResourceValue -= take
		if node.ResourceValue == 0 {
			m.emit(Event{Kind: EventDepleted, Unit: node.ID, Owner: node.Owner, Type: node.Type})
			m.RemoveUnit(node.ID)
		}
	}
	u.ResourcesHeld += take
	if u.ResourcesHeld >= capacity {
		o.Finished = true
	}
}

// resourceField returns the terrain field kind k is gathered from. Without
// a table any harvestable field qualifies.
func (m *Map) resourceField(k model.CostKind) model.FieldMask {
	if f := m.fields[k]; f != 0 {
		return f
	}
	return model.FieldForest | model.FieldRock
}

func (m *Map) depotFor(u *model.Unit, preferred int) *model.Unit {
	if d := m.byID[preferred]; d != nil && d.Owner == u.Owner && !d.Unusable && d.Type.CanStore[u.CurrentResource] {
		return d
	}
	return m.FindDeposit(u, searchRange, u.CurrentResource)
}

func (m *Map) deposit(u *model.Unit, p *model.Player) {
	if p != nil && u.CurrentResource > 0 {
		p.Resources[u.CurrentResource] += u.ResourcesHeld
	}
	u.ResourcesHeld = 0
}

// moveToward steps u one tile toward the w×h rectangle at goal. It returns
// true once u is within reach of the rectangle.
func (m *Map) moveToward(u *model.Unit, goal model.Vec2, w, h, reach int) bool {
	if rectDistance(u.Pos, goal, w, h) <= reach {
		return true
	}
	target := model.Vec2{
		X: min(max(u.Pos.X, goal.X), goal.X+w-1),
		Y: min(max(u.Pos.Y, goal.Y), goal.Y+h-1),
	}
	u.Pos.X += sign(target.X - u.Pos.X)
	u.Pos.Y += sign(target.Y - u.Pos.Y)
	return false
}

func rectDistance(p, at model.Vec2, w, h int) int {
	dx := max(at.X-p.X, 0, p.X-(at.X+w-1))
	dy := max(at.Y-p.Y, 0, p.Y-(at.Y+h-1))
	return max(dx, dy)
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func (m *Map) freeTileNear(pos model.Vec2) (model.Vec2, bool) {
	one := &model.UnitType{TileWidth: 1, TileHeight: 1}
	var found model.Vec2
	for r := 1; r <= m.maxRadius(placeSearchRadius); r++ {
		if ring(pos, r, func(p model.Vec2) bool {
			if m.fits(one, p) {
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
