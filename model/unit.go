package model

// Unit is a live unit or building. Resource nodes (gold mines, oil patches)
// are units owned by the neutral player whose type gives a resource.
type Unit struct {
	ID    int
	Owner int
	Type  *UnitType
	Pos   Vec2
	HP    int
	MaxHP int

	Orders []Order

	ResourcesHeld   int
	CurrentResource CostKind
	ResourceValue   int // amount left in a resource node

	Attacked uint64 // cycle the unit was last hit; 0 = never
	Refs     int    // workers currently referencing this unit (depots, mines)
	Removed  bool   // inside a building/transport or otherwise off the map
	Unusable bool   // e.g. a depot that is still under construction
	Active   bool   // counted by the AI as an available unit of its type
	GroupID  int
}

func (u *Unit) TypeName() string { return u.Type.Ident }

// CurrentOrder returns the head of the order queue, or nil when empty.
func (u *Unit) CurrentOrder() Order {
	if len(u.Orders) == 0 {
		return nil
	}
	return u.Orders[0]
}

// CurrentAction returns the action of the head order; an empty queue is Still.
func (u *Unit) CurrentAction() Action {
	if o := u.CurrentOrder(); o != nil {
		return o.Action()
	}
	return ActionStill
}

// IsIdle reports whether the unit has nothing to do.
func (u *Unit) IsIdle() bool {
	return len(u.Orders) == 0 || (len(u.Orders) == 1 && u.Orders[0].Action() == ActionStill)
}

// IsAliveOnMap reports whether the unit exists on the map.
func (u *Unit) IsAliveOnMap() bool { return !u.Removed && u.HP > 0 }

// ResourceOrder returns the head order as a gather order, if it is one.
func (u *Unit) ResourceOrder() (*ResourceOrder, bool) {
	o, ok := u.CurrentOrder().(*ResourceOrder)
	return o, ok
}

// Clone returns a deep copy of the unit and its orders.
func (u *Unit) Clone() *Unit {
	c := *u
	c.Orders = make([]Order, len(u.Orders))
	for i, o := range u.Orders {
		c.Orders[i] = CloneOrder(o)
	}
	return &c
}

// Player holds the faction-level counters the scheduler reads.
type Player struct {
	Index   int
	Name    string
	AI      bool
	Neutral bool

	Resources Costs
	Stored    Costs
	Supply    int
	Demand    int

	Limits     map[string]int // per-type unit caps; absent = unlimited
	TotalLimit int            // 0 = unlimited
	Upgrades   map[string]bool
	Allies     []int
}

// Available returns resources plus stored resources of kind k.
func (p *Player) Available(k CostKind) int { return p.Resources[k] + p.Stored[k] }

// IsEnemy reports whether other is hostile to p.
func (p *Player) IsEnemy(other *Player) bool {
	if other == nil || other.Index == p.Index || other.Neutral || p.Neutral {
		return false
	}
	for _, a := range p.Allies {
		if a == other.Index {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	c := *p
	c.Limits = make(map[string]int, len(p.Limits))
	for k, v := range p.Limits {
		c.Limits[k] = v
	}
	c.Upgrades = make(map[string]bool, len(p.Upgrades))
	for k, v := range p.Upgrades {
		c.Upgrades[k] = v
	}
	c.Allies = append([]int(nil), p.Allies...)
	return &c
}
