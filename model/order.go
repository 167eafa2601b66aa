package model

// Action identifies the variant of an Order.
type Action int

const (
	ActionStill Action = iota
	ActionStandGround
	ActionMove
	ActionBuild
	ActionBuilt
	ActionTrain
	ActionResearch
	ActionUpgradeTo
	ActionResource
	ActionReturnGoods
	ActionRepair
	ActionAttack
	ActionDefend
)

var actionNames = [...]string{
	ActionStill:       "still",
	ActionStandGround: "stand_ground",
	ActionMove:        "move",
	ActionBuild:       "build",
	ActionBuilt:       "built",
	ActionTrain:       "train",
	ActionResearch:    "research",
	ActionUpgradeTo:   "upgrade_to",
	ActionResource:    "resource",
	ActionReturnGoods: "return_goods",
	ActionRepair:      "repair",
	ActionAttack:      "attack",
	ActionDefend:      "defend",
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, bool) {
	for i, n := range actionNames {
		if n == s {
			return Action(i), true
		}
	}
	return 0, false
}

// Order is one entry of a unit's order queue. The concrete types below form
// a closed set; consumers switch on the dynamic type.
type Order interface {
	Action() Action
}

type StillOrder struct{}

type StandGroundOrder struct{}

type MoveOrder struct {
	Goal Vec2
}

// BuildOrder is held by a worker on its way to (or placing) a building.
type BuildOrder struct {
	Type *UnitType
	Goal Vec2
}

// BuiltOrder is held by a building under construction.
type BuiltOrder struct {
	Progress int
}

type TrainOrder struct {
	Type     *UnitType
	Progress int
}

type ResearchOrder struct {
	Upgrade  *Upgrade
	Progress int
}

type UpgradeToOrder struct {
	Type     *UnitType
	Progress int
}

// ResourceOrder is a gather cycle. Target is the resource unit ID, or 0 when
// the worker harvests terrain at Goal.
type ResourceOrder struct {
	Kind     CostKind
	Target   int
	Goal     Vec2
	Depot    int
	Started  bool // worker reached the node and began gathering
	Finished bool // load is full and the worker is heading home
}

type ReturnGoodsOrder struct {
	Depot int
}

type RepairOrder struct {
	Target int
	Goal   Vec2
}

type AttackOrder struct {
	Target int
	Goal   Vec2
}

type DefendOrder struct {
	Target int
}

func (*StillOrder) Action() Action       { return ActionStill }
func (*StandGroundOrder) Action() Action { return ActionStandGround }
func (*MoveOrder) Action() Action        { return ActionMove }
func (*BuildOrder) Action() Action       { return ActionBuild }
func (*BuiltOrder) Action() Action       { return ActionBuilt }
func (*TrainOrder) Action() Action       { return ActionTrain }
func (*ResearchOrder) Action() Action    { return ActionResearch }
func (*UpgradeToOrder) Action() Action   { return ActionUpgradeTo }
func (*ResourceOrder) Action() Action    { return ActionResource }
func (*ReturnGoodsOrder) Action() Action { return ActionReturnGoods }
func (*RepairOrder) Action() Action      { return ActionRepair }
func (*AttackOrder) Action() Action      { return ActionAttack }
func (*DefendOrder) Action() Action      { return ActionDefend }

// CloneOrder returns a copy that shares only the immutable catalog pointers.
func CloneOrder(o Order) Order {
	switch v := o.(type) {
	case *StillOrder:
		return &StillOrder{}
	case *StandGroundOrder:
		return &StandGroundOrder{}
	case *MoveOrder:
		c := *v
		return &c
	case *BuildOrder:
		c := *v
		return &c
	case *BuiltOrder:
		c := *v
		return &c
	case *TrainOrder:
		c := *v
		return &c
	case *ResearchOrder:
		c := *v
		return &c
	case *UpgradeToOrder:
		c := *v
		return &c
	case *ResourceOrder:
		c := *v
		return &c
	case *ReturnGoodsOrder:
		c := *v
		return &c
	case *RepairOrder:
		c := *v
		return &c
	case *AttackOrder:
		c := *v
		return &c
	case *DefendOrder:
		c := *v
		return &c
	default:
		return o
	}
}

// Command is an order issued to one unit. Issuing replaces the unit's
// current orders.
type Command struct {
	Unit  int
	Order Order
}
