package model

import "fmt"

// Snapshot is the host game's view of the world for one cycle, as sent over
// the wire and as written in scenario files.
type Snapshot struct {
	Cycle     uint64        `json:"cycle" yaml:"cycle"`
	MapWidth  int           `json:"mapWidth" yaml:"map_width"`
	MapHeight int           `json:"mapHeight" yaml:"map_height"`
	Terrain   []string      `json:"terrain,omitempty" yaml:"terrain"` // one string per row, see TerrainRune
	Players   []PlayerState `json:"players" yaml:"players"`
	Units     []UnitState   `json:"units" yaml:"units"`
}

type PlayerState struct {
	Index      int            `json:"index" yaml:"index"`
	Name       string         `json:"name" yaml:"name"`
	AI         bool           `json:"ai" yaml:"ai"`
	Neutral    bool           `json:"neutral,omitempty" yaml:"neutral"`
	Resources  map[string]int `json:"resources" yaml:"resources"`
	Stored     map[string]int `json:"stored,omitempty" yaml:"stored"`
	Supply     int            `json:"supply" yaml:"supply"`
	Demand     int            `json:"demand" yaml:"demand"`
	Limits     map[string]int `json:"limits,omitempty" yaml:"limits"`
	TotalLimit int            `json:"totalLimit,omitempty" yaml:"total_limit"`
	Upgrades   []string       `json:"upgrades,omitempty" yaml:"upgrades"`
	Allies     []int          `json:"allies,omitempty" yaml:"allies"`
}

type UnitState struct {
	ID            int          `json:"id" yaml:"id"`
	Owner         int          `json:"owner" yaml:"owner"`
	Type          string       `json:"type" yaml:"type"`
	X             int          `json:"x" yaml:"x"`
	Y             int          `json:"y" yaml:"y"`
	HP            int          `json:"hp" yaml:"hp"`
	MaxHP         int          `json:"maxHp" yaml:"max_hp"`
	Orders        []OrderState `json:"orders,omitempty" yaml:"orders"`
	Held          int          `json:"held,omitempty" yaml:"held"`
	Resource      string       `json:"resource,omitempty" yaml:"resource"`
	ResourceValue int          `json:"resourceValue,omitempty" yaml:"resource_value"`
	Attacked      uint64       `json:"attacked,omitempty" yaml:"attacked"`
	Refs          int          `json:"refs,omitempty" yaml:"refs"`
	Removed       bool         `json:"removed,omitempty" yaml:"removed"`
	Unusable      bool         `json:"unusable,omitempty" yaml:"unusable"`
	Inactive      bool         `json:"inactive,omitempty" yaml:"inactive"`
	GroupID       int          `json:"groupId,omitempty" yaml:"group_id"`
}

// OrderState is the flattened wire form of an Order. Fields that do not
// apply to Action are left zero.
type OrderState struct {
	Action   string `json:"action" yaml:"action"`
	Type     string `json:"type,omitempty" yaml:"type"`
	Upgrade  string `json:"upgrade,omitempty" yaml:"upgrade"`
	Resource string `json:"resource,omitempty" yaml:"resource"`
	Target   int    `json:"target,omitempty" yaml:"target"`
	Goal     *Vec2  `json:"goal,omitempty" yaml:"goal"`
	Depot    int    `json:"depot,omitempty" yaml:"depot"`
	Progress int    `json:"progress,omitempty" yaml:"progress"`
	Started  bool   `json:"started,omitempty" yaml:"started"`
	Finished bool   `json:"finished,omitempty" yaml:"finished"`
}

// CommandState is the wire form of a Command.
type CommandState struct {
	Unit  int        `json:"unit"`
	Order OrderState `json:"order"`
}

// TypeResolver maps wire idents back to catalog entries.
type TypeResolver interface {
	UnitType(ident string) (*UnitType, bool)
	Upgrade(ident string) (*Upgrade, bool)
	ResourceKind(name string) (CostKind, bool)
	ResourceName(k CostKind) string
}

// EncodeOrder flattens an order for the wire.
func EncodeOrder(o Order, names TypeResolver) OrderState {
	s := OrderState{Action: o.Action().String()}
	goal := func(v Vec2) *Vec2 { return &v }
	switch v := o.(type) {
	case *MoveOrder:
		s.Goal = goal(v.Goal)
	case *BuildOrder:
		s.Type = v.Type.Ident
		s.Goal = goal(v.Goal)
	case *BuiltOrder:
		s.Progress = v.Progress
	case *TrainOrder:
		s.Type = v.Type.Ident
		s.Progress = v.Progress
	case *ResearchOrder:
		s.Upgrade = v.Upgrade.Ident
		s.Progress = v.Progress
	case *UpgradeToOrder:
		s.Type = v.Type.Ident
		s.Progress = v.Progress
	case *ResourceOrder:
		s.Resource = names.ResourceName(v.Kind)
		s.Target = v.Target
		if v.Target == 0 {
			s.Goal = goal(v.Goal)
		}
		s.Depot = v.Depot
		s.Started = v.Started
		s.Finished = v.Finished
	case *ReturnGoodsOrder:
		s.Depot = v.Depot
	case *RepairOrder:
		s.Target = v.Target
		s.Goal = goal(v.Goal)
	case *AttackOrder:
		s.Target = v.Target
		s.Goal = goal(v.Goal)
	case *DefendOrder:
		s.Target = v.Target
	}
	return s
}

// DecodeOrder is the inverse of EncodeOrder.
func DecodeOrder(s OrderState, types TypeResolver) (Order, error) {
	a, ok := ParseAction(s.Action)
	if !ok {
		return nil, fmt.Errorf("unknown action %q", s.Action)
	}
	var g Vec2
	if s.Goal != nil {
		g = *s.Goal
	}
	unitType := func() (*UnitType, error) {
		t, ok := types.UnitType(s.Type)
		if !ok {
			return nil, fmt.Errorf("%s order: unknown unit type %q", s.Action, s.Type)
		}
		return t, nil
	}
	switch a {
	case ActionStill:
		return &StillOrder{}, nil
	case ActionStandGround:
		return &StandGroundOrder{}, nil
	case ActionMove:
		return &MoveOrder{Goal: g}, nil
	case ActionBuild:
		t, err := unitType()
		if err != nil {
			return nil, err
		}
		return &BuildOrder{Type: t, Goal: g}, nil
	case ActionBuilt:
		return &BuiltOrder{Progress: s.Progress}, nil
	case ActionTrain:
		t, err := unitType()
		if err != nil {
			return nil, err
		}
		return &TrainOrder{Type: t, Progress: s.Progress}, nil
	case ActionResearch:
		u, ok := types.Upgrade(s.Upgrade)
		if !ok {
			return nil, fmt.Errorf("research order: unknown upgrade %q", s.Upgrade)
		}
		return &ResearchOrder{Upgrade: u, Progress: s.Progress}, nil
	case ActionUpgradeTo:
		t, err := unitType()
		if err != nil {
			return nil, err
		}
		return &UpgradeToOrder{Type: t, Progress: s.Progress}, nil
	case ActionResource:
		k, ok := types.ResourceKind(s.Resource)
		if !ok {
			return nil, fmt.Errorf("resource order: unknown resource %q", s.Resource)
		}
		return &ResourceOrder{Kind: k, Target: s.Target, Goal: g, Depot: s.Depot, Started: s.Started, Finished: s.Finished}, nil
	case ActionReturnGoods:
		return &ReturnGoodsOrder{Depot: s.Depot}, nil
	case ActionRepair:
		return &RepairOrder{Target: s.Target, Goal: g}, nil
	case ActionAttack:
		return &AttackOrder{Target: s.Target, Goal: g}, nil
	case ActionDefend:
		return &DefendOrder{Target: s.Target}, nil
	}
	return nil, fmt.Errorf("unhandled action %q", s.Action)
}

// TerrainRune maps scenario map characters to terrain types.
func TerrainRune(r rune) TerrainType {
	switch r {
	case '~':
		return Water
	case '^':
		return Cliff
	case '=':
		return Bridge
	case 'T':
		return Forest
	case '#':
		return Rock
	default:
		return Land
	}
}

// TerrainChar is the inverse of TerrainRune.
func TerrainChar(t TerrainType) byte {
	switch t {
	case Water:
		return '~'
	case Cliff:
		return '^'
	case Bridge:
		return '='
	case Forest:
		return 'T'
	case Rock:
		return '#'
	default:
		return '.'
	}
}

// ParseTerrain builds a per-tile grid from row strings. Short rows are
// padded with Land.
func ParseTerrain(width, height int, rows []string) *TerrainGrid {
	g := NewTerrainGrid(width, height)
	for y, row := range rows {
		for x, r := range []rune(row) {
			g.Set(x, y, TerrainRune(r))
		}
	}
	return g
}

// FormatTerrain is the inverse of ParseTerrain.
func FormatTerrain(g *TerrainGrid) []string {
	rows := make([]string, g.Rows)
	for y := range g.Rows {
		b := make([]byte, g.Cols)
		for x := range g.Cols {
			b[x] = TerrainChar(g.At(x, y))
		}
		rows[y] = string(b)
	}
	return rows
}
