package world

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/quartermaster/model"
)

// FromSnapshot builds a map from a host snapshot or scenario.
func FromSnapshot(s model.Snapshot, types model.TypeResolver) (*Map, error) {
	if s.MapWidth <= 0 || s.MapHeight <= 0 {
		return nil, fmt.Errorf("bad map size %dx%d", s.MapWidth, s.MapHeight)
	}
	m := New(s.MapWidth, s.MapHeight)
	m.terrain = model.ParseTerrain(s.MapWidth, s.MapHeight, s.Terrain)
	m.cycle = s.Cycle

	for _, ps := range s.Players {
		p := &model.Player{
			Index:      ps.Index,
			Name:       ps.Name,
			AI:         ps.AI,
			Neutral:    ps.Neutral,
			Supply:     ps.Supply,
			Demand:     ps.Demand,
			TotalLimit: ps.TotalLimit,
			Limits:     map[string]int{},
			Upgrades:   map[string]bool{},
			Allies:     slices.Clone(ps.Allies),
		}
		var err error
		if p.Resources, err = costs(ps.Resources, types); err != nil {
			return nil, fmt.Errorf("player %d resources: %w", ps.Index, err)
		}
		if p.Stored, err = costs(ps.Stored, types); err != nil {
			return nil, fmt.Errorf("player %d stored: %w", ps.Index, err)
		}
		for k, v := range ps.Limits {
			p.Limits[k] = v
		}
		for _, u := range ps.Upgrades {
			p.Upgrades[u] = true
		}
		m.AddPlayer(p)
	}

	for _, us := range s.Units {
		t, ok := types.UnitType(us.Type)
		if !ok {
			return nil, fmt.Errorf("unit %d: unknown type %q", us.ID, us.Type)
		}
		u := &model.Unit{
			ID:            us.ID,
			Owner:         us.Owner,
			Type:          t,
			Pos:           model.Vec2{X: us.X, Y: us.Y},
			HP:            us.HP,
			MaxHP:         us.MaxHP,
			ResourcesHeld: us.Held,
			ResourceValue: us.ResourceValue,
			Attacked:      us.Attacked,
			Refs:          us.Refs,
			Removed:       us.Removed,
			Unusable:      us.Unusable,
			Active:        !us.Inactive,
			GroupID:       us.GroupID,
		}
		if us.Resource != "" {
			k, ok := types.ResourceKind(us.Resource)
			if !ok {
				return nil, fmt.Errorf("unit %d: unknown resource %q", us.ID, us.Resource)
			}
			u.CurrentResource = k
		}
		for _, st := range us.Orders {
			o, err := model.DecodeOrder(st, types)
			if err != nil {
				return nil, fmt.Errorf("unit %d: %w", us.ID, err)
			}
			u.Orders = append(u.Orders, o)
		}
		if _, dup := m.byID[u.ID]; dup && u.ID != 0 {
			return nil, fmt.Errorf("unit id %d used twice", u.ID)
		}
		m.AddUnit(u)
	}
	return m, nil
}

func costs(in map[string]int, types model.TypeResolver) (model.Costs, error) {
	var out model.Costs
	for name, v := range in {
		k, ok := types.ResourceKind(name)
		if !ok {
			return out, fmt.Errorf("unknown resource %q", name)
		}
		out[k] = v
	}
	return out, nil
}

// Snapshot renders the map in wire form.
func (m *Map) Snapshot(names model.TypeResolver) model.Snapshot {
	s := model.Snapshot{
		Cycle:     m.cycle,
		MapWidth:  m.Width(),
		MapHeight: m.Height(),
		Terrain:   model.FormatTerrain(m.terrain),
	}
	for _, p := range m.players {
		if p == nil {
			continue
		}
		ps := model.PlayerState{
			Index:      p.Index,
			Name:       p.Name,
			AI:         p.AI,
			Neutral:    p.Neutral,
			Resources:  map[string]int{},
			Stored:     map[string]int{},
			Supply:     p.Supply,
			Demand:     p.Demand,
			Limits:     p.Limits,
			TotalLimit: p.TotalLimit,
			Allies:     p.Allies,
		}
		for k := model.CostKind(1); k < model.MaxCosts; k++ {
			if p.Resources[k] != 0 {
				ps.Resources[names.ResourceName(k)] = p.Resources[k]
			}
			if p.Stored[k] != 0 {
				ps.Stored[names.ResourceName(k)] = p.Stored[k]
			}
		}
		for u, ok := range p.Upgrades {
			if ok {
				ps.Upgrades = append(ps.Upgrades, u)
			}
		}
		slices.Sort(ps.Upgrades)
		s.Players = append(s.Players, ps)
	}
	for _, u := range m.units {
		us := model.UnitState{
			ID:            u.ID,
			Owner:         u.Owner,
			Type:          u.Type.Ident,
			X:             u.Pos.X,
			Y:             u.Pos.Y,
			HP:            u.HP,
			MaxHP:         u.MaxHP,
			Held:          u.ResourcesHeld,
			ResourceValue: u.ResourceValue,
			Attacked:      u.Attacked,
			Refs:          u.Refs,
			Removed:       u.Removed,
			Unusable:      u.Unusable,
			Inactive:      !u.Active,
			GroupID:       u.GroupID,
		}
		if u.CurrentResource != 0 {
			us.Resource = names.ResourceName(u.CurrentResource)
		}
		for _, o := range u.Orders {
			us.Orders = append(us.Orders, model.EncodeOrder(o, names))
		}
		s.Units = append(s.Units, us)
	}
	return s
}

// LoadScenario reads a YAML scenario file into a map.
func LoadScenario(path string, types model.TypeResolver) (*Map, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s model.Snapshot
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := FromSnapshot(s, types)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
