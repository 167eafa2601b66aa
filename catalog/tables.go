package catalog

import (
	"fmt"

	"github.com/nstehr/quartermaster/model"
)

func (c *Catalog) buildTables(f *file) error {
	n := len(c.types)
	c.builders = make([][]*model.UnitType, n)
	c.trainers = make([][]*model.UnitType, n)
	c.repairers = make([][]*model.UnitType, n)
	c.upgraders = make([][]*model.UnitType, n)
	c.equivs = make([][]*model.UnitType, n)
	c.researchers = make([][]*model.UnitType, len(c.upgrades))
	c.singleResearchers = make([][]*model.UnitType, len(c.upgrades))

	lookup := func(owner, field, ident string) (*model.UnitType, error) {
		t, ok := c.byIdent[ident]
		if !ok {
			return nil, fmt.Errorf("unit type %q: %s references unknown type %q", owner, field, ident)
		}
		return t, nil
	}

	for i, d := range f.UnitTypes {
		producer := c.types[i]
		for _, ident := range d.Requires {
			if _, err := lookup(d.Ident, "requires", ident); err != nil {
				return err
			}
		}
		for _, ident := range d.Builds {
			t, err := lookup(d.Ident, "builds", ident)
			if err != nil {
				return err
			}
			if !t.Building {
				return fmt.Errorf("unit type %q builds %q, which is not a building", d.Ident, ident)
			}
			c.builders[t.Slot] = appendUnique(c.builders[t.Slot], producer)
		}
		for _, ident := range d.Trains {
			t, err := lookup(d.Ident, "trains", ident)
			if err != nil {
				return err
			}
			c.trainers[t.Slot] = appendUnique(c.trainers[t.Slot], producer)
		}
		for _, ident := range d.Repairs {
			if ident == "*" {
				for _, t := range c.types {
					if t.Building {
						c.repairers[t.Slot] = appendUnique(c.repairers[t.Slot], producer)
					}
				}
				continue
			}
			t, err := lookup(d.Ident, "repairs", ident)
			if err != nil {
				return err
			}
			c.repairers[t.Slot] = appendUnique(c.repairers[t.Slot], producer)
		}
		for _, ident := range d.UpgradesTo {
			t, err := lookup(d.Ident, "upgrades_to", ident)
			if err != nil {
				return err
			}
			c.upgraders[t.Slot] = appendUnique(c.upgraders[t.Slot], producer)
		}
		for _, ident := range d.Researches {
			u, ok := c.upByIdent[ident]
			if !ok {
				return fmt.Errorf("unit type %q: researches unknown upgrade %q", d.Ident, ident)
			}
			if f.Upgrades[u.ID].Single {
				c.singleResearchers[u.ID] = appendUnique(c.singleResearchers[u.ID], producer)
			} else {
				c.researchers[u.ID] = appendUnique(c.researchers[u.ID], producer)
			}
		}
	}

	groups := map[string][]*model.UnitType{}
	for i, d := range f.UnitTypes {
		if d.Equivalent != "" {
			groups[d.Equivalent] = append(groups[d.Equivalent], c.types[i])
		}
	}
	for i, d := range f.UnitTypes {
		if d.Equivalent == "" {
			continue
		}
		for _, t := range groups[d.Equivalent] {
			if t.Slot != i {
				c.equivs[i] = append(c.equivs[i], t)
			}
		}
	}

	for _, t := range c.types {
		for k := model.CostKind(1); k < model.MaxCosts; k++ {
			if t.CanStore[k] {
				c.depots[k] = append(c.depots[k], t)
			}
		}
		if t.GivesResource != model.TimeCost {
			c.givers[t.GivesResource] = append(c.givers[t.GivesResource], t)
		}
		if t.Supply > 0 {
			c.supply = append(c.supply, t)
		}
	}
	return nil
}

func appendUnique(list []*model.UnitType, t *model.UnitType) []*model.UnitType {
	for _, x := range list {
		if x == t {
			return list
		}
	}
	return append(list, t)
}

// Builders lists the types that can construct building t.
func (c *Catalog) Builders(t *model.UnitType) []*model.UnitType { return c.bySlot(c.builders, t) }

// Trainers lists the types that can train t.
func (c *Catalog) Trainers(t *model.UnitType) []*model.UnitType { return c.bySlot(c.trainers, t) }

// Repairers lists the types that can repair t.
func (c *Catalog) Repairers(t *model.UnitType) []*model.UnitType { return c.bySlot(c.repairers, t) }

// Upgraders lists the types that can upgrade in place to t.
func (c *Catalog) Upgraders(t *model.UnitType) []*model.UnitType { return c.bySlot(c.upgraders, t) }

// Equivalents lists the types interchangeable with t, excluding t itself,
// in catalog order.
func (c *Catalog) Equivalents(t *model.UnitType) []*model.UnitType { return c.bySlot(c.equivs, t) }

// Researchers lists the types that can research u any number of times.
func (c *Catalog) Researchers(u *model.Upgrade) []*model.UnitType {
	if u.ID < 0 || u.ID >= len(c.researchers) {
		return nil
	}
	return c.researchers[u.ID]
}

// SingleResearchers lists the types that can research the one-shot upgrade u.
func (c *Catalog) SingleResearchers(u *model.Upgrade) []*model.UnitType {
	if u.ID < 0 || u.ID >= len(c.singleResearchers) {
		return nil
	}
	return c.singleResearchers[u.ID]
}

// Depots lists the types that can store resource kind k.
func (c *Catalog) Depots(k model.CostKind) []*model.UnitType {
	if k <= 0 || k >= model.MaxCosts {
		return nil
	}
	return c.depots[k]
}

// Givers lists the resource node types that yield kind k.
func (c *Catalog) Givers(k model.CostKind) []*model.UnitType {
	if k <= 0 || k >= model.MaxCosts {
		return nil
	}
	return c.givers[k]
}

// SupplyProducers lists every type that provides supply.
func (c *Catalog) SupplyProducers() []*model.UnitType { return c.supply }

func (c *Catalog) bySlot(table [][]*model.UnitType, t *model.UnitType) []*model.UnitType {
	if t == nil || t.Slot < 0 || t.Slot >= len(table) || c.types[t.Slot] != t {
		return nil
	}
	return table[t.Slot]
}
