// Package catalog loads unit types and upgrades from YAML and derives the
// static producer tables the scheduler consults. A Catalog is read-only once
// loaded and may be shared by every faction.
package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/quartermaster/model"
)

type file struct {
	Resources []resourceDef `yaml:"resources" validate:"max=6,dive"`
	UnitTypes []unitTypeDef `yaml:"unit_types" validate:"required,min=1,dive"`
	Upgrades  []upgradeDef  `yaml:"upgrades" validate:"dive"`
}

type resourceDef struct {
	Name    string `yaml:"name" validate:"required"`
	Terrain string `yaml:"terrain" validate:"omitempty,oneof=forest rock"`
}

type harvestDef struct {
	Terrain  bool `yaml:"terrain"`
	Capacity int  `yaml:"capacity" validate:"min=0"`
}

type unitTypeDef struct {
	Ident         string                `yaml:"ident" validate:"required"`
	Building      bool                  `yaml:"building"`
	Costs         map[string]int        `yaml:"costs"`
	Supply        int                   `yaml:"supply" validate:"min=0"`
	Demand        int                   `yaml:"demand" validate:"min=0"`
	Harvests      map[string]harvestDef `yaml:"harvests" validate:"dive"`
	Stores        []string              `yaml:"stores"`
	GivesResource string                `yaml:"gives_resource"`
	MoveType      string                `yaml:"move_type" validate:"omitempty,oneof=land fly naval"`
	RepairHP      int                   `yaml:"repair_hp" validate:"min=0"`
	RepairRange   int                   `yaml:"repair_range" validate:"min=0"`
	SightRange    int                   `yaml:"sight_range" validate:"min=0"`
	Size          []int                 `yaml:"size" validate:"omitempty,len=2,dive,min=1"`
	Requires      []string              `yaml:"requires"`
	Builds        []string              `yaml:"builds"`
	Trains        []string              `yaml:"trains"`
	Repairs       []string              `yaml:"repairs"` // "*" repairs every building
	UpgradesTo    []string              `yaml:"upgrades_to"`
	Researches    []string              `yaml:"researches"`
	Equivalent    string                `yaml:"equivalent_group"`
}

type upgradeDef struct {
	Ident  string         `yaml:"ident" validate:"required"`
	Costs  map[string]int `yaml:"costs"`
	Single bool           `yaml:"single"` // researched once; requests are ignored while in progress
}

// Catalog holds every unit type and upgrade plus the derived tables.
type Catalog struct {
	resourceNames  [model.MaxCosts]string
	resourceFields [model.MaxCosts]model.FieldMask

	types     []*model.UnitType
	byIdent   map[string]*model.UnitType
	upgrades  []*model.Upgrade
	upByIdent map[string]*model.Upgrade

	builders  [][]*model.UnitType // by target slot
	trainers  [][]*model.UnitType
	repairers [][]*model.UnitType
	upgraders [][]*model.UnitType
	equivs    [][]*model.UnitType

	researchers       [][]*model.UnitType // by upgrade ID
	singleResearchers [][]*model.UnitType

	depots [model.MaxCosts][]*model.UnitType
	givers [model.MaxCosts][]*model.UnitType
	supply []*model.UnitType
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return build(&f)
}

func build(f *file) (*Catalog, error) {
	c := &Catalog{
		resourceNames: model.DefaultResourceNames,
		byIdent:       make(map[string]*model.UnitType, len(f.UnitTypes)),
		upByIdent:     make(map[string]*model.Upgrade, len(f.Upgrades)),
	}
	if len(f.Resources) == 0 {
		c.resourceFields[model.WoodCost] = model.FieldForest
		c.resourceFields[model.Cost5] = model.FieldRock
	}
	seen := map[string]bool{"time": true}
	for i, r := range f.Resources {
		if seen[r.Name] {
			return nil, fmt.Errorf("resource %q declared twice", r.Name)
		}
		seen[r.Name] = true
		k := model.CostKind(i + 1)
		c.resourceNames[k] = r.Name
		switch r.Terrain {
		case "forest":
			c.resourceFields[k] = model.FieldForest
		case "rock":
			c.resourceFields[k] = model.FieldRock
		}
	}

	// First pass: create every type so later references resolve.
	for i, d := range f.UnitTypes {
		if _, dup := c.byIdent[d.Ident]; dup {
			return nil, fmt.Errorf("unit type %q declared twice", d.Ident)
		}
		t := &model.UnitType{
			Ident:       d.Ident,
			Slot:        i,
			Building:    d.Building,
			Supply:      d.Supply,
			Demand:      d.Demand,
			RepairHP:    d.RepairHP,
			RepairRange: d.RepairRange,
			SightRange:  d.SightRange,
			TileWidth:   1,
			TileHeight:  1,
			Requires:    d.Requires,
		}
		if len(d.Size) == 2 {
			t.TileWidth, t.TileHeight = d.Size[0], d.Size[1]
		}
		var err error
		if t.Costs, err = c.costs(d.Costs); err != nil {
			return nil, fmt.Errorf("unit type %q: %w", d.Ident, err)
		}
		switch d.MoveType {
		case "fly":
			t.MoveType = model.MoveTypeFly
		case "naval":
			t.MoveType = model.MoveTypeNaval
		}
		for name, h := range d.Harvests {
			k, ok := c.ResourceKind(name)
			if !ok || k == model.TimeCost {
				return nil, fmt.Errorf("unit type %q harvests unknown resource %q", d.Ident, name)
			}
			if h.Terrain && c.resourceFields[k] == 0 {
				return nil, fmt.Errorf("unit type %q harvests %q from terrain, but %q has no terrain field", d.Ident, name, name)
			}
			t.Harvests[k] = &model.ResourceInfo{TerrainHarvester: h.Terrain, Capacity: h.Capacity}
		}
		for _, name := range d.Stores {
			k, ok := c.ResourceKind(name)
			if !ok || k == model.TimeCost {
				return nil, fmt.Errorf("unit type %q stores unknown resource %q", d.Ident, name)
			}
			t.CanStore[k] = true
		}
		if d.GivesResource != "" {
			k, ok := c.ResourceKind(d.GivesResource)
			if !ok || k == model.TimeCost {
				return nil, fmt.Errorf("unit type %q gives unknown resource %q", d.Ident, d.GivesResource)
			}
			t.GivesResource = k
		}
		c.types = append(c.types, t)
		c.byIdent[t.Ident] = t
	}
	for i, d := range f.Upgrades {
		if _, dup := c.upByIdent[d.Ident]; dup {
			return nil, fmt.Errorf("upgrade %q declared twice", d.Ident)
		}
		costs, err := c.costs(d.Costs)
		if err != nil {
			return nil, fmt.Errorf("upgrade %q: %w", d.Ident, err)
		}
		u := &model.Upgrade{Ident: d.Ident, ID: i, Costs: costs}
		c.upgrades = append(c.upgrades, u)
		c.upByIdent[u.Ident] = u
	}

	if err := c.buildTables(f); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) costs(m map[string]int) (model.Costs, error) {
	var out model.Costs
	for name, v := range m {
		k, ok := c.ResourceKind(name)
		if !ok {
			return out, fmt.Errorf("unknown cost kind %q", name)
		}
		if v < 0 {
			return out, fmt.Errorf("negative %s cost %d", name, v)
		}
		out[k] = v
	}
	return out, nil
}

// ResourceKind resolves a resource name ("time" is kind 0).
func (c *Catalog) ResourceKind(name string) (model.CostKind, bool) {
	for k, n := range c.resourceNames {
		if n == name {
			return model.CostKind(k), true
		}
	}
	return 0, false
}

func (c *Catalog) ResourceName(k model.CostKind) string {
	if k < 0 || k >= model.MaxCosts {
		return ""
	}
	return c.resourceNames[k]
}

func (c *Catalog) ResourceNames() [model.MaxCosts]string { return c.resourceNames }

// ResourceField returns the terrain field terrain harvesters of kind k look
// for, or 0 if k is only found in resource units.
func (c *Catalog) ResourceField(k model.CostKind) model.FieldMask { return c.resourceFields[k] }

// ResourceFields returns the whole kind-to-field table.
func (c *Catalog) ResourceFields() [model.MaxCosts]model.FieldMask { return c.resourceFields }

func (c *Catalog) UnitType(ident string) (*model.UnitType, bool) {
	t, ok := c.byIdent[ident]
	return t, ok
}

func (c *Catalog) Upgrade(ident string) (*model.Upgrade, bool) {
	u, ok := c.upByIdent[ident]
	return u, ok
}

func (c *Catalog) Types() []*model.UnitType   { return c.types }
func (c *Catalog) Upgrades() []*model.Upgrade { return c.upgrades }
