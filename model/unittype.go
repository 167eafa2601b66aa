package model

// MoveType is how a unit type travels.
type MoveType int

const (
	MoveTypeLand MoveType = iota
	MoveTypeFly
	MoveTypeNaval
)

// Mask returns the movement mask a unit of this move type uses.
func (m MoveType) Mask() MoveMask {
	switch m {
	case MoveTypeFly:
		return MoveAir
	case MoveTypeNaval:
		return MoveSea
	default:
		return MoveLand
	}
}

// ResourceInfo describes how a harvester gathers one resource kind.
type ResourceInfo struct {
	TerrainHarvester bool // gathers from terrain fields rather than resource units
	Capacity         int  // load carried per trip
}

// UnitType is a catalog entry. Types are created at load time and shared
// read-only by every faction; Slot is the type's index in the catalog.
type UnitType struct {
	Ident    string
	Slot     int
	Building bool

	Costs  Costs
	Supply int
	Demand int

	Harvests      [MaxCosts]*ResourceInfo
	CanStore      [MaxCosts]bool
	GivesResource CostKind
	Field         FieldMask // terrain field this resource node type stands for, if any

	MoveType    MoveType
	RepairHP    int
	RepairRange int
	SightRange  int
	TileWidth   int
	TileHeight  int

	Requires []string // prerequisite unit type idents
}

// TypeName returns the ident, matching the accessor the rule helpers use.
func (t *UnitType) TypeName() string { return t.Ident }

// IsHarvester reports whether the type can gather any resource.
func (t *UnitType) IsHarvester() bool {
	for k := 1; k < MaxCosts; k++ {
		if t.Harvests[k] != nil {
			return true
		}
	}
	return false
}

// CanHarvest reports whether the type gathers kind k.
func (t *UnitType) CanHarvest(k CostKind) bool {
	return k > 0 && k < MaxCosts && t.Harvests[k] != nil
}

// IsDepot reports whether the type stores any resource.
func (t *UnitType) IsDepot() bool {
	for k := 1; k < MaxCosts; k++ {
		if t.CanStore[k] {
			return true
		}
	}
	return false
}

// Upgrade is a researchable upgrade.
type Upgrade struct {
	Ident string
	ID    int
	Costs Costs
}
