package rules

import (
	"strings"

	"github.com/nstehr/quartermaster/model"
)

// typed is a generic constraint for any model type with a TypeName accessor.
type typed interface {
	TypeName() string
}

// containsType returns true if any item's TypeName matches t (case-insensitive).
func containsType[T typed](items []T, t string) bool {
	for _, item := range items {
		if strings.EqualFold(item.TypeName(), t) {
			return true
		}
	}
	return false
}

// countType counts items whose TypeName matches t (case-insensitive).
func countType[T typed](items []T, t string) int {
	n := 0
	for _, item := range items {
		if strings.EqualFold(item.TypeName(), t) {
			n++
		}
	}
	return n
}

// Unit type idents of the stock catalog, used by the doctrine compiler.
const (
	Worker     = "peasant"
	TownHall   = "town-hall"
	Keep       = "keep"
	Farm       = "farm"
	Barracks   = "barracks"
	LumberMill = "lumber-mill"
	Blacksmith = "blacksmith"
	Footman    = "footman"
	Archer     = "archer"
)

// Upgrade idents of the stock catalog.
const (
	Swords  = "swords1"
	Shields = "shields1"
	Arrows  = "arrows1"
)

// roles maps a logical role name to the predicate a unit type must satisfy.
// Roles are derived from type capabilities so they hold for any catalog.
var roles = map[string]func(*model.UnitType) bool{
	"harvester": (*model.UnitType).IsHarvester,
	"depot":     (*model.UnitType).IsDepot,
	"supply":    func(t *model.UnitType) bool { return t.Supply > 0 },
	"building":  func(t *model.UnitType) bool { return t.Building },
	// a depot that also provides supply: town halls and their upgrades
	"hall": func(t *model.UnitType) bool { return t.IsDepot() && t.Supply > 0 },
	"army": func(t *model.UnitType) bool {
		return !t.Building && !t.IsHarvester() && t.Demand > 0
	},
}

// hasRole reports whether t fills the named role. Unknown roles match nothing.
func hasRole(t *model.UnitType, role string) bool {
	pred, ok := roles[strings.ToLower(role)]
	return ok && pred(t)
}
