package model

import (
	"strings"
)

// CostKind indexes a Costs vector. Kind 0 is build time and never a
// gatherable resource; kinds 1..MaxCosts-1 are resources.
type CostKind int

const (
	TimeCost CostKind = iota
	GoldCost
	WoodCost
	OilCost
	Cost4
	Cost5
	Cost6

	MaxCosts = 7
)

// DefaultResourceNames is the name table used when a catalog does not
// declare its own.
var DefaultResourceNames = [MaxCosts]string{"time", "gold", "wood", "oil", "ore", "stone", "coal"}

// Costs is a fixed-size amount per cost kind.
type Costs [MaxCosts]int

// Sum adds kinds 1..MaxCosts-1; time is excluded.
func (c Costs) Sum() int {
	n := 0
	for k := 1; k < MaxCosts; k++ {
		n += c[k]
	}
	return n
}

// Add returns c + o element-wise.
func (c Costs) Add(o Costs) Costs {
	for k := range c {
		c[k] += o[k]
	}
	return c
}

// CostMask has bit k set for every cost kind k.
type CostMask uint32

// Has reports whether kind k is set.
func (m CostMask) Has(k CostKind) bool { return m&(1<<uint(k)) != 0 }

// With returns the mask with kind k set.
func (m CostMask) With(k CostKind) CostMask { return m | 1<<uint(k) }

// Kinds lists the set kinds in ascending order.
func (m CostMask) Kinds() []CostKind {
	var out []CostKind
	for k := CostKind(1); k < MaxCosts; k++ {
		if m.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Format renders the mask with resource names, e.g. "gold|wood".
func (m CostMask) Format(names [MaxCosts]string) string {
	var parts []string
	for _, k := range m.Kinds() {
		parts = append(parts, names[k])
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
