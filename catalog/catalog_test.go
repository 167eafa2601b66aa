package catalog

import (
	"strings"
	"testing"

	"github.com/nstehr/quartermaster/model"
)

func TestLoadSampleCatalog(t *testing.T) {
	c, err := Load("../data/catalog.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	peasant, ok := c.UnitType("peasant")
	if !ok {
		t.Fatal("peasant missing")
	}
	if !peasant.CanHarvest(model.GoldCost) || !peasant.CanHarvest(model.WoodCost) {
		t.Error("peasant should harvest gold and wood")
	}
	if !peasant.Harvests[model.WoodCost].TerrainHarvester {
		t.Error("wood should be harvested from terrain")
	}
	if got := c.ResourceField(model.WoodCost); got != model.FieldForest {
		t.Errorf("ResourceField(wood) = %b, want forest", got)
	}

	farm, _ := c.UnitType("farm")
	if got := c.Builders(farm); len(got) != 1 || got[0] != peasant {
		t.Errorf("Builders(farm) = %v, want [peasant]", names(got))
	}
	if got := c.Repairers(farm); len(got) != 1 || got[0] != peasant {
		t.Errorf("Repairers(farm) = %v, want [peasant]", names(got))
	}
	if got := names(c.SupplyProducers()); strings.Join(got, ",") != "town-hall,keep,farm" {
		t.Errorf("SupplyProducers = %v", got)
	}
	if got := names(c.Depots(model.WoodCost)); strings.Join(got, ",") != "town-hall,keep,lumber-mill" {
		t.Errorf("Depots(wood) = %v", got)
	}
	if got := names(c.Givers(model.GoldCost)); strings.Join(got, ",") != "gold-mine" {
		t.Errorf("Givers(gold) = %v", got)
	}

	hall, _ := c.UnitType("town-hall")
	keep, _ := c.UnitType("keep")
	if got := c.Equivalents(keep); len(got) != 1 || got[0] != hall {
		t.Errorf("Equivalents(keep) = %v, want [town-hall]", names(got))
	}
	if got := c.Upgraders(keep); len(got) != 1 || got[0] != hall {
		t.Errorf("Upgraders(keep) = %v, want [town-hall]", names(got))
	}

	arrows, _ := c.Upgrade("arrows1")
	swords, _ := c.Upgrade("swords1")
	if len(c.Researchers(arrows)) != 0 || len(c.SingleResearchers(arrows)) != 1 {
		t.Error("arrows1 should only be in the single-research table")
	}
	if got := names(c.Researchers(swords)); strings.Join(got, ",") != "blacksmith" {
		t.Errorf("Researchers(swords1) = %v", got)
	}
	if hall.Costs[model.TimeCost] != 255 || hall.Costs[model.WoodCost] != 800 {
		t.Errorf("town-hall costs = %v", hall.Costs)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"unknown builds target",
			"unit_types:\n  - ident: a\n    builds: [b]\n",
			`references unknown type "b"`,
		},
		{
			"unknown cost kind",
			"unit_types:\n  - ident: a\n    costs: {mana: 3}\n",
			`unknown cost kind "mana"`,
		},
		{
			"duplicate ident",
			"unit_types:\n  - ident: a\n  - ident: a\n",
			"declared twice",
		},
		{
			"terrain harvest without field",
			"resources:\n  - name: gold\nunit_types:\n  - ident: a\n    harvests:\n      gold: {terrain: true}\n",
			"has no terrain field",
		},
		{
			"builds a non-building",
			"unit_types:\n  - ident: a\n    builds: [b]\n  - ident: b\n",
			"not a building",
		},
		{
			"missing unit types",
			"upgrades: []\n",
			"invalid catalog",
		},
	}
	for _, tc := range tests {
		_, err := Parse([]byte(tc.yaml))
		if err == nil {
			t.Errorf("%s: Parse succeeded, want error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestResourceNamesDefault(t *testing.T) {
	c, err := Parse([]byte("unit_types:\n  - ident: a\n"))
	if err != nil {
		t.Fatal(err)
	}
	if k, ok := c.ResourceKind("wood"); !ok || k != model.WoodCost {
		t.Errorf("ResourceKind(wood) = %d, %v", k, ok)
	}
	if k, ok := c.ResourceKind("time"); !ok || k != model.TimeCost {
		t.Errorf("ResourceKind(time) = %d, %v", k, ok)
	}
	if _, ok := c.ResourceKind("mana"); ok {
		t.Error("ResourceKind(mana) should fail")
	}
}

func names(ts []*model.UnitType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Ident
	}
	return out
}
