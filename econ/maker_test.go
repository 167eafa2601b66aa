package econ

import (
	"testing"

	"github.com/nstehr/quartermaster/model"
)

func TestMakeUnitSkipsBusyBuilders(t *testing.T) {
	f := newFixture(t, 30, 30)
	f.give(1000, 1000, 0)
	busy := f.spawn("peasant", 5, 5)
	busy.Orders = []model.Order{&model.RepairOrder{Target: 42, Goal: model.NoPos}}
	gathering := f.spawn("peasant", 6, 5)
	gathering.Orders = []model.Order{&model.ResourceOrder{Kind: model.GoldCost, Target: 42, Started: true}}
	free := f.spawn("peasant", 20, 20)

	if !f.turn().makeUnit(f.typ("farm"), model.NoPos) {
		t.Fatal("makeUnit failed with a free builder")
	}
	if free.CurrentAction() != model.ActionBuild {
		t.Errorf("free worker action = %s, want build", free.CurrentAction())
	}
	if busy.CurrentAction() != model.ActionRepair || gathering.CurrentAction() != model.ActionResource {
		t.Error("a busy worker was given the build order")
	}
}

func TestMakeUnitUsesSyncRandom(t *testing.T) {
	pick := func() int {
		f := newFixture(t, 30, 30)
		f.give(1000, 1000, 0)
		for i := range 4 {
			f.spawn("peasant", 5+i, 5)
		}
		if !f.turn().makeUnit(f.typ("farm"), model.NoPos) {
			t.Fatal("makeUnit failed")
		}
		cmds := f.w.DrainIssued()
		if len(cmds) != 1 {
			t.Fatalf("issued %d commands, want 1", len(cmds))
		}
		return cmds[0].Unit
	}
	if a, b := pick(), pick(); a != b {
		t.Errorf("same seed picked workers %d and %d", a, b)
	}
}

func TestMakeUnitWithoutProducer(t *testing.T) {
	f := newFixture(t, 30, 30)
	f.give(1000, 1000, 0)
	if f.turn().makeUnit(f.typ("farm"), model.NoPos) {
		t.Error("makeUnit succeeded without a builder")
	}
	if f.turn().makeUnit(f.typ("gold-mine"), model.NoPos) {
		t.Error("makeUnit succeeded for a type nothing builds")
	}
	if got := f.rec.production["gold-mine/unknown"]; got != 1 {
		t.Errorf("unknown outcomes = %d, want 1", got)
	}
}

func TestMakeUnitPlacesNearHint(t *testing.T) {
	f := newFixture(t, 30, 30)
	f.give(1000, 1000, 0)
	w := f.spawn("peasant", 2, 2)
	hint := model.Vec2{X: 20, Y: 20}

	if !f.turn().makeUnit(f.typ("farm"), hint) {
		t.Fatal("makeUnit failed")
	}
	if b, ok := w.CurrentOrder().(*model.BuildOrder); !ok || b.Goal != hint {
		t.Errorf("build order = %v, want a farm at %v", w.CurrentOrder(), hint)
	}
}

func TestAddResearchRequest(t *testing.T) {
	f := newFixture(t, 30, 30)
	f.give(1000, 1000, 0)
	smith := f.spawn("blacksmith", 5, 5)
	swords := f.upgrade("swords1")

	if !f.m.AddResearchRequest(f.w, swords) {
		t.Fatal("AddResearchRequest failed")
	}
	if o, ok := smith.CurrentOrder().(*model.ResearchOrder); !ok || o.Upgrade != swords {
		t.Errorf("blacksmith order = %v, want research swords1", smith.CurrentOrder())
	}

	smith.Orders = nil
	f.player().Upgrades["swords1"] = true
	if f.m.AddResearchRequest(f.w, swords) {
		t.Error("researched an upgrade the faction already has")
	}
}

func TestAddResearchRequestShort(t *testing.T) {
	f := newFixture(t, 30, 30)
	smith := f.spawn("blacksmith", 5, 5)
	if f.m.AddResearchRequest(f.w, f.upgrade("swords1")) {
		t.Fatal("AddResearchRequest succeeded without gold")
	}
	if !smith.IsIdle() || !f.m.State.Needed.Has(model.GoldCost) {
		t.Errorf("Needed = %b, want gold", f.m.State.Needed)
	}
}

func TestAddResearchRequestSingle(t *testing.T) {
	f := newFixture(t, 30, 30)
	f.give(1000, 1000, 0)
	first := f.spawn("lumber-mill", 5, 5)
	second := f.spawn("lumber-mill", 15, 5)
	arrows := f.upgrade("arrows1")

	if !f.m.AddResearchRequest(f.w, arrows) {
		t.Fatal("AddResearchRequest failed")
	}
	if first.CurrentAction() != model.ActionResearch {
		t.Fatal("first mill is not researching")
	}
	if f.m.AddResearchRequest(f.w, arrows) {
		t.Error("one-shot upgrade researched twice")
	}
	if !second.IsIdle() {
		t.Error("second mill started the same one-shot upgrade")
	}
}

func TestAddUpgradeToRequest(t *testing.T) {
	f := newFixture(t, 30, 30)
	f.give(3000, 2000, 500)
	hall := f.spawn("town-hall", 2, 2)
	keep := f.typ("keep")

	if !f.m.AddUpgradeToRequest(f.w, keep) {
		t.Fatal("AddUpgradeToRequest failed")
	}
	if o, ok := hall.CurrentOrder().(*model.UpgradeToOrder); !ok || o.Type != keep {
		t.Errorf("hall order = %v, want upgrade to keep", hall.CurrentOrder())
	}
	// The hall is busy now.
	if f.m.AddUpgradeToRequest(f.w, keep) {
		t.Error("second upgrade issued with no idle hall")
	}
}

func TestAddUpgradeToRequestRefused(t *testing.T) {
	f := newFixture(t, 30, 30)
	f.give(3000, 2000, 0)
	hall := f.spawn("town-hall", 2, 2)
	keep := f.typ("keep")

	if f.m.AddUpgradeToRequest(f.w, keep) {
		t.Error("upgrade issued without oil")
	}
	f.give(3000, 2000, 500)
	f.player().Limits["keep"] = 0
	if f.m.AddUpgradeToRequest(f.w, keep) {
		t.Error("upgrade issued over the keep limit")
	}
	if !hall.IsIdle() {
		t.Error("hall got an order")
	}
	if f.m.AddUpgradeToRequest(f.w, f.typ("farm")) {
		t.Error("upgrade issued to a type nothing upgrades to")
	}
}

func TestNewDepotRequest(t *testing.T) {
	f := newFixture(t, 50, 50)
	f.spawn("town-hall", 0, 0)
	worker := f.spawn("peasant", 29, 30)
	worker.Orders = []model.Order{&model.ResourceOrder{Kind: model.WoodCost, Goal: model.Vec2{X: 30, Y: 30}}}

	f.m.NewDepotRequest(f.w, worker)
	q := f.m.State.Queue
	if len(q) != 1 {
		t.Fatalf("queue length = %d, want 1", len(q))
	}
	if q[0].Type != f.typ("lumber-mill") || q[0].Pos != (model.Vec2{X: 30, Y: 30}) {
		t.Errorf("request = %s at %v, want lumber-mill at the forest", q[0].Type.Ident, q[0].Pos)
	}

	f.m.NewDepotRequest(f.w, worker)
	if len(f.m.State.Queue) != 1 {
		t.Error("depot requested twice")
	}
}

func TestNewDepotRequestDepotNearby(t *testing.T) {
	f := newFixture(t, 50, 50)
	f.spawn("town-hall", 0, 0)
	mine := f.mine(8, 0, 1000)
	worker := f.spawn("peasant", 7, 3)
	worker.Orders = []model.Order{&model.ResourceOrder{Kind: model.GoldCost, Target: mine.ID, Goal: mine.Pos}}

	f.m.NewDepotRequest(f.w, worker)
	if len(f.m.State.Queue) != 0 {
		t.Errorf("queued %s with a hall in range", f.m.State.Queue[0].Type.Ident)
	}
}

func TestNewDepotRequestNeedsPrerequisites(t *testing.T) {
	f := newFixture(t, 50, 50)
	worker := f.spawn("peasant", 29, 30)
	worker.Orders = []model.Order{&model.ResourceOrder{Kind: model.WoodCost, Goal: model.Vec2{X: 30, Y: 30}}}

	// No hall: a lumber mill is not allowed yet, so a hall is requested.
	f.m.NewDepotRequest(f.w, worker)
	q := f.m.State.Queue
	if len(q) != 1 || q[0].Type != f.typ("town-hall") {
		t.Fatalf("queue = %+v, want a town-hall", q)
	}
}
