package agent

import (
	"testing"

	"github.com/nstehr/quartermaster/catalog"
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/ipc"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/syncrand"
	"github.com/nstehr/quartermaster/world"
)

const faction = 1

type scene struct {
	t   *testing.T
	cat *catalog.Catalog
	w   *world.Map
	f   *Faction
	rec eventCounter
}

type eventCounter map[string]int

func (c eventCounter) Event(_ int, kind string) { c[kind]++ }

func newScene(t *testing.T) *scene {
	t.Helper()
	cat, err := catalog.Load("../data/catalog.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	w := world.New(60, 40)
	w.SetResourceFields(cat.ResourceFields())
	w.AddPlayer(&model.Player{Index: 0, Name: "nature", Neutral: true})
	w.AddPlayer(&model.Player{Index: faction, Name: "blue", AI: true, Supply: 10})
	m := econ.NewManager(faction, cat, syncrand.New(1), econ.DefaultTuning())
	f := NewFaction(m, nil, cat)
	rec := eventCounter{}
	f.Events = rec
	return &scene{t: t, cat: cat, w: w, f: f, rec: rec}
}

func (s *scene) typ(ident string) *model.UnitType {
	s.t.Helper()
	t, ok := s.cat.UnitType(ident)
	if !ok {
		s.t.Fatalf("unknown unit type %q", ident)
	}
	return t
}

func (s *scene) spawn(ident string, x, y int) *model.Unit {
	return s.w.Spawn(faction, s.typ(ident), model.Vec2{X: x, Y: y})
}

func (s *scene) observe(cycle uint64) []Event {
	s.w.SetCycle(cycle)
	return s.f.Observe(s.w, nil)
}

func kinds(events []Event) map[EventKind]int {
	out := map[EventKind]int{}
	for _, e := range events {
		out[e.Kind]++
	}
	return out
}

func TestDetectEvents_NilPrev(t *testing.T) {
	s := newScene(t)
	s.spawn("town-hall", 2, 2)
	if events := s.observe(0); len(events) != 0 {
		t.Errorf("first observation produced %+v", events)
	}
}

func TestDetectEvents_NoEvents(t *testing.T) {
	s := newScene(t)
	s.spawn("town-hall", 2, 2)
	s.spawn("peasant", 8, 8)
	s.observe(0)
	if events := s.observe(30); len(events) != 0 {
		t.Errorf("expected 0 events, got %+v", events)
	}
}

func TestDetectEvents_CompletedReleasesRequest(t *testing.T) {
	s := newScene(t)
	m := s.f.Manager
	farm := s.typ("farm")
	m.AddUnitTypeRequest(farm, 2)
	m.State.Queue[0].Made = 1
	s.observe(0)

	site := s.w.AddUnit(&model.Unit{Owner: faction, Type: farm, Pos: model.Vec2{X: 5, Y: 5}, Orders: []model.Order{&model.BuiltOrder{}}})
	if events := s.observe(30); len(events) != 0 {
		t.Fatalf("construction site raised %+v", events)
	}

	site.Active = true
	site.Orders = nil
	events := s.observe(60)
	if k := kinds(events); k[EventCompleted] != 1 {
		t.Fatalf("events = %+v, want one completion", events)
	}
	if r := m.State.Queue[0]; r.Wanted != 1 || r.Made != 0 {
		t.Errorf("request = wanted %d made %d, want 1 and 0", r.Wanted, r.Made)
	}
	if s.rec["completed"] != 1 {
		t.Errorf("recorded %v", s.rec)
	}
}

func TestDetectEvents_UpgradeInPlace(t *testing.T) {
	s := newScene(t)
	hall := s.spawn("town-hall", 2, 2)
	s.observe(0)
	hall.Type = s.typ("keep")
	events := s.observe(30)
	if len(events) != 1 || events[0].Kind != EventCompleted || events[0].Type.Ident != "keep" {
		t.Errorf("events = %+v, want keep completed", events)
	}
}

func TestDetectEvents_LostBeforeCompletion(t *testing.T) {
	s := newScene(t)
	m := s.f.Manager
	farm := s.typ("farm")
	m.AddUnitTypeRequest(farm, 1)
	m.State.Queue[0].Made = 1
	site := s.w.AddUnit(&model.Unit{Owner: faction, Type: farm, Pos: model.Vec2{X: 5, Y: 5}})
	s.observe(0)

	s.w.RemoveUnit(site.ID)
	if k := kinds(s.observe(30)); k[EventLost] != 1 {
		t.Fatalf("events = %v, want one loss", k)
	}
	if m.State.Queue[0].Made != 0 {
		t.Errorf("Made = %d after loss, want 0", m.State.Queue[0].Made)
	}
}

func TestDetectEvents_HarvestersAndDepotLost(t *testing.T) {
	tests := []struct {
		name   string
		killed int
		want   int
	}{
		{"two", 2, 0},
		{"three", 3, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newScene(t)
			hall := s.spawn("town-hall", 2, 2)
			var workers []*model.Unit
			for i := range 4 {
				workers = append(workers, s.spawn("peasant", 8+i, 8))
			}
			s.observe(0)
			for _, u := range workers[:tc.killed] {
				s.w.RemoveUnit(u.ID)
			}
			s.w.RemoveUnit(hall.ID)
			k := kinds(s.observe(30))
			if k[EventHarvestersLost] != tc.want {
				t.Errorf("harvesters_lost = %d, want %d", k[EventHarvestersLost], tc.want)
			}
			if k[EventDepotLost] != 1 {
				t.Errorf("depot_lost = %d, want 1", k[EventDepotLost])
			}
		})
	}
}

func TestDetectEvents_SupplyBlockedOnce(t *testing.T) {
	s := newScene(t)
	p := s.w.Player(faction)
	p.Supply, p.Demand = 4, 4
	s.observe(0)

	s.f.Manager.State.NeedsSupply = true
	if k := kinds(s.observe(30)); k[EventSupplyBlocked] != 1 {
		t.Errorf("events = %v, want supply_blocked", k)
	}
	if k := kinds(s.observe(60)); k[EventSupplyBlocked] != 0 {
		t.Error("supply_blocked raised twice for one block")
	}
}

func TestDetectEvents_ProductionStalled(t *testing.T) {
	s := newScene(t)
	m := s.f.Manager
	m.AddUnitTypeRequest(s.typ("barracks"), 1)
	m.State.LastNeeded = model.CostMask(0).With(model.GoldCost)

	s.observe(100)
	for _, c := range []uint64{400, 700} {
		if k := kinds(s.observe(c)); k[EventProductionStalled] != 0 {
			t.Fatalf("stalled raised at cycle %d", c)
		}
	}
	if k := kinds(s.observe(1000)); k[EventProductionStalled] != 1 {
		t.Error("stall not raised after 900 cycles")
	}
	if k := kinds(s.observe(1300)); k[EventProductionStalled] != 0 {
		t.Error("stall raised twice for one streak")
	}

	// A pass without shortfall ends the streak.
	m.State.LastNeeded = 0
	s.observe(1330)
	m.State.LastNeeded = model.CostMask(0).With(model.WoodCost)
	s.observe(1360)
	if k := kinds(s.observe(2260)); k[EventProductionStalled] != 1 {
		t.Error("new streak did not raise a stall")
	}
}

func TestFromHost(t *testing.T) {
	got := FromHost(90, []ipc.HostEvent{
		{Kind: "depot_far", Unit: 4},
		{Kind: "completed", Unit: 5},
		{Kind: "captured", Unit: 6, Target: 7},
		{Kind: "teleported", Unit: 8},
	})
	if len(got) != 2 || got[0].Kind != EventDepotFar || got[1].Target != 7 || got[1].Cycle != 90 {
		t.Errorf("FromHost = %+v", got)
	}
}

func TestFromWorld(t *testing.T) {
	s := newScene(t)
	s.w.SetCycle(12)
	got := FromWorld(s.w, faction, []world.Event{
		{Kind: world.EventDepotFar, Unit: 3, Owner: faction},
		{Kind: world.EventDepotCrowded, Unit: 4, Owner: 2},
		{Kind: world.EventCompleted, Unit: 5, Owner: faction},
		{Kind: world.EventDepotCrowded, Unit: 6, Owner: faction},
	})
	if len(got) != 2 || got[0].Unit != 3 || got[1].Kind != EventDepotCrowded || got[1].Cycle != 12 {
		t.Errorf("FromWorld = %+v", got)
	}
}

func TestObserveDepotFarQueuesDepot(t *testing.T) {
	s := newScene(t)
	s.spawn("town-hall", 0, 0)
	worker := s.spawn("peasant", 39, 30)
	worker.Orders = []model.Order{&model.ResourceOrder{Kind: model.WoodCost, Goal: model.Vec2{X: 40, Y: 30}}}
	s.observe(0)

	s.f.Observe(s.w, []Event{{Kind: EventDepotFar, Unit: worker.ID}})
	q := s.f.Manager.State.Queue
	if len(q) != 1 || q[0].Type.Ident != "lumber-mill" {
		t.Errorf("queue = %+v, want a lumber-mill", q)
	}
}
