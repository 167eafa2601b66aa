package agent

import (
	"testing"

	"github.com/nstehr/quartermaster/catalog"
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/ipc"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/rules"
)

type fakeJournal struct {
	cycles []uint64
	cmds   int
}

func (j *fakeJournal) Append(cycle uint64, _ int, cmds []model.CommandState) error {
	j.cycles = append(j.cycles, cycle)
	j.cmds += len(cmds)
	return nil
}

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load("../data/catalog.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cat
}

func openingSnapshot(cycle uint64) model.Snapshot {
	return model.Snapshot{
		Cycle:     cycle,
		MapWidth:  40,
		MapHeight: 40,
		Players: []model.PlayerState{
			{Index: 0, Name: "nature", Neutral: true},
			{Index: 1, Name: "blue", AI: true, Supply: 5, Demand: 2, Resources: map[string]int{"gold": 1000, "wood": 1000}},
		},
		Units: []model.UnitState{
			{ID: 1, Owner: 1, Type: "town-hall", X: 2, Y: 2},
			{ID: 2, Owner: 1, Type: "peasant", X: 8, Y: 8},
			{ID: 3, Owner: 1, Type: "peasant", X: 9, Y: 8},
		},
	}
}

func newTestAgent(t *testing.T, j Journal) *Agent {
	t.Helper()
	a := New(nil, Options{
		Catalog: loadCatalog(t),
		Tuning:  econ.DefaultTuning(),
		Plan:    func() ([]*rules.Rule, error) { return rules.DefaultRules(), nil },
		Journal: j,
	})
	env, err := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{Player: "blue", Faction: 1, Seed: 42})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	reply, err := a.HandleHello(env)
	if err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
	var ack ipc.AckMessage
	if err := reply.Decode(&ack); err != nil || ack.Status != "ok" || ack.Faction != 1 {
		t.Fatalf("ack = %+v, %v", ack, err)
	}
	return a
}

func TestAgentSession(t *testing.T) {
	j := &fakeJournal{}
	a := newTestAgent(t, j)

	first, err := a.Step(ipc.TickMessage{Snapshot: openingSnapshot(0)})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if first.Faction != 1 || first.Cycle != 0 {
		t.Errorf("reply header = faction %d cycle %d", first.Faction, first.Cycle)
	}
	found := false
	for _, r := range first.Rules {
		if r == "train-worker" {
			found = true
		}
	}
	if !found {
		t.Fatalf("rules fired = %v, want train-worker", first.Rules)
	}

	// Same second: the scheduler does not run again.
	mid, err := a.Step(ipc.TickMessage{Snapshot: openingSnapshot(10)})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(mid.Rules) != 0 || len(mid.Commands) != 0 {
		t.Errorf("mid-second reply = %+v, want nothing", mid)
	}

	next, err := a.Step(ipc.TickMessage{Snapshot: openingSnapshot(60)})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	trained := false
	for _, c := range next.Commands {
		if c.Unit == 1 && c.Order.Action == "train" && c.Order.Type == "peasant" {
			trained = true
		}
	}
	if !trained {
		t.Errorf("commands = %+v, want the hall to train a peasant", next.Commands)
	}
	if len(j.cycles) == 0 || j.cycles[len(j.cycles)-1] != 60 {
		t.Errorf("journal cycles = %v, want the cycle 60 commands", j.cycles)
	}
}

func TestAgentTickBeforeHello(t *testing.T) {
	a := New(nil, Options{Catalog: loadCatalog(t)})
	env, _ := ipc.NewEnvelope(ipc.TypeTick, ipc.TickMessage{Snapshot: openingSnapshot(0)})
	if _, err := a.HandleTick(env); err == nil {
		t.Error("tick before hello accepted")
	}
	env, _ = ipc.NewEnvelope(ipc.TypeDoctrine, rules.DefaultDoctrine())
	if _, err := a.HandleDoctrine(env); err == nil {
		t.Error("doctrine before hello accepted")
	}
}

func TestAgentBadSnapshot(t *testing.T) {
	a := newTestAgent(t, nil)
	snap := openingSnapshot(0)
	snap.Units = append(snap.Units, model.UnitState{ID: 4, Owner: 1, Type: "dragon"})
	if _, err := a.Step(ipc.TickMessage{Snapshot: snap}); err == nil {
		t.Error("snapshot with an unknown unit type accepted")
	}
}

func TestAgentDoctrineSwap(t *testing.T) {
	a := newTestAgent(t, nil)
	d := rules.DefaultDoctrine()
	d.Name = "peaceful"
	d.MilitaryWeight = 0
	d.TechPriority = 0
	env, err := ipc.NewEnvelope(ipc.TypeDoctrine, d)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if _, err := a.HandleDoctrine(env); err != nil {
		t.Fatalf("HandleDoctrine: %v", err)
	}
	for _, r := range a.Faction.Engine.Rules() {
		if r.Category == "military" {
			t.Errorf("rule %s survived a peaceful doctrine", r.Name)
		}
	}
}

func TestAgentDoctrineWithoutPlan(t *testing.T) {
	a := New(nil, Options{Catalog: loadCatalog(t), Tuning: econ.DefaultTuning()})
	hello, _ := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{Player: "blue", Faction: 1})
	if _, err := a.HandleHello(hello); err != nil {
		t.Fatalf("HandleHello: %v", err)
	}
	if a.Faction.Engine != nil {
		t.Fatal("engine built without a plan")
	}
	env, _ := ipc.NewEnvelope(ipc.TypeDoctrine, rules.DefaultDoctrine())
	if _, err := a.HandleDoctrine(env); err != nil {
		t.Fatalf("HandleDoctrine: %v", err)
	}
	if a.Faction.Engine == nil || len(a.Faction.Engine.Rules()) == 0 {
		t.Error("doctrine did not install a build plan")
	}
}
