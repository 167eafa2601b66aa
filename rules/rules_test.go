package rules

import (
	"testing"

	"github.com/nstehr/quartermaster/catalog"
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/syncrand"
	"github.com/nstehr/quartermaster/world"
)

var _ Planner = (*econ.Manager)(nil)

const faction = 1

type scene struct {
	t   *testing.T
	cat *catalog.Catalog
	w   *world.Map
	m   *econ.Manager
}

func newScene(t *testing.T) *scene {
	t.Helper()
	cat, err := catalog.Load("../data/catalog.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	w := world.New(40, 40)
	w.SetResourceFields(cat.ResourceFields())
	w.AddPlayer(&model.Player{Index: 0, Name: "nature", Neutral: true})
	w.AddPlayer(&model.Player{Index: faction, Name: "blue", AI: true})
	m := econ.NewManager(faction, cat, syncrand.New(3), econ.DefaultTuning())
	return &scene{t: t, cat: cat, w: w, m: m}
}

func (s *scene) spawn(ident string, x, y int) *model.Unit {
	s.t.Helper()
	typ, ok := s.cat.UnitType(ident)
	if !ok {
		s.t.Fatalf("unknown unit type %q", ident)
	}
	return s.w.Spawn(faction, typ, model.Vec2{X: x, Y: y})
}

func (s *scene) player() *model.Player { return s.w.Player(faction) }

func (s *scene) env() PlanEnv { return NewPlanEnv(s.m, s.w, s.cat) }

// fakePlanner records what actions asked for.
type fakePlanner struct {
	requests []string
	research []string
	upgrades []string
	collect  model.Costs
	reserve  model.Costs
	sleep    int
	refuse   bool
}

func (p *fakePlanner) AddUnitTypeRequest(t *model.UnitType, count int) {
	for range count {
		p.requests = append(p.requests, t.Ident)
	}
}

func (p *fakePlanner) AddResearchRequest(_ econ.World, u *model.Upgrade) bool {
	if p.refuse {
		return false
	}
	p.research = append(p.research, u.Ident)
	return true
}

func (p *fakePlanner) AddUpgradeToRequest(_ econ.World, t *model.UnitType) bool {
	if p.refuse {
		return false
	}
	p.upgrades = append(p.upgrades, t.Ident)
	return true
}

func (p *fakePlanner) SetCollect(c model.Costs) { p.collect = c }
func (p *fakePlanner) SetReserve(c model.Costs) { p.reserve = c }
func (p *fakePlanner) Sleep(cycles int)         { p.sleep = cycles }
