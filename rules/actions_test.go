package rules

import (
	"testing"

	"github.com/nstehr/quartermaster/model"
)

func TestActions(t *testing.T) {
	s := newScene(t)
	env := s.env()

	var p fakePlanner
	if err := Request(Farm, 2)(env, &p); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if len(p.requests) != 2 {
		t.Errorf("requests = %v, want two farms", p.requests)
	}
	if err := Research(Shields)(env, &p); err != nil || len(p.research) != 1 {
		t.Errorf("Research: err %v, research %v", err, p.research)
	}
	if err := UpgradeTo(Keep)(env, &p); err != nil || len(p.upgrades) != 1 {
		t.Errorf("UpgradeTo: err %v, upgrades %v", err, p.upgrades)
	}
	if err := Collect(map[string]int{"gold": 70, "wood": 30})(env, &p); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if p.collect[model.GoldCost] != 70 || p.collect[model.WoodCost] != 30 {
		t.Errorf("collect = %v", p.collect)
	}
	if err := Reserve(map[string]int{"oil": 100})(env, &p); err != nil || p.reserve[model.OilCost] != 100 {
		t.Errorf("Reserve: err %v, reserve %v", err, p.reserve)
	}
	if err := SleepFor(90)(env, &p); err != nil || p.sleep != 90 {
		t.Errorf("SleepFor: err %v, sleep %d", err, p.sleep)
	}
}

func TestActionErrors(t *testing.T) {
	s := newScene(t)
	env := s.env()
	tests := []struct {
		name   string
		action ActionFunc
	}{
		{"request unknown type", Request("zeppelin", 1)},
		{"research unknown upgrade", Research("lasers")},
		{"upgrade unknown type", UpgradeTo("castle")},
		{"collect unknown resource", Collect(map[string]int{"mana": 10})},
		{"reserve time", Reserve(map[string]int{"time": 10})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.action(env, &fakePlanner{}); err == nil {
				t.Error("action succeeded, want error")
			}
		})
	}
}

func TestResearchRefusalIsNotAnError(t *testing.T) {
	s := newScene(t)
	p := fakePlanner{refuse: true}
	if err := Research(Swords)(s.env(), &p); err != nil {
		t.Errorf("Research refused = %v, want nil", err)
	}
	if err := UpgradeTo(Keep)(s.env(), &p); err != nil {
		t.Errorf("UpgradeTo refused = %v, want nil", err)
	}
}
