package rules

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const samplePlan = `
name: test-plan
doctrine:
  name: Rush
  economy_priority: 0.2
  military_weight: 1
  worker_target: 6
rules:
  - name: early-farm
    priority: 800
    category: supply
    exclusive: true
    once: true
    when: 'Planned("farm") == 0'
    do:
      request: {type: farm, count: 1}
  - name: save-wood
    category: reserve
    when: 'Needed("wood")'
    do:
      reserve: {wood: 200}
`

func TestParsePlan(t *testing.T) {
	s := newScene(t)
	p, err := ParsePlan([]byte(samplePlan), s.cat)
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.Name != "test-plan" || p.Doctrine == nil || p.Doctrine.Name != "Rush" {
		t.Errorf("plan = %q doctrine %+v", p.Name, p.Doctrine)
	}
	want := len(CompileDoctrine(*p.Doctrine)) + 2
	if len(p.Rules) != want {
		t.Errorf("len(Rules) = %d, want %d", len(p.Rules), want)
	}
	names := ruleNames(p.Rules)
	if !slices.Contains(names, "early-farm") || !slices.Contains(names, "save-wood") {
		t.Errorf("custom rules missing: %v", names)
	}

	engine, err := NewEngine(p.Rules)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	var fp fakePlanner
	fired := engine.Evaluate(s.env(), &fp)
	if !slices.Contains(fired, "early-farm") || !slices.Contains(fp.requests, Farm) {
		t.Errorf("fired %v, requests %v", fired, fp.requests)
	}
}

func TestParsePlanErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no name", `rules: []`},
		{"no action", `
name: p
rules:
  - {name: a, category: c, when: 'true'}`},
		{"two actions", `
name: p
rules:
  - {name: a, category: c, when: 'true', do: {research: swords1, sleep: 30}}`},
		{"unknown type", `
name: p
rules:
  - {name: a, category: c, when: 'true', do: {request: {type: zeppelin, count: 1}}}`},
		{"zero count", `
name: p
rules:
  - {name: a, category: c, when: 'true', do: {request: {type: farm, count: 0}}}`},
		{"unknown upgrade", `
name: p
rules:
  - {name: a, category: c, when: 'true', do: {research: lasers}}`},
		{"unknown resource", `
name: p
rules:
  - {name: a, category: c, when: 'true', do: {collect: {mana: 50}}}`},
		{"collect over 100", `
name: p
rules:
  - {name: a, category: c, when: 'true', do: {collect: {gold: 150}}}`},
		{"bad condition", `
name: p
rules:
  - {name: a, category: c, when: 'Planned("farm") <', do: {sleep: 30}}`},
		{"missing category", `
name: p
rules:
  - {name: a, when: 'true', do: {sleep: 30}}`},
		{"not yaml", `name: [`},
	}
	s := newScene(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParsePlan([]byte(tc.yaml), s.cat); err == nil {
				t.Error("ParsePlan succeeded, want error")
			}
		})
	}
}

func TestLoadPlan(t *testing.T) {
	s := newScene(t)
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte(samplePlan), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlan(path, s.cat); err != nil {
		t.Errorf("LoadPlan: %v", err)
	}
	if _, err := LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"), s.cat); err == nil {
		t.Error("LoadPlan of a missing file succeeded")
	}
}

func TestSamplePlanLoads(t *testing.T) {
	s := newScene(t)
	if _, err := LoadPlan("../data/plan.yaml", s.cat); err != nil {
		t.Fatalf("LoadPlan(data/plan.yaml): %v", err)
	}
}
