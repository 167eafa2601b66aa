package sim

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nstehr/quartermaster/agent"
	"github.com/nstehr/quartermaster/catalog"
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/journal"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/rules"
	"github.com/nstehr/quartermaster/world"
)

func loadScene(t *testing.T) (*catalog.Catalog, *world.Map) {
	t.Helper()
	cat, err := catalog.Load("../data/catalog.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	w, err := world.LoadScenario("../data/scenario.yaml", cat)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	return cat, w
}

func defaultPlan() ([]*rules.Rule, error) { return rules.DefaultRules(), nil }

func run(t *testing.T, cycles uint64, j agent.Journal) (Result, *world.Map) {
	t.Helper()
	cat, w := loadScene(t)
	r, err := New(w, Options{
		Catalog: cat,
		Tuning:  econ.DefaultTuning(),
		Seed:    11,
		Plan:    defaultPlan,
		Journal: j,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := r.Run(context.Background(), cycles)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, w
}

func TestRunIsDeterministic(t *testing.T) {
	var digests []string
	for range 2 {
		j := journal.NewWriter(t.TempDir(), 600)
		run(t, 1800, j)
		if j.Entries() == 0 {
			t.Fatal("run journaled no commands")
		}
		digests = append(digests, j.Digest())
		j.Close()
	}
	if digests[0] != digests[1] {
		t.Errorf("digests differ: %s vs %s", digests[0], digests[1])
	}
}

func TestRunDrivesBothFactions(t *testing.T) {
	res, w := run(t, 1800, nil)
	if res.Cycles != 1800 || w.Cycle() != 1800 {
		t.Errorf("ran %d cycles, world at %d, want 1800", res.Cycles, w.Cycle())
	}
	if res.Passes != 60 {
		t.Errorf("Passes = %d, want 60", res.Passes)
	}
	if res.Commands[1] == 0 || res.Commands[2] == 0 {
		t.Errorf("Commands = %v, want both factions active", res.Commands)
	}
	if res.Fired["set-collect"] != 2 {
		t.Errorf("set-collect fired %d times, want once per faction", res.Fired["set-collect"])
	}
}

func TestRunWritesIndex(t *testing.T) {
	cat, w := loadScene(t)
	idx, err := journal.OpenIndex(filepath.Join(t.TempDir(), "ticks.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer idx.Close()

	r, err := New(w, Options{Catalog: cat, Tuning: econ.DefaultTuning(), Seed: 11, Plan: defaultPlan, Index: idx})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := r.Run(context.Background(), 300); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s, err := idx.Summary(2)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if s.Ticks != 10 {
		t.Errorf("indexed %d passes for faction 2, want 10", s.Ticks)
	}
}

func TestNewWithoutAIPlayers(t *testing.T) {
	cat, _ := loadScene(t)
	w := world.New(10, 10)
	w.AddPlayer(&model.Player{Index: 0, Name: "nature", Neutral: true})
	if _, err := New(w, Options{Catalog: cat, Tuning: econ.DefaultTuning()}); err == nil {
		t.Error("New accepted a scenario with no AI players")
	}
}

func TestRunCancelled(t *testing.T) {
	cat, w := loadScene(t)
	r, err := New(w, Options{Catalog: cat, Tuning: econ.DefaultTuning()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, 100); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
