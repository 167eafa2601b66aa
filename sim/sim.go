// Package sim drives AI factions against the in-memory world without a
// host game. The world stepper plays out the issued orders between
// scheduling passes.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/quartermaster/agent"
	"github.com/nstehr/quartermaster/catalog"
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/ipc"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/rules"
	"github.com/nstehr/quartermaster/syncrand"
	"github.com/nstehr/quartermaster/world"
)

// Options mirror agent.Options for a headless run.
type Options struct {
	Catalog  *catalog.Catalog
	Tuning   econ.Tuning
	Seed     uint64
	Plan     func() ([]*rules.Rule, error)
	Recorder econ.Recorder
	Events   agent.EventRecorder
	Journal  agent.Journal
	Index    agent.TickIndex
}

// Result summarises a run.
type Result struct {
	Cycles   uint64
	Passes   int
	Commands map[int]int // per faction
	Fired    map[string]int
}

// Runner owns the world and one Faction per AI player. All factions share
// one synchronized random source, as lockstep peers do.
type Runner struct {
	World    *world.Map
	Factions []*agent.Faction

	opts  Options
	sched *econ.Scheduler
}

// New sets up a Faction for every AI player in w.
func New(w *world.Map, opts Options) (*Runner, error) {
	if opts.Catalog == nil {
		return nil, errors.New("sim: no catalog")
	}
	w.SetResourceFields(opts.Catalog.ResourceFields())
	rng := syncrand.New(opts.Seed)

	r := &Runner{World: w, opts: opts}
	var managers []*econ.Manager
	for _, p := range w.Players() {
		if p == nil || !p.AI || p.Neutral {
			continue
		}
		m := econ.NewManager(p.Index, opts.Catalog, rng, opts.Tuning)
		if opts.Recorder != nil {
			m.Recorder = opts.Recorder
		}
		var engine *rules.Engine
		if opts.Plan != nil {
			rs, err := opts.Plan()
			if err != nil {
				return nil, fmt.Errorf("load plan: %w", err)
			}
			if engine, err = rules.NewEngine(rs); err != nil {
				return nil, fmt.Errorf("faction %d: %w", p.Index, err)
			}
		}
		f := agent.NewFaction(m, engine, opts.Catalog)
		if opts.Events != nil {
			f.Events = opts.Events
		}
		r.Factions = append(r.Factions, f)
		managers = append(managers, m)
	}
	if len(managers) == 0 {
		return nil, errors.New("sim: scenario has no AI players")
	}
	r.sched = econ.NewScheduler(managers...)
	return r, nil
}

// Run plays cycles cycles, stopping early if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, cycles uint64) (Result, error) {
	res := Result{Commands: map[int]int{}, Fired: map[string]int{}}
	start := r.World.Cycle()
	for r.World.Cycle()-start < cycles {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := r.step(&res); err != nil {
			return res, err
		}
		r.World.Step()
		res.Cycles++
	}
	slog.Info("simulation finished", "cycles", res.Cycles, "passes", res.Passes, "commands", res.Commands)
	return res, nil
}

func (r *Runner) step(res *Result) error {
	w := r.World
	events := w.DrainEvents()
	for _, f := range r.Factions {
		f.Observe(w, agent.FromWorld(w, f.Manager.State.Player, events))
	}
	if !r.sched.Step(w) {
		return nil
	}
	res.Passes++
	for _, f := range r.Factions {
		for _, name := range f.Plan(w) {
			res.Fired[name]++
		}
	}

	byFaction := map[int][]model.Command{}
	for _, c := range w.DrainIssued() {
		if u := w.Unit(c.Unit); u != nil {
			byFaction[u.Owner] = append(byFaction[u.Owner], c)
		}
	}
	for _, f := range r.Factions {
		player := f.Manager.State.Player
		cmds := ipc.EncodeCommands(byFaction[player], r.opts.Catalog)
		explorations := len(f.Manager.DrainExplorations())
		res.Commands[player] += len(cmds)

		if r.opts.Journal != nil && len(cmds) > 0 {
			if err := r.opts.Journal.Append(w.Cycle(), player, cmds); err != nil {
				return err
			}
		}
		if r.opts.Index != nil {
			if err := r.opts.Index.Record(f.TickRow(w.Cycle(), explorations, len(cmds))); err != nil {
				return err
			}
		}
	}
	return nil
}
