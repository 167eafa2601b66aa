package agent

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/quartermaster/catalog"
	"github.com/nstehr/quartermaster/econ"
	"github.com/nstehr/quartermaster/ipc"
	"github.com/nstehr/quartermaster/journal"
	"github.com/nstehr/quartermaster/model"
	"github.com/nstehr/quartermaster/rules"
	"github.com/nstehr/quartermaster/syncrand"
	"github.com/nstehr/quartermaster/world"
)

// Journal records the commands issued on each scheduling step.
type Journal interface {
	Append(cycle uint64, faction int, cmds []model.CommandState) error
}

// TickIndex records a summary of each scheduling pass.
type TickIndex interface {
	Record(row journal.TickRow) error
}

// Options configure every session the sidecar accepts.
type Options struct {
	Catalog *catalog.Catalog
	Tuning  econ.Tuning
	// Plan returns a fresh rule set per session; rules are compiled in
	// place so sessions must not share them. Nil means no build plan.
	Plan     func() ([]*rules.Rule, error)
	Recorder econ.Recorder
	Events   EventRecorder
	Journal  Journal
	Index    TickIndex
}

// Agent owns the decisions for a single faction over one connection.
type Agent struct {
	Conn    *ipc.Connection
	Player  string
	Faction *Faction

	opts  Options
	sched *econ.Scheduler
}

func New(conn *ipc.Connection, opts Options) *Agent {
	return &Agent{Conn: conn, opts: opts}
}

// Register installs the agent's handlers on its connection.
func (a *Agent) Register() {
	a.Conn.RegisterHandler(ipc.TypeHello, a.HandleHello)
	a.Conn.RegisterHandler(ipc.TypeTick, a.HandleTick)
	a.Conn.RegisterHandler(ipc.TypeDoctrine, a.HandleDoctrine)
}

// HandleHello sets up the faction's scheduler and completes the handshake
// so the host knows the sidecar is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}

	m := econ.NewManager(hello.Faction, a.opts.Catalog, syncrand.New(hello.Seed), a.opts.Tuning)
	if a.opts.Recorder != nil {
		m.Recorder = a.opts.Recorder
	}

	var engine *rules.Engine
	if a.opts.Plan != nil {
		rs, err := a.opts.Plan()
		if err != nil {
			return nil, fmt.Errorf("load plan: %w", err)
		}
		if engine, err = rules.NewEngine(rs); err != nil {
			return nil, err
		}
	}

	a.Player = hello.Player
	a.Faction = NewFaction(m, engine, a.opts.Catalog)
	if a.opts.Events != nil {
		a.Faction.Events = a.opts.Events
	}
	a.sched = econ.NewScheduler(m)
	if a.Conn != nil {
		a.Conn.Name = hello.Player
	}
	slog.Info("player identified", "player", a.Player, "faction", hello.Faction, "seed", hello.Seed)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Faction: hello.Faction})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick rebuilds the world from the snapshot, applies events, runs the
// scheduler when a new second has started and replies with every command
// issued.
func (a *Agent) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.Faction == nil {
		return nil, errors.New("tick before hello")
	}
	var tick ipc.TickMessage
	if err := env.Decode(&tick); err != nil {
		return nil, err
	}
	cmds, err := a.Step(tick)
	if err != nil {
		return nil, err
	}
	reply, err := ipc.NewEnvelope(ipc.TypeCommands, cmds)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// Step is HandleTick without the envelope.
func (a *Agent) Step(tick ipc.TickMessage) (ipc.CommandsMessage, error) {
	cat := a.opts.Catalog
	w, err := world.FromSnapshot(tick.Snapshot, cat)
	if err != nil {
		return ipc.CommandsMessage{}, fmt.Errorf("snapshot: %w", err)
	}
	w.SetResourceFields(cat.ResourceFields())

	f := a.Faction
	f.Observe(w, FromHost(w.Cycle(), tick.Events))

	var fired []string
	stepped := a.sched.Step(w)
	if stepped {
		fired = f.Plan(w)
	}

	out := ipc.CommandsMessage{
		Cycle:    w.Cycle(),
		Faction:  f.player(),
		Commands: ipc.EncodeCommands(w.DrainIssued(), cat),
		Rules:    fired,
	}
	for _, ex := range f.Manager.DrainExplorations() {
		out.Explorations = append(out.Explorations, ipc.ExplorationState{X: ex.Pos.X, Y: ex.Pos.Y, Mask: ex.Mask})
	}
	if a.opts.Journal != nil && len(out.Commands) > 0 {
		if err := a.opts.Journal.Append(out.Cycle, out.Faction, out.Commands); err != nil {
			slog.Error("journal append failed", "error", err)
		}
	}
	if a.opts.Index != nil && stepped {
		if err := a.opts.Index.Record(f.TickRow(out.Cycle, len(out.Explorations), len(out.Commands))); err != nil {
			slog.Error("index record failed", "error", err)
		}
	}
	slog.Debug("tick handled",
		"player", a.Player,
		"cycle", out.Cycle,
		"commands", len(out.Commands),
		"queue", len(f.Manager.State.Queue),
		"rules", fired,
	)
	return out, nil
}

// HandleDoctrine replaces the build plan with a compiled doctrine. The old
// rules stay active if the new ones fail to compile.
func (a *Agent) HandleDoctrine(env ipc.Envelope) (*ipc.Envelope, error) {
	if a.Faction == nil {
		return nil, errors.New("doctrine before hello")
	}
	var d rules.Doctrine
	if err := env.Decode(&d); err != nil {
		return nil, err
	}
	d.Validate()
	compiled := rules.CompileDoctrine(d)
	if a.Faction.Engine == nil {
		engine, err := rules.NewEngine(compiled)
		if err != nil {
			return nil, err
		}
		a.Faction.Engine = engine
	} else if err := a.Faction.Engine.Swap(compiled); err != nil {
		return nil, err
	}
	slog.Info("doctrine applied",
		"player", a.Player,
		"name", d.Name,
		"rationale", d.Rationale,
		"economy", d.EconomyPriority,
		"tech", d.TechPriority,
		"military", d.MilitaryWeight,
		"workers", d.WorkerTarget,
	)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Faction: a.Faction.player()})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
