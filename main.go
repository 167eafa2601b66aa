package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nstehr/quartermaster/agent"
	"github.com/nstehr/quartermaster/catalog"
	"github.com/nstehr/quartermaster/config"
	"github.com/nstehr/quartermaster/ipc"
	"github.com/nstehr/quartermaster/journal"
	"github.com/nstehr/quartermaster/metrics"
	"github.com/nstehr/quartermaster/rules"
	"github.com/nstehr/quartermaster/sim"
	"github.com/nstehr/quartermaster/world"
)

const banner = `
 ___  _   _  __ _ _ __| |_ ___ _ __ _ __ ___   __ _ ___| |_ ___ _ __
/ _ \| | | |/ _' | '__| __/ _ \ '__| '_ ' _ \ / _' / __| __/ _ \ '__|
| (_) | |_| | (_| | |  | ||  __/ |  | | | | | | (_| \__ \ ||  __/ |
\__, |\__,_|\__,_|_|   \__\___|_|  |_| |_| |_|\__,_|___/\__\___|_|
   |_|
RTS Economy Scheduler`

var configPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "quartermaster",
		Short: "Production and resource-allocation scheduler for RTS AI factions",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (default ./quartermaster.yaml)")
	root.AddCommand(newServeCommand(), newSimCommand(), newCheckCommand())
	return root
}

// setup loads the config and installs the logger it describes.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(newLogger(cfg.Logging, os.Stdout))
	return cfg, nil
}

func newLogger(c config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadPlan returns a loader that yields a fresh rule set on every call.
func loadPlan(path string, cat *catalog.Catalog) func() ([]*rules.Rule, error) {
	return func() ([]*rules.Rule, error) {
		if path == "" {
			return rules.DefaultRules(), nil
		}
		p, err := rules.LoadPlan(path, cat)
		if err != nil {
			return nil, err
		}
		return p.Rules, nil
	}
}

type recorders struct {
	collector *metrics.Collector
	journal   *journal.Writer
	index     *journal.Index
}

func openRecorders(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (*recorders, error) {
	r := &recorders{}
	if cfg.Metrics.Enabled {
		r.collector = metrics.NewCollector(cat.ResourceNames())
		go func() {
			if err := r.collector.Serve(ctx, cfg.Metrics.Addr, cfg.Metrics.Path); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}
	if cfg.Journal.Dir != "" {
		r.journal = journal.NewWriter(cfg.Journal.Dir, cfg.Journal.SegmentCycles)
	}
	if cfg.Journal.IndexPath != "" {
		idx, err := journal.OpenIndex(cfg.Journal.IndexPath)
		if err != nil {
			return nil, err
		}
		r.index = idx
	}
	return r, nil
}

func (r *recorders) close() {
	if r.journal != nil {
		if err := r.journal.Close(); err != nil {
			slog.Error("failed to close journal", "error", err)
		}
	}
	if r.index != nil {
		r.index.Close()
	}
}

// agentOptions fills in only the recorders that are configured, so the
// interfaces stay nil otherwise.
func (r *recorders) agentOptions(opts *agent.Options) {
	if r.collector != nil {
		opts.Recorder = r.collector
		opts.Events = r.collector
	}
	if r.journal != nil {
		opts.Journal = r.journal
	}
	if r.index != nil {
		opts.Index = r.index
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as a sidecar to a host game on a unix socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			fmt.Println(banner)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	plan := loadPlan(cfg.Plan.Path, cat)
	if _, err := plan(); err != nil {
		return fmt.Errorf("build plan: %w", err)
	}
	rec, err := openRecorders(ctx, cfg, cat)
	if err != nil {
		return err
	}
	defer rec.close()

	opts := agent.Options{Catalog: cat, Tuning: cfg.Tuning, Plan: plan}
	rec.agentOptions(&opts)

	socketPath := cfg.Socket.Path
	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket %s: %w", socketPath, err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	defer os.Remove(socketPath)
	context.AfterFunc(ctx, func() { listener.Close() })

	slog.Info("listening on domain socket", "path", socketPath, "catalog", cfg.Catalog.Path, "plan", cfg.Plan.Path)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("shutting down")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			slog.Error("failed to accept connection", "error", err)
			continue
		}
		slog.Info("new connection accepted")
		go handleConn(ctx, conn, opts)
	}
}

func handleConn(ctx context.Context, conn net.Conn, opts agent.Options) {
	a := agent.New(ipc.NewConnection(conn, nil), opts)
	a.Register()
	if err := a.Conn.ReadLoop(ctx); err != nil {
		slog.Error("connection closed with error", "player", a.Player, "error", err)
		return
	}
	slog.Info("connection closed", "player", a.Player)
}

func newSimCommand() *cobra.Command {
	var (
		scenario string
		cycles   uint64
		seed     uint64
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run AI factions headless on a scenario and print the journal digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("scenario") {
				cfg.Sim.Scenario = scenario
			}
			if cmd.Flags().Changed("cycles") {
				cfg.Sim.Cycles = cycles
			}
			if cmd.Flags().Changed("seed") {
				cfg.Sim.Seed = seed
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSim(ctx, cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", "", "scenario file (overrides sim.scenario)")
	cmd.Flags().Uint64Var(&cycles, "cycles", 0, "cycles to simulate (overrides sim.cycles)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "synchronized random seed (overrides sim.seed)")
	return cmd
}

func runSim(ctx context.Context, cfg *config.Config, out io.Writer) error {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	w, err := world.LoadScenario(cfg.Sim.Scenario, cat)
	if err != nil {
		return err
	}
	rec, err := openRecorders(ctx, cfg, cat)
	if err != nil {
		return err
	}
	defer rec.close()

	// The digest is always computed; without a journal dir the entries go
	// to a scratch directory.
	if rec.journal == nil {
		dir, err := os.MkdirTemp("", "quartermaster-journal-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		rec.journal = journal.NewWriter(dir, cfg.Journal.SegmentCycles)
	}

	var aopts agent.Options
	rec.agentOptions(&aopts)
	r, err := sim.New(w, sim.Options{
		Catalog:  cat,
		Tuning:   cfg.Tuning,
		Seed:     cfg.Sim.Seed,
		Plan:     loadPlan(cfg.Plan.Path, cat),
		Recorder: aopts.Recorder,
		Events:   aopts.Events,
		Journal:  aopts.Journal,
		Index:    aopts.Index,
	})
	if err != nil {
		return err
	}
	slog.Info("simulation starting", "scenario", cfg.Sim.Scenario, "cycles", cfg.Sim.Cycles, "seed", cfg.Sim.Seed, "factions", len(r.Factions))
	res, err := r.Run(ctx, cfg.Sim.Cycles)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "cycles %d, passes %d, entries %d\n", res.Cycles, res.Passes, rec.journal.Entries())
	for _, f := range r.Factions {
		player := f.Manager.State.Player
		fmt.Fprintf(out, "faction %d: commands %d, queue %d\n", player, res.Commands[player], len(f.Manager.State.Queue))
		if rec.index != nil {
			s, err := rec.index.Summary(player)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  passes %d, short %d, explorations %d, max queue %d\n", s.Ticks, s.ShortTicks, s.Explorations, s.MaxQueue)
		}
	}
	fmt.Fprintf(out, "digest %s\n", rec.journal.Digest())
	return nil
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config, catalog and build plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			rs, err := loadPlan(cfg.Plan.Path, cat)()
			if err != nil {
				return err
			}
			engine, err := rules.NewEngine(rs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog: %d unit types, %d upgrades\n", len(cat.Types()), len(cat.Upgrades()))
			for _, r := range engine.Rules() {
				fmt.Fprintf(out, "  %4d  %-12s %s\n", r.Priority, r.Category, r.Name)
			}
			return nil
		},
	}
}
