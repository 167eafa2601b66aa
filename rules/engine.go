package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// idleDiagInterval throttles the "nothing fired" diagnostics, in cycles.
const idleDiagInterval = 300

// Engine runs compiled build-plan rules against one faction each tick.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category, so one category adds at most one request per pass.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule

	memMu    sync.Mutex // guards once and lastDiag
	once     map[string]bool
	lastDiag uint64
	diagged  bool
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		rules: compiled,
		once:  make(map[string]bool),
	}, nil
}

// Rules returns the active rule set in evaluation order.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules
}

// Evaluate runs all rules against env and applies the actions of those that
// match to p. It returns the names of the rules that fired.
func (e *Engine) Evaluate(env PlanEnv, p Planner) []string {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	e.memMu.Lock()
	defer e.memMu.Unlock()

	fired := make(map[string]bool) // category → exclusive rule already fired
	var names []string
	for _, r := range rules {
		if fired[r.Category] || (r.Once && e.once[r.Name]) {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		names = append(names, r.Name)
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category)

		if err := r.Action(env, p); err != nil {
			slog.Error("rule action error", "rule", r.Name, "error", err)
		}

		if r.Once {
			e.once[r.Name] = true
		}
		if r.Exclusive {
			fired[r.Category] = true
		}
	}

	if len(names) == 0 {
		e.logIdleDiagnostics(env)
	}
	return names
}

// Swap atomically replaces the rule set. Compiles first; if compilation
// fails the old rules remain active. Once rules of the new set may fire
// again.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()

	e.memMu.Lock()
	clear(e.once)
	e.memMu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// logIdleDiagnostics helps debug "why isn't the plan doing anything?".
// Caller holds memMu.
func (e *Engine) logIdleDiagnostics(env PlanEnv) {
	if e.diagged && env.cycle-e.lastDiag < idleDiagInterval {
		return
	}
	e.lastDiag, e.diagged = env.cycle, true

	slog.Debug("plan idle",
		"cycle", env.cycle,
		"queue", env.QueueLength(),
		"supply", env.Supply(),
		"demand", env.Demand(),
		"harvesters", env.Harvesters(),
		"idleHarvesters", env.IdleHarvesters(),
	)
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %q", r.Name)
		}
		seen[r.Name] = true
		if r.Action == nil {
			return nil, fmt.Errorf("rule %q has no action", r.Name)
		}
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(PlanEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
