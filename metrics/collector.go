// Package metrics exports scheduler decisions as Prometheus counters.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nstehr/quartermaster/model"
)

const namespace = "quartermaster"

// Collector records scheduling outcomes and economy events. It satisfies
// econ.Recorder and agent.EventRecorder.
type Collector struct {
	registry *prometheus.Registry
	names    [model.MaxCosts]string

	production   *prometheus.CounterVec
	research     *prometheus.CounterVec
	harvest      *prometheus.CounterVec
	repairs      *prometheus.CounterVec
	explorations *prometheus.CounterVec
	short        *prometheus.GaugeVec
	shortPasses  *prometheus.CounterVec
	events       *prometheus.CounterVec
}

// NewCollector builds a collector on its own registry. names labels the
// resource kinds.
func NewCollector(names [model.MaxCosts]string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		names:    names,

		production: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "production",
				Name:      "requests_total",
				Help:      "Production attempts by unit type and outcome",
			},
			[]string{"faction", "unit_type", "outcome"},
		),
		research: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "production",
				Name:      "research_total",
				Help:      "Research and upgrade-to attempts by outcome",
			},
			[]string{"faction", "upgrade", "outcome"},
		),
		harvest: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "harvest",
				Name:      "orders_total",
				Help:      "Harvester orders by resource and outcome",
			},
			[]string{"faction", "resource", "outcome"},
		),
		repairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repair",
				Name:      "dispatched_total",
				Help:      "Repair orders by reason",
			},
			[]string{"faction", "reason"},
		),
		explorations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "harvest",
				Name:      "explorations_total",
				Help:      "Exploration requests raised because nothing was in reach",
			},
			[]string{"faction"},
		),
		short: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "resource_short",
				Help:      "1 if the last scheduling pass ran short of the resource",
			},
			[]string{"faction", "resource"},
		),
		shortPasses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "short_passes_total",
				Help:      "Scheduling passes that ran short of the resource",
			},
			[]string{"faction", "resource"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "economy",
				Name:      "events_total",
				Help:      "Economy events by kind",
			},
			[]string{"faction", "kind"},
		),
	}
	c.registry.MustRegister(
		c.production,
		c.research,
		c.harvest,
		c.repairs,
		c.explorations,
		c.short,
		c.shortPasses,
		c.events,
	)
	return c
}

func label(faction int) string { return strconv.Itoa(faction) }

func (c *Collector) Production(faction int, unitType, outcome string) {
	c.production.WithLabelValues(label(faction), unitType, outcome).Inc()
}

func (c *Collector) Research(faction int, upgrade, outcome string) {
	c.research.WithLabelValues(label(faction), upgrade, outcome).Inc()
}

func (c *Collector) Harvest(faction int, resource, outcome string) {
	c.harvest.WithLabelValues(label(faction), resource, outcome).Inc()
}

func (c *Collector) Repair(faction int, reason string) {
	c.repairs.WithLabelValues(label(faction), reason).Inc()
}

func (c *Collector) Exploration(faction int) {
	c.explorations.WithLabelValues(label(faction)).Inc()
}

// Needed sets the shortage gauge for every named resource.
func (c *Collector) Needed(faction int, mask model.CostMask) {
	f := label(faction)
	for k := 1; k < model.MaxCosts; k++ {
		name := c.names[k]
		if name == "" {
			continue
		}
		v := 0.0
		if mask.Has(model.CostKind(k)) {
			v = 1
			c.shortPasses.WithLabelValues(f, name).Inc()
		}
		c.short.WithLabelValues(f, name).Set(v)
	}
}

func (c *Collector) Event(faction int, kind string) {
	c.events.WithLabelValues(label(faction), kind).Inc()
}

// Registry exposes the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes path on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics listening", "addr", addr, "path", path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
