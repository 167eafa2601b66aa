// Package config loads the sidecar's settings from a YAML file, a .env file
// and QM_ prefixed environment variables, in rising priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nstehr/quartermaster/econ"
)

type Config struct {
	Tuning  econ.Tuning   `mapstructure:"tuning"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Journal JournalConfig `mapstructure:"journal"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Plan    PlanConfig    `mapstructure:"plan"`
	Socket  SocketConfig  `mapstructure:"socket"`
	Sim     SimConfig     `mapstructure:"sim"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// JournalConfig places the command journal and its tick index. An empty
// Dir disables the journal.
type JournalConfig struct {
	Dir           string `mapstructure:"dir"`
	SegmentCycles uint64 `mapstructure:"segment_cycles" validate:"min=1"`
	IndexPath     string `mapstructure:"index_path"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// PlanConfig names the build plan. With no Path the default rules run.
type PlanConfig struct {
	Path string `mapstructure:"path"`
}

type SocketConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type SimConfig struct {
	Scenario string `mapstructure:"scenario"`
	Cycles   uint64 `mapstructure:"cycles" validate:"min=1"`
	Seed     uint64 `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	t := econ.DefaultTuning()
	v.SetDefault("tuning.cycles_per_second", t.CyclesPerSecond)
	v.SetDefault("tuning.collect_interval", t.CollectInterval)
	v.SetDefault("tuning.build_retry_first", t.BuildRetryFirst)
	v.SetDefault("tuning.build_retry_later", t.BuildRetryLater)
	v.SetDefault("tuning.depot_crowding", t.DepotCrowding)
	v.SetDefault("tuning.depot_range", t.DepotRange)
	v.SetDefault("tuning.new_depot_range", t.NewDepotRange)
	v.SetDefault("tuning.harvest_search_range", t.HarvestSearchRange)
	v.SetDefault("tuning.repair_range", t.RepairRange)
	v.SetDefault("tuning.repair_min_reserve", t.RepairMinReserve)
	v.SetDefault("tuning.attacked_grace_seconds", t.AttackedGraceSeconds)
	v.SetDefault("tuning.small_economy_harvesters", t.SmallEconomyHarvesters)
	v.SetDefault("tuning.ai_explores", t.AIExplores)
	v.SetDefault("tuning.ai_checks_dependencies", t.AIChecksDependencies)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "localhost:9464")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("journal.dir", "")
	v.SetDefault("journal.segment_cycles", 9000)
	v.SetDefault("journal.index_path", "")

	v.SetDefault("catalog.path", "data/catalog.yaml")
	v.SetDefault("plan.path", "")
	v.SetDefault("socket.path", "/tmp/quartermaster.sock")

	v.SetDefault("sim.scenario", "data/scenario.yaml")
	v.SetDefault("sim.cycles", 9000)
	v.SetDefault("sim.seed", 1)
}

// Load reads configuration from path, or from quartermaster.yaml in the
// working directory when path is empty. A missing default file is not an
// error; a missing explicit one is.
func Load(path string) (*Config, error) {
	// Optional; a missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("quartermaster")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/quartermaster")
	}
	v.SetEnvPrefix("QM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	err := validator.New().Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
