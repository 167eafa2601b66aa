package econ

// Tuning holds the scheduler constants. All durations are simulation cycles
// or seconds of simulation time, never wall-clock time.
type Tuning struct {
	CyclesPerSecond        int    `mapstructure:"cycles_per_second" yaml:"cycles_per_second" validate:"min=1"`
	CollectInterval        int    `mapstructure:"collect_interval" yaml:"collect_interval" validate:"min=1"`
	BuildRetryFirst        uint64 `mapstructure:"build_retry_first" yaml:"build_retry_first"`
	BuildRetryLater        uint64 `mapstructure:"build_retry_later" yaml:"build_retry_later" validate:"gtefield=BuildRetryFirst"`
	DepotCrowding          int    `mapstructure:"depot_crowding" yaml:"depot_crowding" validate:"min=0"`
	DepotRange             int    `mapstructure:"depot_range" yaml:"depot_range" validate:"min=1"`
	NewDepotRange          int    `mapstructure:"new_depot_range" yaml:"new_depot_range" validate:"min=1"`
	HarvestSearchRange     int    `mapstructure:"harvest_search_range" yaml:"harvest_search_range" validate:"min=1"`
	RepairRange            int    `mapstructure:"repair_range" yaml:"repair_range" validate:"min=1"`
	RepairMinReserve       int    `mapstructure:"repair_min_reserve" yaml:"repair_min_reserve" validate:"min=0"`
	AttackedGraceSeconds   int    `mapstructure:"attacked_grace_seconds" yaml:"attacked_grace_seconds" validate:"min=0"`
	SmallEconomyHarvesters int    `mapstructure:"small_economy_harvesters" yaml:"small_economy_harvesters" validate:"min=1"`
	AIExplores             bool   `mapstructure:"ai_explores" yaml:"ai_explores"`
	AIChecksDependencies   bool   `mapstructure:"ai_checks_dependencies" yaml:"ai_checks_dependencies"`
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		CyclesPerSecond:        30,
		CollectInterval:        4,
		BuildRetryFirst:        150,
		BuildRetryLater:        450,
		DepotCrowding:          15,
		DepotRange:             15,
		NewDepotRange:          15,
		HarvestSearchRange:     1000,
		RepairRange:            15,
		RepairMinReserve:       99,
		AttackedGraceSeconds:   5,
		SmallEconomyHarvesters: 5,
		AIExplores:             true,
		AIChecksDependencies:   false,
	}
}
