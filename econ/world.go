package econ

import "github.com/nstehr/quartermaster/model"

// Commander receives fire-and-forget orders. Issuing replaces the unit's
// current orders.
type Commander interface {
	Issue(cmd model.Command)
}

// Spatial answers the map queries the scheduler needs. All ranges are in
// tiles and all searches must be deterministic for a given world state.
type Spatial interface {
	// EnemiesInRange reports whether any unit hostile to player stands
	// within r of pos.
	EnemiesInRange(player int, pos model.Vec2, r int) bool
	// SelectUnits returns the units within r of center matching pred, in
	// unit list order.
	SelectUnits(center model.Vec2, r int, pred func(*model.Unit) bool) []*model.Unit
	FindBuildingPlace(worker *model.Unit, t *model.UnitType, near model.Vec2) (model.Vec2, bool)
	FindTerrain(move model.MoveMask, field model.FieldMask, r int, player int, from model.Vec2) (model.Vec2, bool)
	// FindDeposit returns the nearest usable depot of the worker's owner
	// that stores kind k, or nil.
	FindDeposit(worker *model.Unit, r int, k model.CostKind) *model.Unit
	FindDepositNear(player int, pos model.Vec2, r int, k model.CostKind) *model.Unit
	// FindResource returns the nearest live resource node of kind k within
	// r of from, or nil.
	FindResource(worker *model.Unit, from model.Vec2, r int, k model.CostKind) *model.Unit
	MapDistance(a, b model.Vec2) int
	IsPointOnMap(p model.Vec2) bool
}

// Limits answers "may this faction produce or own this type right now".
type Limits interface {
	CheckLimits(player int, t *model.UnitType) bool
	CheckDepend(player int, t *model.UnitType) bool
}

// World is everything a scheduling pass reads or commands.
type World interface {
	Commander
	Spatial
	Limits

	Cycle() uint64
	Player(index int) *model.Player
	// Units returns the player's units in stable list order.
	Units(player int) []*model.Unit
	Unit(id int) *model.Unit
}

// Capabilities is the static producer lookup built at load time.
type Capabilities interface {
	Builders(t *model.UnitType) []*model.UnitType
	Trainers(t *model.UnitType) []*model.UnitType
	Repairers(t *model.UnitType) []*model.UnitType
	Upgraders(t *model.UnitType) []*model.UnitType
	Equivalents(t *model.UnitType) []*model.UnitType
	Researchers(u *model.Upgrade) []*model.UnitType
	SingleResearchers(u *model.Upgrade) []*model.UnitType
	Depots(k model.CostKind) []*model.UnitType
	Givers(k model.CostKind) []*model.UnitType
	SupplyProducers() []*model.UnitType
	ResourceField(k model.CostKind) model.FieldMask
	ResourceNames() [model.MaxCosts]string
}

// Random is the synchronized random source shared by all peers.
type Random interface {
	Next() uint32
}

// Recorder observes scheduling decisions.
type Recorder interface {
	Production(faction int, unitType, outcome string)
	Research(faction int, upgrade, outcome string)
	Harvest(faction int, resource, outcome string)
	Repair(faction int, reason string)
	Exploration(faction int)
	Needed(faction int, mask model.CostMask)
}

// Production outcomes.
const (
	OutcomeIssued   = "issued"
	OutcomeFailed   = "failed"
	OutcomeLimited  = "limited"
	OutcomeShort    = "short"
	OutcomeBackoff  = "backoff"
	OutcomeUnknown  = "unknown"
	OutcomeAssigned = "assigned"
	OutcomeStolen   = "stolen"
	OutcomeReturned = "returned"

	// OutcomeRedirected: a worker was moved to a less crowded depot.
	OutcomeRedirected = "redirected"
)

type nopRecorder struct{}

func (nopRecorder) Production(int, string, string) {}
func (nopRecorder) Research(int, string, string)   {}
func (nopRecorder) Harvest(int, string, string)    {}
func (nopRecorder) Repair(int, string)             {}
func (nopRecorder) Exploration(int)                {}
func (nopRecorder) Needed(int, model.CostMask)     {}

// NopRecorder discards every observation.
var NopRecorder Recorder = nopRecorder{}
