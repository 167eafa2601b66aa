package ipc

import "github.com/nstehr/quartermaster/model"

// Message types. The host sends hello once, then a tick per scheduling
// step; the sidecar answers each tick with a commands batch.
const (
	TypeHello    = "hello"
	TypeAck      = "ack"
	TypeTick     = "tick"
	TypeCommands = "commands"
	// TypeDoctrine carries a rules.Doctrine object that replaces the
	// faction's build plan.
	TypeDoctrine = "doctrine"
	TypeError    = "error"
)

type HelloMessage struct {
	Player  string `json:"player"`
	Faction int    `json:"faction"` // player index the sidecar schedules
	Seed    uint64 `json:"seed"`    // synchronized random seed shared by all peers
}

type AckMessage struct {
	Status  string `json:"status"`
	Faction int    `json:"faction"`
}

// TickMessage is the host's state for one cycle plus what happened since
// the previous tick.
type TickMessage struct {
	Snapshot model.Snapshot `json:"snapshot"`
	Events   []HostEvent    `json:"events,omitempty"`
}

// HostEvent reports something the host saw happen that a snapshot does not
// show: depot_far and depot_crowded name the delivering worker, captured
// names the caster (Unit) and the unit that changed hands (Target).
type HostEvent struct {
	Kind   string `json:"kind"`
	Unit   int    `json:"unit,omitempty"`
	Target int    `json:"target,omitempty"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
