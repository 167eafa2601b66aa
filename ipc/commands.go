package ipc

import "github.com/nstehr/quartermaster/model"

// CommandsMessage is the sidecar's reply to a tick: every order the
// scheduler issued, in issue order.
type CommandsMessage struct {
	Cycle        uint64               `json:"cycle"`
	Faction      int                  `json:"faction"`
	Commands     []model.CommandState `json:"commands"`
	Explorations []ExplorationState   `json:"explorations,omitempty"`
	Rules        []string             `json:"rules,omitempty"` // build-plan rules that fired
}

// ExplorationState asks the host's scouting logic to look around a point.
type ExplorationState struct {
	X    int            `json:"x"`
	Y    int            `json:"y"`
	Mask model.MoveMask `json:"mask"`
}

// EncodeCommands flattens issued commands for the wire.
func EncodeCommands(cmds []model.Command, names model.TypeResolver) []model.CommandState {
	out := make([]model.CommandState, len(cmds))
	for i, c := range cmds {
		out[i] = model.CommandState{Unit: c.Unit, Order: model.EncodeOrder(c.Order, names)}
	}
	return out
}
