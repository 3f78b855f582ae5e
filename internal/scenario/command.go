package scenario

import (
	"fmt"
	"strings"
)

// Action is a command verb.
type Action string

const (
	ActionLoad   Action = "load"
	ActionUnload Action = "unload"
	ActionSail   Action = "sail"
	ActionRefuel Action = "refuel"
)

// ParseAction normalises a verb. "un_load" is accepted as a spelling of unload.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "load":
		return ActionLoad, nil
	case "unload", "un_load":
		return ActionUnload, nil
	case "sail":
		return ActionSail, nil
	case "refuel":
		return ActionRefuel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Command is a decoded command record. PortID is optional for every action:
// for load and unload it names where the container is taken from or put,
// for sail it names the origin, which must be the ship's current port.
type Command struct {
	Index         int
	Action        Action
	ShipID        string
	ContainerID   string
	PortID        string
	DestinationID string
	Amount        float64
}

// DecodeCommand decodes a record carrying an "action" key.
func DecodeCommand(r Record) (Command, error) {
	verb, err := r.Str("action")
	if err != nil {
		return Command{}, err
	}
	action, err := ParseAction(verb)
	if err != nil {
		return Command{}, &RecordError{Category: CatUnknownKind, Index: r.Index, Field: "action", Record: r.String(), Err: err}
	}

	cmd := Command{Index: r.Index, Action: action}
	if cmd.ShipID, err = r.ID("ship_id"); err != nil {
		return Command{}, err
	}
	if cmd.PortID, _, err = r.OptionalID("port_id"); err != nil {
		return Command{}, err
	}

	switch action {
	case ActionLoad, ActionUnload:
		if cmd.ContainerID, err = r.ID("container_id"); err != nil {
			return Command{}, err
		}
	case ActionSail:
		if cmd.DestinationID, err = r.ID("destination_port_id"); err != nil {
			return Command{}, err
		}
	case ActionRefuel:
		if cmd.Amount, err = r.Float("amount"); err != nil {
			return Command{}, err
		}
		if cmd.Amount < 0 {
			return Command{}, invalidValue(r, "amount", fmt.Errorf("%w: amount must not be negative", ErrInvalidValue))
		}
	}
	return cmd, nil
}

// Target returns the entity a command is about, for diagnostics.
func (c Command) Target() string {
	switch c.Action {
	case ActionLoad, ActionUnload:
		return "container " + c.ContainerID
	case ActionSail:
		return "port " + c.DestinationID
	}
	return "ship " + c.ShipID
}
