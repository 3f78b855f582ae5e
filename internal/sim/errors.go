package sim

import "errors"

// Sentinel errors for command semantics that no entity package owns.
var (
	// ErrNotAtPort indicates a command naming a port the ship is not docked at.
	ErrNotAtPort = errors.New("ship is not at port")
	// ErrDuplicateContainerID indicates a container definition reusing an ID
	// already present somewhere in the run.
	ErrDuplicateContainerID = errors.New("container id already in use")
)
