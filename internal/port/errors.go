package port

import "errors"

// Sentinel errors for port operations.
var (
	// ErrDuplicateContainer indicates a structurally equal container is already in the pool.
	ErrDuplicateContainer = errors.New("duplicate container")
	// ErrContainerNotFound indicates the container is not in the port's pool.
	ErrContainerNotFound = errors.New("container not found in port")
	// ErrNotDocked indicates the ship is not docked at the port.
	ErrNotDocked = errors.New("ship not docked at port")
	// ErrInvalidMetric indicates an unrecognised distance metric name.
	ErrInvalidMetric = errors.New("invalid distance metric")
	// ErrInvalidSnapshot indicates a snapshot that cannot be turned back into a port.
	ErrInvalidSnapshot = errors.New("invalid port snapshot")
)
