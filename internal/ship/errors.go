package ship

import "errors"

// Sentinel errors for ship operations.
var (
	// ErrCapacityExceeded indicates a load would break a count, sub-limit or weight limit.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInsufficientFuel indicates the ship cannot reach the destination.
	ErrInsufficientFuel = errors.New("insufficient fuel")
	// ErrContainerNotFound indicates the container is not in the hold.
	ErrContainerNotFound = errors.New("container not aboard")
	// ErrAlreadyAboard indicates a container with the same ID is already in the hold.
	ErrAlreadyAboard = errors.New("container already aboard")
	// ErrNegativeAmount indicates a negative refuel amount.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrInvalidConfig indicates a ship configuration that violates an invariant.
	ErrInvalidConfig = errors.New("invalid ship configuration")
	// ErrUnknownClass indicates a ship class with no template.
	ErrUnknownClass = errors.New("unknown ship class")
)
