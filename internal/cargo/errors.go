package cargo

import "errors"

// Sentinel errors for container construction.
var (
	// ErrInvalidCategory indicates a heavy container with a special code other than R or L.
	ErrInvalidCategory = errors.New("invalid container category")
	// ErrInvalidWeight indicates a zero or negative container weight.
	ErrInvalidWeight = errors.New("container weight must be positive")
	// ErrUnknownItemKind indicates an item kind other than small, heavy, refrigerated or liquid.
	ErrUnknownItemKind = errors.New("unknown item kind")
	// ErrInvalidItem indicates an item that cannot be packed: bad weight or count, or the wrong container.
	ErrInvalidItem = errors.New("invalid item")
)
