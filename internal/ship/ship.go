// Package ship implements the ship state machine: a hold of containers bounded
// by count, per-category and weight limits, and a fuel tank spent by sailing.
//
// A ship is always docked at exactly one port. Sailing is instantaneous and
// atomic: fuel and location change together or not at all. Load and Unload
// only touch the hold; moving the container in or out of a port's pool is
// the caller's job.
package ship

import (
	"fmt"
	"slices"

	"github.com/papapumpkin/harbor/internal/cargo"
	"github.com/papapumpkin/harbor/internal/port"
)

// Limits caps the number of containers in the hold. MaxHeavy counts Heavy
// and both of its subtypes.
type Limits struct {
	MaxAll          int `json:"max_containers" toml:"max_containers"`
	MaxHeavy        int `json:"max_heavy" toml:"max_heavy"`
	MaxRefrigerated int `json:"max_refrigerated" toml:"max_refrigerated"`
	MaxLiquid       int `json:"max_liquid" toml:"max_liquid"`
}

// Config holds everything needed to create a ship.
type Config struct {
	ID        string
	Fuel      float64
	Limits    Limits
	MaxWeight float64
	FuelPerKm float64
}

func (c Config) validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidConfig)
	case c.Fuel < 0:
		return fmt.Errorf("%w: negative fuel %g", ErrInvalidConfig, c.Fuel)
	case c.FuelPerKm < 0:
		return fmt.Errorf("%w: negative fuel consumption %g", ErrInvalidConfig, c.FuelPerKm)
	case c.MaxWeight < 0:
		return fmt.Errorf("%w: negative max weight %g", ErrInvalidConfig, c.MaxWeight)
	case c.Limits.MaxAll < 0 || c.Limits.MaxHeavy < 0 || c.Limits.MaxRefrigerated < 0 || c.Limits.MaxLiquid < 0:
		return fmt.Errorf("%w: negative container limit", ErrInvalidConfig)
	}
	return nil
}

// Ship is a vessel with a hold and a fuel tank.
type Ship struct {
	id        string
	fuel      float64
	port      *port.Port
	limits    Limits
	maxWeight float64
	fuelPerKm float64
	hold      []cargo.Container
}

// New creates an empty ship at the given port. The port is not modified.
func New(cfg Config, at *port.Port) (*Ship, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if at == nil {
		return nil, fmt.Errorf("%w: ship %s has no port", ErrInvalidConfig, cfg.ID)
	}
	return &Ship{
		id:        cfg.ID,
		fuel:      cfg.Fuel,
		port:      at,
		limits:    cfg.Limits,
		maxWeight: cfg.MaxWeight,
		fuelPerKm: cfg.FuelPerKm,
	}, nil
}

// ID returns the ship identifier.
func (s *Ship) ID() string { return s.id }

// Fuel returns the current fuel level.
func (s *Ship) Fuel() float64 { return s.fuel }

// Port returns the port the ship is at.
func (s *Ship) Port() *port.Port { return s.port }

// Limits returns the container limits.
func (s *Ship) Limits() Limits { return s.limits }

// MaxWeight returns the weight capacity.
func (s *Ship) MaxWeight() float64 { return s.maxWeight }

// FuelPerKm returns the fuel spent per unit of distance.
func (s *Ship) FuelPerKm() float64 { return s.fuelPerKm }

// Weight returns the summed weight of the hold.
func (s *Ship) Weight() float64 {
	var total float64
	for _, c := range s.hold {
		total += c.Weight
	}
	return total
}

// Consumption returns the summed consumption of the hold.
func (s *Ship) Consumption() float64 {
	var total float64
	for _, c := range s.hold {
		total += c.Consumption()
	}
	return total
}

// holdCounts tallies the hold. It is recomputed on every call so that an
// unload is reflected in the very next capacity check.
func (s *Ship) holdCounts() (heavy, refrigerated, liquid int) {
	for _, c := range s.hold {
		if c.Category.IsHeavy() {
			heavy++
		}
		switch c.Category {
		case cargo.Refrigerated:
			refrigerated++
		case cargo.Liquid:
			liquid++
		}
	}
	return heavy, refrigerated, liquid
}

// Load puts the container in the hold if every limit still holds afterwards.
// On failure the hold is unchanged and the error wraps ErrCapacityExceeded
// naming the limit that would break.
func (s *Ship) Load(c cargo.Container) error {
	if cargo.Index(s.hold, c.ID) >= 0 {
		return fmt.Errorf("ship %s: container %s: %w", s.id, c.ID, ErrAlreadyAboard)
	}
	if len(s.hold)+1 > s.limits.MaxAll {
		return fmt.Errorf("ship %s: %w: %d of %d containers aboard", s.id, ErrCapacityExceeded, len(s.hold), s.limits.MaxAll)
	}

	heavy, refrigerated, liquid := s.holdCounts()
	if c.Category.IsHeavy() && heavy+1 > s.limits.MaxHeavy {
		return fmt.Errorf("ship %s: %w: %d of %d heavy containers aboard", s.id, ErrCapacityExceeded, heavy, s.limits.MaxHeavy)
	}
	if c.Category == cargo.Refrigerated && refrigerated+1 > s.limits.MaxRefrigerated {
		return fmt.Errorf("ship %s: %w: %d of %d refrigerated containers aboard", s.id, ErrCapacityExceeded, refrigerated, s.limits.MaxRefrigerated)
	}
	if c.Category == cargo.Liquid && liquid+1 > s.limits.MaxLiquid {
		return fmt.Errorf("ship %s: %w: %d of %d liquid containers aboard", s.id, ErrCapacityExceeded, liquid, s.limits.MaxLiquid)
	}
	if w := s.Weight(); w+c.Weight > s.maxWeight {
		return fmt.Errorf("ship %s: %w: weight %g + %g over %g", s.id, ErrCapacityExceeded, w, c.Weight, s.maxWeight)
	}

	s.hold = append(s.hold, c)
	return nil
}

// Unload removes the container with the given ID from the hold and returns it.
func (s *Ship) Unload(id string) (cargo.Container, error) {
	i := cargo.Index(s.hold, id)
	if i < 0 {
		return cargo.Container{}, fmt.Errorf("ship %s: container %s: %w", s.id, id, ErrContainerNotFound)
	}
	c := s.hold[i]
	s.hold = slices.Delete(s.hold, i, i+1)
	return c, nil
}

// Has reports whether a container with the given ID is aboard.
func (s *Ship) Has(id string) bool {
	return cargo.Index(s.hold, id) >= 0
}

// FuelNeeded returns the fuel required to sail from the current port to dst.
func (s *Ship) FuelNeeded(dst *port.Port) float64 {
	return s.port.DistanceTo(dst) * s.fuelPerKm
}

// SailTo moves the ship to dst, spending distance times FuelPerKm. If the
// tank holds less than that, nothing changes and ErrInsufficientFuel is
// returned.
func (s *Ship) SailTo(dst *port.Port) error {
	if dst == nil {
		return fmt.Errorf("ship %s: %w: no destination", s.id, ErrInvalidConfig)
	}
	required := s.FuelNeeded(dst)
	if s.fuel < required {
		return fmt.Errorf("ship %s to port %s: %w: need %.2f, have %.2f", s.id, dst.ID(), ErrInsufficientFuel, required, s.fuel)
	}
	s.fuel -= required
	s.port = dst
	return nil
}

// Refuel adds amount to the tank.
func (s *Ship) Refuel(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("ship %s: refuel %g: %w", s.id, amount, ErrNegativeAmount)
	}
	s.fuel += amount
	return nil
}

// Containers returns a copy of the hold sorted by container ID.
func (s *Ship) Containers() []cargo.Container {
	out := slices.Clone(s.hold)
	cargo.SortByID(out)
	return out
}

// String implements fmt.Stringer.
func (s *Ship) String() string {
	return fmt.Sprintf("ship %s at %s (fuel %.2f, %d containers)", s.id, s.port.ID(), s.fuel, len(s.hold))
}
