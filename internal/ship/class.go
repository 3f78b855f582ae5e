package ship

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/harbor/internal/port"
)

// Class names a ship template.
type Class string

// Known ship classes.
const (
	Lightweight Class = "lightweight"
	Medium      Class = "medium"
	HeavyClass  Class = "heavy"
)

// template is the base configuration of a class before overrides.
type template struct {
	limits    Limits
	maxWeight float64
	fuel      float64
	fuelPerKm float64
}

var templates = map[Class]template{
	Lightweight: {
		limits:    Limits{MaxAll: 10, MaxHeavy: 2, MaxRefrigerated: 1, MaxLiquid: 1},
		maxWeight: 1000,
		fuel:      500,
		fuelPerKm: 0.5,
	},
	Medium: {
		limits:    Limits{MaxAll: 20, MaxHeavy: 6, MaxRefrigerated: 2, MaxLiquid: 2},
		maxWeight: 2000,
		fuel:      1000,
		fuelPerKm: 1,
	},
	HeavyClass: {
		limits:    Limits{MaxAll: 40, MaxHeavy: 20, MaxRefrigerated: 6, MaxLiquid: 6},
		maxWeight: 3000,
		fuel:      1500,
		fuelPerKm: 2,
	},
}

// ParseClass normalises a class name.
func ParseClass(s string) (Class, error) {
	c := Class(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := templates[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownClass, s)
	}
	return c, nil
}

// Spec describes a ship by class with optional overrides. Nil fields keep
// the class default.
type Spec struct {
	ID           string
	Class        Class
	MaxWeight    *float64
	FuelCapacity *float64 // starting fuel; the tank is filled at build time
	FuelPerKm    *float64
	Limits       *Limits
}

// Config resolves the spec against its class template.
func (s Spec) Config() (Config, error) {
	tpl, ok := templates[s.Class]
	if !ok {
		return Config{}, fmt.Errorf("ship %s: %w: %q", s.ID, ErrUnknownClass, s.Class)
	}
	cfg := Config{
		ID:        s.ID,
		Fuel:      tpl.fuel,
		Limits:    tpl.limits,
		MaxWeight: tpl.maxWeight,
		FuelPerKm: tpl.fuelPerKm,
	}
	if s.MaxWeight != nil {
		cfg.MaxWeight = *s.MaxWeight
	}
	if s.FuelCapacity != nil {
		cfg.Fuel = *s.FuelCapacity
	}
	if s.FuelPerKm != nil {
		cfg.FuelPerKm = *s.FuelPerKm
	}
	if s.Limits != nil {
		cfg.Limits = *s.Limits
	}
	return cfg, cfg.validate()
}

// Build resolves the spec and creates the ship at the given port.
func (s Spec) Build(at *port.Port) (*Ship, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	return New(cfg, at)
}
