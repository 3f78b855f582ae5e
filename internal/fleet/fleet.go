// Package fleet holds the ports and ships of a single simulation run.
package fleet

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/papapumpkin/harbor/internal/cargo"
	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/ship"
)

var (
	// ErrDuplicateID indicates an entity ID that is already registered.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownReference indicates a lookup of an ID that is not registered.
	ErrUnknownReference = errors.New("unknown reference")
)

// Registry indexes ports and ships by ID. A Registry lives for one run and is
// not safe for concurrent use.
type Registry struct {
	ports map[string]*port.Port
	ships map[string]*ship.Ship
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		ports: make(map[string]*port.Port),
		ships: make(map[string]*ship.Ship),
	}
}

// AddPort registers a port.
func (r *Registry) AddPort(p *port.Port) error {
	if _, ok := r.ports[p.ID()]; ok {
		return fmt.Errorf("port %s: %w", p.ID(), ErrDuplicateID)
	}
	r.ports[p.ID()] = p
	return nil
}

// AddShip registers a ship and docks it at its current port.
func (r *Registry) AddShip(s *ship.Ship) error {
	if _, ok := r.ships[s.ID()]; ok {
		return fmt.Errorf("ship %s: %w", s.ID(), ErrDuplicateID)
	}
	r.ships[s.ID()] = s
	s.Port().Dock(s.ID())
	return nil
}

// Port looks up a port by ID.
func (r *Registry) Port(id string) (*port.Port, error) {
	p, ok := r.ports[id]
	if !ok {
		return nil, fmt.Errorf("port %s: %w", id, ErrUnknownReference)
	}
	return p, nil
}

// Ship looks up a ship by ID.
func (r *Registry) Ship(id string) (*ship.Ship, error) {
	s, ok := r.ships[id]
	if !ok {
		return nil, fmt.Errorf("ship %s: %w", id, ErrUnknownReference)
	}
	return s, nil
}

// Ports returns all ports sorted by ID.
func (r *Registry) Ports() []*port.Port {
	ids := slices.SortedFunc(maps.Keys(r.ports), cargo.CompareID)
	out := make([]*port.Port, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.ports[id])
	}
	return out
}

// Ships returns all ships sorted by ID.
func (r *Registry) Ships() []*ship.Ship {
	ids := slices.SortedFunc(maps.Keys(r.ships), cargo.CompareID)
	out := make([]*ship.Ship, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.ships[id])
	}
	return out
}

// FindContainer reports where a container with the given ID currently is:
// the port holding it in its pool, or the ship holding it in its hold.
func (r *Registry) FindContainer(id string) (*port.Port, *ship.Ship, bool) {
	for _, p := range r.Ports() {
		if _, ok := p.Container(id); ok {
			return p, nil, true
		}
	}
	for _, s := range r.Ships() {
		if s.Has(id) {
			return nil, s, true
		}
	}
	return nil, nil, false
}

// Move sails s to dst and keeps the docked lists consistent: on success the
// ship is undocked from its origin (recording the departure) and docked at
// the destination. On failure nothing changes.
func (r *Registry) Move(s *ship.Ship, dst *port.Port) error {
	origin := s.Port()
	if err := s.SailTo(dst); err != nil {
		return err
	}
	if origin == dst {
		return nil
	}
	// Ships created outside AddShip may not be docked at their origin yet.
	if origin.IsDocked(s.ID()) {
		if err := origin.Undock(s.ID()); err != nil {
			return err
		}
	}
	dst.Dock(s.ID())
	return nil
}
