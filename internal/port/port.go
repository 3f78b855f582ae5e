// Package port models a harbour: a pool of unassigned containers, the ships
// currently docked there, and the order in which ships have left.
package port

import (
	"fmt"
	"slices"

	"github.com/papapumpkin/harbor/internal/cargo"
)

// Port is a single harbour. Ships are tracked by ID so that the port never
// owns a ship; the ship holds the back reference instead.
type Port struct {
	id         string
	coords     Coordinates
	metric     Metric
	containers []cargo.Container
	ships      []string
	history    []string
}

// Option configures a Port.
type Option func(*Port)

// WithMetric sets the distance metric used by DistanceTo.
func WithMetric(m Metric) Option {
	return func(p *Port) { p.metric = m }
}

// New creates an empty port at the given coordinates.
func New(id string, coords Coordinates, opts ...Option) *Port {
	p := &Port{id: id, coords: coords}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the port identifier.
func (p *Port) ID() string { return p.id }

// Coordinates returns the port position.
func (p *Port) Coordinates() Coordinates { return p.coords }

// Metric returns the distance metric in use.
func (p *Port) Metric() Metric { return p.metric }

// DistanceTo returns the distance to other using this port's metric.
func (p *Port) DistanceTo(other *Port) float64 {
	return p.metric.Distance(p.coords, other.coords)
}

// Dock registers the ship as present. Docking an already docked ship is a
// no-op; the return value reports whether the ship was newly added.
func (p *Port) Dock(shipID string) bool {
	if slices.Contains(p.ships, shipID) {
		return false
	}
	p.ships = append(p.ships, shipID)
	return true
}

// Undock removes the ship and records the departure in the history.
func (p *Port) Undock(shipID string) error {
	i := slices.Index(p.ships, shipID)
	if i < 0 {
		return fmt.Errorf("port %s: ship %s: %w", p.id, shipID, ErrNotDocked)
	}
	p.ships = slices.Delete(p.ships, i, i+1)
	p.history = append(p.history, shipID)
	return nil
}

// IsDocked reports whether the ship is currently docked here.
func (p *Port) IsDocked(shipID string) bool {
	return slices.Contains(p.ships, shipID)
}

// Receive adds a container to the unassigned pool. A container that is
// structurally equal to one already pooled is rejected, even when the IDs
// differ.
func (p *Port) Receive(c cargo.Container) error {
	for _, held := range p.containers {
		if held.Equal(c) {
			return fmt.Errorf("port %s: container %s equals pooled container %s: %w",
				p.id, c.ID, held.ID, ErrDuplicateContainer)
		}
	}
	p.containers = append(p.containers, c)
	return nil
}

// Release removes the container with the given ID from the pool and returns it.
func (p *Port) Release(id string) (cargo.Container, error) {
	i := cargo.Index(p.containers, id)
	if i < 0 {
		return cargo.Container{}, fmt.Errorf("port %s: container %s: %w", p.id, id, ErrContainerNotFound)
	}
	c := p.containers[i]
	p.containers = slices.Delete(p.containers, i, i+1)
	return c, nil
}

// Container looks up a pooled container without removing it.
func (p *Port) Container(id string) (cargo.Container, bool) {
	i := cargo.Index(p.containers, id)
	if i < 0 {
		return cargo.Container{}, false
	}
	return p.containers[i], true
}

// Containers returns a copy of the pool sorted by container ID.
func (p *Port) Containers() []cargo.Container {
	out := slices.Clone(p.containers)
	cargo.SortByID(out)
	return out
}

// Ships returns the IDs of docked ships in arrival order.
func (p *Port) Ships() []string {
	return slices.Clone(p.ships)
}

// History returns the IDs of departed ships in departure order.
func (p *Port) History() []string {
	return slices.Clone(p.history)
}

// String implements fmt.Stringer.
func (p *Port) String() string {
	return fmt.Sprintf("port %s at (%g, %g)", p.id, p.coords.Lat, p.coords.Lon)
}
