package port

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/papapumpkin/harbor/internal/cargo"
)

// Snapshot is the self-describing record of a port's state. It carries every
// entity attribute needed to rebuild the port: identity, position, pooled
// containers, docked ships and departure history.
type Snapshot struct {
	ID         string            `json:"port_id" toml:"port_id"`
	Latitude   float64           `json:"latitude" toml:"latitude"`
	Longitude  float64           `json:"longitude" toml:"longitude"`
	Containers []cargo.Container `json:"containers" toml:"containers"`
	Ships      []string          `json:"ships" toml:"ships"`
	History    []string          `json:"history" toml:"history"`
}

// Snapshot captures the current state of the port.
func (p *Port) Snapshot() Snapshot {
	return Snapshot{
		ID:         p.id,
		Latitude:   p.coords.Lat,
		Longitude:  p.coords.Lon,
		Containers: p.Containers(),
		Ships:      p.Ships(),
		History:    p.History(),
	}
}

// FromSnapshot rebuilds a port. Every container is rebuilt with cargo.New and
// must come out with the category the snapshot claims, so a file cannot smuggle
// in a light Liquid container or a Basic one above the heavy threshold.
// Containers then go through Receive, so structurally equal containers are
// rejected too.
func FromSnapshot(s Snapshot, opts ...Option) (*Port, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("%w: missing port_id", ErrInvalidSnapshot)
	}
	p := New(s.ID, Coordinates{Lat: s.Latitude, Lon: s.Longitude}, opts...)
	for _, c := range s.Containers {
		rebuilt, err := restoreContainer(c)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		if _, ok := p.Container(rebuilt.ID); ok {
			return nil, fmt.Errorf("%w: container %s listed twice", ErrInvalidSnapshot, rebuilt.ID)
		}
		if err := p.Receive(rebuilt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
	}
	for _, id := range s.Ships {
		p.Dock(id)
	}
	p.history = append(p.history, s.History...)
	return p, nil
}

// restoreContainer runs a stored container back through cargo.New.
func restoreContainer(c cargo.Container) (cargo.Container, error) {
	if c.ID == "" {
		return cargo.Container{}, errors.New("container with empty id")
	}
	var code string
	switch c.Category {
	case cargo.Refrigerated:
		code = "R"
	case cargo.Liquid:
		code = "L"
	}
	rebuilt, err := cargo.New(c.ID, c.Weight, code)
	if err != nil {
		return cargo.Container{}, err
	}
	if rebuilt.Category != c.Category {
		return cargo.Container{}, fmt.Errorf("container %s: %w: %s does not fit weight %g (expected %s)",
			c.ID, cargo.ErrInvalidCategory, c.Category, c.Weight, rebuilt.Category)
	}
	return rebuilt, nil
}

// isTOML reports whether path names a TOML file. Everything else is JSON.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Save writes the port snapshot to path atomically (write temp + rename).
// The format follows the extension: .toml for TOML, anything else for
// indented JSON.
func (p *Port) Save(path string) error {
	snap := p.Snapshot()

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("port %s: marshaling snapshot: %w", p.id, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("port %s: writing temp snapshot: %w", p.id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("port %s: renaming snapshot: %w", p.id, err)
	}
	return nil
}

// ReadSnapshot reads a snapshot file without building a port from it.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading port snapshot: %w", err)
	}

	var snap Snapshot
	if isTOML(path) {
		err = toml.Unmarshal(data, &snap)
	} else {
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("parsing port snapshot %s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// Load reads a snapshot file written by Save and rebuilds the port.
func Load(path string, opts ...Option) (*Port, error) {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return FromSnapshot(snap, opts...)
}
