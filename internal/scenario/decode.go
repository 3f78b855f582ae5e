package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/papapumpkin/harbor/internal/cargo"
	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/ship"
)

// Definition is a decoded entity definition.
type Definition interface {
	// Entity returns the entity kind ("port", "ship", "container").
	Entity() string
	// EntityID returns the identifier being defined.
	EntityID() string
}

// PortDef defines a port.
type PortDef struct {
	ID     string
	Coords port.Coordinates
}

// Entity implements Definition.
func (PortDef) Entity() string { return "port" }

// EntityID implements Definition.
func (d PortDef) EntityID() string { return d.ID }

// ShipDef defines a ship docked at PortID.
type ShipDef struct {
	PortID string
	Config ship.Config
}

// Entity implements Definition.
func (ShipDef) Entity() string { return "ship" }

// EntityID implements Definition.
func (d ShipDef) EntityID() string { return d.Config.ID }

// ContainerDef defines a container sitting in the pool of PortID. Items is
// set when the container was given as a packing list.
type ContainerDef struct {
	PortID    string
	Container cargo.Container
	Items     []cargo.Item
}

// Entity implements Definition.
func (ContainerDef) Entity() string { return "container" }

// EntityID implements Definition.
func (d ContainerDef) EntityID() string { return d.Container.ID }

// DecodeDefinition decodes a record carrying a "type" key.
func DecodeDefinition(r Record) (Definition, error) {
	typ, err := r.Str("type")
	if err != nil {
		return nil, err
	}
	var (
		def    Definition
		decErr error
	)
	switch strings.ToLower(typ) {
	case "port":
		def, decErr = decodePort(r)
	case "ship":
		def, decErr = decodeShip(r)
	case "container":
		def, decErr = decodeContainer(r)
	default:
		return nil, &RecordError{
			Category: CatUnknownKind,
			Index:    r.Index,
			Field:    "type",
			Record:   r.String(),
			Err:      fmt.Errorf("%w: %q", ErrUnknownType, typ),
		}
	}
	if decErr != nil {
		return nil, decErr
	}
	return def, nil
}

func decodePort(r Record) (PortDef, error) {
	id, err := r.ID("id")
	if err != nil {
		return PortDef{}, err
	}
	lat, err := r.Float("latitude")
	if err != nil {
		return PortDef{}, err
	}
	lon, err := r.Float("longitude")
	if err != nil {
		return PortDef{}, err
	}
	if lat < -90 || lat > 90 {
		return PortDef{}, invalidValue(r, "latitude", fmt.Errorf("%w: latitude %g out of range", ErrInvalidValue, lat))
	}
	if lon < -180 || lon > 180 {
		return PortDef{}, invalidValue(r, "longitude", fmt.Errorf("%w: longitude %g out of range", ErrInvalidValue, lon))
	}
	return PortDef{ID: id, Coords: port.Coordinates{Lat: lat, Lon: lon}}, nil
}

// decodeShip accepts either a fully explicit ship or a class-based one
// ("ship_type" plus optional overrides).
func decodeShip(r Record) (ShipDef, error) {
	id, err := r.ID("id")
	if err != nil {
		return ShipDef{}, err
	}
	portID, err := r.ID("port_id")
	if err != nil {
		return ShipDef{}, err
	}

	if r.Has("ship_type") {
		cfg, err := decodeShipClass(r, id)
		if err != nil {
			return ShipDef{}, err
		}
		return ShipDef{PortID: portID, Config: cfg}, nil
	}

	cfg := ship.Config{ID: id}
	if cfg.Fuel, err = r.Float("fuel"); err != nil {
		return ShipDef{}, err
	}
	if cfg.Limits.MaxAll, err = r.Count("max_containers"); err != nil {
		return ShipDef{}, err
	}
	if cfg.Limits.MaxHeavy, err = r.Count("max_heavy"); err != nil {
		return ShipDef{}, err
	}
	if cfg.Limits.MaxRefrigerated, err = r.Count("max_refrigerated"); err != nil {
		return ShipDef{}, err
	}
	if cfg.Limits.MaxLiquid, err = r.Count("max_liquid"); err != nil {
		return ShipDef{}, err
	}
	if cfg.MaxWeight, err = r.Float("max_weight"); err != nil {
		return ShipDef{}, err
	}
	if cfg.FuelPerKm, err = r.Float("fuel_consumption_per_km"); err != nil {
		return ShipDef{}, err
	}
	if cfg.Fuel < 0 {
		return ShipDef{}, invalidValue(r, "fuel", fmt.Errorf("%w: fuel must not be negative", ErrInvalidValue))
	}
	if cfg.MaxWeight < 0 {
		return ShipDef{}, invalidValue(r, "max_weight", fmt.Errorf("%w: max_weight must not be negative", ErrInvalidValue))
	}
	if cfg.FuelPerKm < 0 {
		return ShipDef{}, invalidValue(r, "fuel_consumption_per_km", fmt.Errorf("%w: fuel consumption must not be negative", ErrInvalidValue))
	}
	return ShipDef{PortID: portID, Config: cfg}, nil
}

func decodeShipClass(r Record, id string) (ship.Config, error) {
	name, err := r.Str("ship_type")
	if err != nil {
		return ship.Config{}, err
	}
	class, err := ship.ParseClass(name)
	if err != nil {
		return ship.Config{}, invalidValue(r, "ship_type", err)
	}
	spec := ship.Spec{ID: id, Class: class}
	if spec.MaxWeight, err = r.OptionalFloat("max_weight"); err != nil {
		return ship.Config{}, err
	}
	if spec.FuelCapacity, err = r.OptionalFloat("fuel_capacity"); err != nil {
		return ship.Config{}, err
	}
	if spec.FuelPerKm, err = r.OptionalFloat("fuel_consumption_per_km"); err != nil {
		return ship.Config{}, err
	}
	cfg, err := spec.Config()
	if err != nil {
		return ship.Config{}, invalidValue(r, "ship_type", err)
	}
	return cfg, nil
}

func decodeContainer(r Record) (ContainerDef, error) {
	id, err := r.ID("id")
	if err != nil {
		return ContainerDef{}, err
	}
	portID, err := r.ID("port_id")
	if err != nil {
		return ContainerDef{}, err
	}
	special, err := r.OptionalStr("special")
	if err != nil {
		return ContainerDef{}, err
	}
	if r.Has("items") {
		return decodePackedContainer(r, id, portID, special)
	}

	weight, err := r.Float("weight")
	if err != nil {
		return ContainerDef{}, err
	}
	c, err := cargo.New(id, weight, special)
	if err != nil {
		field := "special"
		if weight <= 0 {
			field = "weight"
		}
		return ContainerDef{}, invalidValue(r, field, err)
	}
	return ContainerDef{PortID: portID, Container: c}, nil
}

// decodePackedContainer handles a container given as a list of items. Its
// weight is the items' total, so an explicit weight is rejected.
func decodePackedContainer(r Record, id, portID, special string) (ContainerDef, error) {
	if r.Has("weight") {
		return ContainerDef{}, invalidValue(r, "weight",
			fmt.Errorf("%w: weight is computed from items; give one or the other", ErrInvalidValue))
	}
	raw, ok := r.Fields["items"].([]any)
	if !ok || len(raw) == 0 {
		return ContainerDef{}, invalidValue(r, "items", fmt.Errorf("%w: want a non-empty list of items", ErrInvalidValue))
	}

	items := make([]cargo.Item, 0, len(raw))
	for i, v := range raw {
		field := fmt.Sprintf("items[%d]", i)
		fields, ok := v.(map[string]any)
		if !ok {
			return ContainerDef{}, invalidValue(r, field, fmt.Errorf("%w: want an object, got %T", ErrInvalidValue, v))
		}
		it, err := decodeItem(Record{Index: r.Index, Fields: fields}, id)
		if err != nil {
			var re *RecordError
			if errors.As(err, &re) {
				re.Field = field + "." + re.Field
				re.Record = r.String()
			}
			return ContainerDef{}, err
		}
		items = append(items, it)
	}

	c, err := cargo.Pack(id, special, items)
	if err != nil {
		return ContainerDef{}, invalidValue(r, "items", err)
	}
	return ContainerDef{PortID: portID, Container: c, Items: items}, nil
}

func decodeItem(r Record, containerID string) (cargo.Item, error) {
	kind, err := r.Str("kind")
	if err != nil {
		return cargo.Item{}, err
	}
	id, err := r.ID("id")
	if err != nil {
		return cargo.Item{}, err
	}
	weight, err := r.Float("weight")
	if err != nil {
		return cargo.Item{}, err
	}
	count, err := r.Count("count")
	if err != nil {
		return cargo.Item{}, err
	}
	owner, set, err := r.OptionalID("container_id")
	if err != nil {
		return cargo.Item{}, err
	}
	if !set {
		owner = containerID
	}
	it, err := cargo.NewItem(kind, id, weight, count, owner)
	if err != nil {
		field := "count"
		switch {
		case errors.Is(err, cargo.ErrUnknownItemKind):
			field = "kind"
		case weight <= 0:
			field = "weight"
		}
		return cargo.Item{}, invalidValue(r, field, err)
	}
	return it, nil
}
