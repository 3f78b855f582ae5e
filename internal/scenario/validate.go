package scenario

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/papapumpkin/harbor/internal/fleet"
)

// Validate decodes every record without applying anything and returns every
// problem found, in input order. Besides decoding errors it reports
// references to ports, ships or containers that no definition in the file
// provides; since all definitions run before any command, a definition that
// appears after the command referencing it still counts.
func Validate(records []Record) []*RecordError {
	var errs []*RecordError

	add := func(err error) {
		var re *RecordError
		if errors.As(err, &re) {
			errs = append(errs, re)
		}
	}

	defs, cmds, unknown := Split(records)
	for _, r := range unknown {
		errs = append(errs, &RecordError{Category: CatUnknownKind, Index: r.Index, Record: r.String(), Err: ErrUnclassified})
	}

	ports := make(map[string]bool)
	ships := make(map[string]bool)
	containers := make(map[string]bool)
	var decoded []struct {
		rec Record
		def Definition
	}
	for _, r := range defs {
		def, err := DecodeDefinition(r)
		if err != nil {
			add(err)
			continue
		}
		decoded = append(decoded, struct {
			rec Record
			def Definition
		}{r, def})
		switch d := def.(type) {
		case PortDef:
			ports[d.ID] = true
		case ShipDef:
			ships[d.Config.ID] = true
		case ContainerDef:
			containers[d.Container.ID] = true
		}
	}

	// Definitions apply in file order, so ships and containers need a port
	// defined before them, not just anywhere in the file.
	seenPorts := make(map[string]bool)
	for _, d := range decoded {
		switch def := d.def.(type) {
		case PortDef:
			seenPorts[def.ID] = true
		case ShipDef:
			if !seenPorts[def.PortID] {
				errs = append(errs, unknownRef(d.rec, "port_id", "port", def.PortID))
			}
		case ContainerDef:
			if !seenPorts[def.PortID] {
				errs = append(errs, unknownRef(d.rec, "port_id", "port", def.PortID))
			}
		}
	}

	for _, r := range cmds {
		cmd, err := DecodeCommand(r)
		if err != nil {
			add(err)
			continue
		}
		if !ships[cmd.ShipID] {
			errs = append(errs, unknownRef(r, "ship_id", "ship", cmd.ShipID))
		}
		if cmd.PortID != "" && !ports[cmd.PortID] {
			errs = append(errs, unknownRef(r, "port_id", "port", cmd.PortID))
		}
		if cmd.DestinationID != "" && !ports[cmd.DestinationID] {
			errs = append(errs, unknownRef(r, "destination_port_id", "port", cmd.DestinationID))
		}
		if cmd.ContainerID != "" && !containers[cmd.ContainerID] {
			errs = append(errs, unknownRef(r, "container_id", "container", cmd.ContainerID))
		}
	}

	// Stable, so errors on the same record keep their discovery order.
	slices.SortStableFunc(errs, func(a, b *RecordError) int { return cmp.Compare(a.Index, b.Index) })
	return errs
}

func unknownRef(r Record, field, entity, id string) *RecordError {
	return &RecordError{
		Category: CatUnknownReference,
		Index:    r.Index,
		Field:    field,
		Record:   r.String(),
		Err:      fmt.Errorf("%s %s: %w", entity, id, fleet.ErrUnknownReference),
	}
}
