// Package sim drives a scenario through a fleet registry. Every definition
// is applied first, in file order, then every command, in file order. Each
// record produces exactly one Outcome; a rejected record never stops the run.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/papapumpkin/harbor/internal/fleet"
	"github.com/papapumpkin/harbor/internal/metrics"
	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/scenario"
	"github.com/papapumpkin/harbor/internal/ship"
	"github.com/papapumpkin/harbor/internal/telemetry"
)

// Outcome is the result of processing one record.
type Outcome struct {
	Index   int           // 1-based record position
	Kind    scenario.Kind // definition, command or unknown
	Action  string        // entity type for definitions, verb for commands
	Subject string        // what the record was about, e.g. "container 7"
	ShipID  string        // ship involved, if any
	PortID  string        // port involved after the record, if any
	Fuel    float64       // ship fuel after the record, when ShipID is set
	Err     error         // nil when applied
}

// OK reports whether the record was applied.
func (o Outcome) OK() bool { return o.Err == nil }

// Reporter receives outcomes as they happen.
type Reporter interface {
	Report(Outcome)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Outcome)

// Report implements Reporter.
func (f ReporterFunc) Report(o Outcome) { f(o) }

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Applied  int
	Rejected int
	Registry *fleet.Registry
}

// Simulator runs scenarios. The zero value is not usable; call New.
type Simulator struct {
	metric   port.Metric
	reporter Reporter
	emitter  *telemetry.Emitter
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithMetric selects how port distances are measured.
func WithMetric(m port.Metric) Option {
	return func(s *Simulator) { s.metric = m }
}

// WithReporter sets the outcome receiver.
func WithReporter(r Reporter) Option {
	return func(s *Simulator) { s.reporter = r }
}

// WithEmitter writes run events to a telemetry stream.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(s *Simulator) { s.emitter = e }
}

// WithMetrics counts outcomes in a metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Simulator) { s.metrics = r }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// New creates a Simulator. Without options it measures geodesic distances,
// discards outcomes and logs to the slog default.
func New(opts ...Option) *Simulator {
	s := &Simulator{
		metric:   port.Geodesic,
		reporter: ReporterFunc(func(Outcome) {}),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run applies the records to a fresh registry. It returns an error only when
// ctx is cancelled; the partial summary is returned alongside.
func (s *Simulator) Run(ctx context.Context, records []scenario.Record) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString(), Registry: fleet.New()}
	log := s.logger.With("run", sum.RunID)

	s.metrics.RecordRun()
	s.emit(telemetry.Event{Kind: telemetry.KindRunStart, RunID: sum.RunID, Data: map[string]any{
		"records":  len(records),
		"distance": s.metric.String(),
	}})
	log.Info("run started", "records", len(records), "distance", s.metric.String())

	defs, cmds, unknown := scenario.Split(records)
	ordered := make([]scenario.Record, 0, len(records))
	ordered = append(ordered, defs...)
	ordered = append(ordered, cmds...)
	ordered = append(ordered, unknown...)

	for _, r := range ordered {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("sim: run %s: %w", sum.RunID, err)
		}
		var o Outcome
		switch r.Kind() {
		case scenario.KindDefinition:
			o = s.define(sum.Registry, r)
		case scenario.KindCommand:
			o = s.command(sum.Registry, r)
		default:
			o = Outcome{Index: r.Index, Kind: scenario.KindUnknown, Subject: "record", Err: scenario.ErrUnclassified}
		}
		s.finish(log, sum, o)
	}

	for _, sh := range sum.Registry.Ships() {
		s.metrics.RecordShip(sh.ID(), sh.Fuel(), len(sh.Containers()))
	}
	s.emit(telemetry.Event{Kind: telemetry.KindRunDone, RunID: sum.RunID, Data: map[string]any{
		"applied":  sum.Applied,
		"rejected": sum.Rejected,
	}})
	log.Info("run finished", "applied", sum.Applied, "rejected", sum.Rejected)
	return sum, nil
}

func (s *Simulator) finish(log *slog.Logger, sum *Summary, o Outcome) {
	data := map[string]any{"action": o.Action, "subject": o.Subject}
	kind := telemetry.KindRecordApplied
	if o.OK() {
		sum.Applied++
	} else {
		sum.Rejected++
		kind = telemetry.KindRecordRejected
		data["error"] = o.Err.Error()
		log.Debug("record rejected", "record", o.Index, "kind", o.Kind, "action", o.Action, "error", o.Err)
	}
	if o.ShipID != "" {
		data["ship"] = o.ShipID
		data["fuel"] = o.Fuel
	}
	s.metrics.RecordOutcome(string(o.Kind), o.Action, o.OK())
	s.emit(telemetry.Event{Kind: kind, RunID: sum.RunID, Record: o.Index, Data: data})
	s.reporter.Report(o)
}

func (s *Simulator) emit(evt telemetry.Event) {
	if err := s.emitter.Emit(evt); err != nil {
		s.logger.Warn("telemetry write failed", "error", err)
	}
}

// define applies one definition record.
func (s *Simulator) define(reg *fleet.Registry, r scenario.Record) Outcome {
	o := Outcome{Index: r.Index, Kind: scenario.KindDefinition}
	if typ, err := r.Str("type"); err == nil {
		o.Action = typ
	}

	def, err := scenario.DecodeDefinition(r)
	if err != nil {
		o.Subject = "record"
		o.Err = err
		return o
	}
	o.Action = def.Entity()
	o.Subject = def.Entity() + " " + def.EntityID()

	switch d := def.(type) {
	case scenario.PortDef:
		o.PortID = d.ID
		o.Err = reg.AddPort(port.New(d.ID, d.Coords, port.WithMetric(s.metric)))
	case scenario.ShipDef:
		o.ShipID, o.PortID, o.Fuel = d.Config.ID, d.PortID, d.Config.Fuel
		at, err := reg.Port(d.PortID)
		if err != nil {
			o.Err = err
			return o
		}
		sh, err := ship.New(d.Config, at)
		if err != nil {
			o.Err = err
			return o
		}
		o.Err = reg.AddShip(sh)
	case scenario.ContainerDef:
		o.PortID = d.PortID
		if len(d.Items) > 0 {
			s.logger.Debug("container packed from items",
				"container", d.Container.ID, "items", len(d.Items), "weight", d.Container.Weight)
		}
		at, err := reg.Port(d.PortID)
		if err != nil {
			o.Err = err
			return o
		}
		if _, _, found := reg.FindContainer(d.Container.ID); found {
			o.Err = fmt.Errorf("container %s: %w", d.Container.ID, ErrDuplicateContainerID)
			return o
		}
		o.Err = at.Receive(d.Container)
	}
	return o
}

// command applies one command record.
func (s *Simulator) command(reg *fleet.Registry, r scenario.Record) Outcome {
	o := Outcome{Index: r.Index, Kind: scenario.KindCommand, Subject: "record"}
	if verb, err := r.Str("action"); err == nil {
		o.Action = verb
	}

	cmd, err := scenario.DecodeCommand(r)
	if err != nil {
		o.Err = err
		return o
	}
	o.Action = string(cmd.Action)
	o.Subject = cmd.Target()
	o.ShipID = cmd.ShipID

	sh, err := reg.Ship(cmd.ShipID)
	if err != nil {
		o.Err = err
		return o
	}
	switch cmd.Action {
	case scenario.ActionLoad:
		o.Err = load(reg, sh, cmd)
	case scenario.ActionUnload:
		o.Err = unload(reg, sh, cmd)
	case scenario.ActionSail:
		o.Err = sail(reg, sh, cmd)
	case scenario.ActionRefuel:
		o.Err = sh.Refuel(cmd.Amount)
	}
	o.Fuel = sh.Fuel()
	o.PortID = sh.Port().ID()
	return o
}

// workingPort returns the port a load or unload happens at: the named port,
// which must be where the ship is, or else the ship's current port.
func workingPort(reg *fleet.Registry, sh *ship.Ship, portID string) (*port.Port, error) {
	if portID == "" {
		return sh.Port(), nil
	}
	p, err := reg.Port(portID)
	if err != nil {
		return nil, err
	}
	if p != sh.Port() {
		return nil, fmt.Errorf("ship %s is at %s, not %s: %w", sh.ID(), sh.Port().ID(), p.ID(), ErrNotAtPort)
	}
	return p, nil
}

func load(reg *fleet.Registry, sh *ship.Ship, cmd scenario.Command) error {
	p, err := workingPort(reg, sh, cmd.PortID)
	if err != nil {
		return err
	}
	c, ok := p.Container(cmd.ContainerID)
	if !ok {
		return fmt.Errorf("port %s: container %s: %w", p.ID(), cmd.ContainerID, port.ErrContainerNotFound)
	}
	if err := sh.Load(c); err != nil {
		return err
	}
	if _, err := p.Release(c.ID); err != nil {
		// Unreachable while the pool is only touched here; undo to keep
		// the container in exactly one place.
		_, _ = sh.Unload(c.ID)
		return err
	}
	return nil
}

func unload(reg *fleet.Registry, sh *ship.Ship, cmd scenario.Command) error {
	p, err := workingPort(reg, sh, cmd.PortID)
	if err != nil {
		return err
	}
	c, err := sh.Unload(cmd.ContainerID)
	if err != nil {
		return err
	}
	if err := p.Receive(c); err != nil {
		if loadErr := sh.Load(c); loadErr != nil {
			return errors.Join(err, loadErr)
		}
		return err
	}
	return nil
}

func sail(reg *fleet.Registry, sh *ship.Ship, cmd scenario.Command) error {
	if cmd.PortID != "" && cmd.PortID != sh.Port().ID() {
		return fmt.Errorf("ship %s is at %s, not %s: %w", sh.ID(), sh.Port().ID(), cmd.PortID, ErrNotAtPort)
	}
	dst, err := reg.Port(cmd.DestinationID)
	if err != nil {
		return err
	}
	return reg.Move(sh, dst)
}
