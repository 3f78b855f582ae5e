// Package metrics counts processed scenario records with Prometheus
// collectors. Each Recorder owns its own registry, so repeated runs in one
// process (watch mode, tests) never collide on the default registerer.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
)

// Recorder holds the collectors of one process. A nil *Recorder is a valid
// no-op recorder.
type Recorder struct {
	registry *prometheus.Registry
	records  *prometheus.CounterVec
	fuel     *prometheus.GaugeVec
	hold     *prometheus.GaugeVec
	runs     prometheus.Counter
}

// New creates a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harbor_records_total",
				Help: "Total number of scenario records processed, by kind, action and result.",
			},
			[]string{"kind", "action", "result"},
		),
		fuel: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harbor_ship_fuel",
				Help: "Fuel left in each ship at the end of the last run.",
			},
			[]string{"ship"},
		),
		hold: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "harbor_ship_containers",
				Help: "Containers aboard each ship at the end of the last run.",
			},
			[]string{"ship"},
		),
		runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "harbor_runs_total",
			Help: "Total number of scenario runs.",
		}),
	}
}

// RecordRun counts a started run.
func (r *Recorder) RecordRun() {
	if r == nil {
		return
	}
	r.runs.Inc()
}

// RecordOutcome counts one processed record.
func (r *Recorder) RecordOutcome(kind, action string, applied bool) {
	if r == nil {
		return
	}
	result := ResultRejected
	if applied {
		result = ResultApplied
	}
	r.records.WithLabelValues(kind, action, result).Inc()
}

// RecordShip sets the end-of-run gauges for a ship.
func (r *Recorder) RecordShip(id string, fuel float64, containers int) {
	if r == nil {
		return
	}
	r.fuel.WithLabelValues(id).Set(fuel)
	r.hold.WithLabelValues(id).Set(float64(containers))
}

// WriteTextfile writes the current values in the text exposition format,
// for pickup by a node-exporter textfile collector. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
