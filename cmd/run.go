package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/harbor/internal/config"
	"github.com/papapumpkin/harbor/internal/metrics"
	"github.com/papapumpkin/harbor/internal/scenario"
	"github.com/papapumpkin/harbor/internal/sim"
	"github.com/papapumpkin/harbor/internal/store"
	"github.com/papapumpkin/harbor/internal/telemetry"
	"github.com/papapumpkin/harbor/internal/ui"
	"github.com/papapumpkin/harbor/internal/watch"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a scenario and print one line per record",
	Long: `Runs every definition of the scenario, then every command, and prints the
outcome of each record followed by the final state of every port and ship.
Rejected records do not stop the run; only an unreadable or malformed file
is an error.

With --watch the scenario is run again each time the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("planar", false, "measure distances on the flat coordinate plane")
	runCmd.Flags().String("events", "", "append JSONL telemetry events to this file")
	runCmd.Flags().String("db", "", "save the final state to this SQLite database")
	runCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
	runCmd.Flags().Bool("watch", false, "re-run the scenario whenever the file changes")

	bindFlag("events_file", runCmd.Flags().Lookup("events"))
	bindFlag("db_path", runCmd.Flags().Lookup("db"))
	bindFlag("metrics_file", runCmd.Flags().Lookup("metrics-file"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if planar, _ := cmd.Flags().GetBool("planar"); planar {
		viper.Set("distance", "planar")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printer := ui.New(cmd.ErrOrStderr())
	path := args[0]

	ctx, cancel := signalContext()
	defer cancel()

	if err := runScenario(ctx, cfg, path, printer); err != nil {
		return err
	}

	if w, _ := cmd.Flags().GetBool("watch"); !w {
		return nil
	}
	return watchScenario(ctx, cfg, path, printer)
}

// runScenario loads and runs the scenario once, then writes whatever outputs
// the configuration enables.
func runScenario(ctx context.Context, cfg config.Config, path string, printer *ui.Printer) error {
	records, err := scenario.Load(path)
	if err != nil {
		return err
	}
	metric, err := cfg.Metric()
	if err != nil {
		return err
	}

	emitter, err := openEmitter(cfg.EventsFile)
	if err != nil {
		return err
	}
	defer emitter.Close()

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.New()
	}

	printer.RunStart(path, len(records), metric)
	simulator := sim.New(
		sim.WithMetric(metric),
		sim.WithReporter(printer),
		sim.WithEmitter(emitter),
		sim.WithMetrics(rec),
		sim.WithLogger(slog.Default()),
	)
	sum, err := simulator.Run(ctx, records)
	if err != nil {
		return err
	}
	printer.Summary(sum)

	if cfg.DBPath != "" {
		if err := saveRun(ctx, cfg.DBPath, path, metric.String(), sum); err != nil {
			return err
		}
	}
	return rec.WriteTextfile(cfg.MetricsFile)
}

func openEmitter(path string) (*telemetry.Emitter, error) {
	if path == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(path)
}

func saveRun(ctx context.Context, dbPath, scenarioPath, distance string, sum *sim.Summary) error {
	st, err := store.NewSQLiteStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	run := store.Run{
		ID:       sum.RunID,
		Scenario: scenarioPath,
		Distance: distance,
		Applied:  sum.Applied,
		Rejected: sum.Rejected,
	}
	return st.SaveRun(ctx, run, sum.Registry)
}

// watchScenario re-runs the scenario on every settled change until ctx ends.
// A run that fails to load the file is reported and the watch continues.
func watchScenario(ctx context.Context, cfg config.Config, path string, printer *ui.Printer) error {
	w, err := watch.New([]string{path})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	printer.Info(fmt.Sprintf("watching %s (ctrl-c to stop)", path))
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if change.Removed {
				printer.Info(fmt.Sprintf("%s removed; waiting for it to come back", path))
				continue
			}
			if err := runScenario(ctx, cfg, path, printer); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				printer.Error(err.Error())
			}
		}
	}
}

// runQuiet runs a scenario without printing outcomes, for commands that only
// need the final state.
func runQuiet(ctx context.Context, cfg config.Config, path string, log io.Writer) (*sim.Summary, error) {
	records, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	metric, err := cfg.Metric()
	if err != nil {
		return nil, err
	}
	sum, err := sim.New(sim.WithMetric(metric), sim.WithLogger(slog.Default())).Run(ctx, records)
	if err != nil {
		return nil, err
	}
	if sum.Rejected > 0 {
		fmt.Fprintf(log, "%d of %d record(s) rejected; run `harbor run %s` for details\n", sum.Rejected, sum.Applied+sum.Rejected, path)
	}
	return sum, nil
}
