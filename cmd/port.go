package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/harbor/internal/port"
	"github.com/papapumpkin/harbor/internal/store"
	"github.com/papapumpkin/harbor/internal/ui"
)

var portCmd = &cobra.Command{
	Use:   "port",
	Short: "Inspect and export port snapshots",
}

var portShowCmd = &cobra.Command{
	Use:   "show <snapshot | port-id>",
	Short: "Print a port snapshot",
	Long: `Prints a port snapshot saved by "harbor port export" (JSON or TOML).

With --run the argument is a port ID instead, and the port is read from the
run store (--db or db_path); "latest" names the most recent run.`,
	Args: cobra.ExactArgs(1),
	RunE: runPortShow,
}

var portExportCmd = &cobra.Command{
	Use:   "export <scenario> <port-id> <out.json|out.toml>",
	Short: "Run a scenario and save the final state of one port",
	Args:  cobra.ExactArgs(3),
	RunE:  runPortExport,
}

func init() {
	portShowCmd.Flags().String("run", "", `read the port from a stored run ("latest" for the newest)`)
	portShowCmd.Flags().String("db", "", "run store database (overrides db_path)")

	portCmd.AddCommand(portShowCmd)
	portCmd.AddCommand(portExportCmd)
	rootCmd.AddCommand(portCmd)
}

func runPortShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printer := ui.New(cmd.OutOrStdout())

	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		snap, err := port.ReadSnapshot(args[0])
		if err != nil {
			return err
		}
		printer.Port(snap)
		return nil
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		return errors.New("port show: --run needs a database (--db or db_path)")
	}

	ctx := cmd.Context()
	st, err := store.NewSQLiteStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if runID == "latest" {
		runs, err := st.Runs(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("port show: no runs in %s: %w", dbPath, store.ErrNotFound)
		}
		runID = runs[0].ID
	}
	snap, err := st.LoadPort(ctx, runID, args[0])
	if err != nil {
		return err
	}
	printer.Port(snap)
	return nil
}

func runPortExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scenarioPath, portID, out := args[0], args[1], args[2]

	ctx, cancel := signalContext()
	defer cancel()

	sum, err := runQuiet(ctx, cfg, scenarioPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	p, err := sum.Registry.Port(portID)
	if err != nil {
		return fmt.Errorf("port export: %w", err)
	}
	if err := p.Save(out); err != nil {
		return err
	}
	ui.New(cmd.ErrOrStderr()).Info(fmt.Sprintf("saved port %s to %s", portID, out))
	return nil
}
