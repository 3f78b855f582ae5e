package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/harbor/internal/store"
	"github.com/papapumpkin/harbor/internal/ui"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs saved in the run store",
	Long: `Lists the runs saved by "harbor run --db", newest first. With --ships the
end state of every ship of the newest run (or of --run) is printed too.`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().String("db", "", "run store database (overrides db_path)")
	runsCmd.Flags().Bool("ships", false, "also print the ships of a run")
	runsCmd.Flags().String("run", "", "run to print ships for (default: newest)")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		return errors.New("runs: no database (--db or db_path)")
	}

	ctx := cmd.Context()
	st, err := store.NewSQLiteStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(ctx)
	if err != nil {
		return err
	}
	printer := ui.New(cmd.OutOrStdout())
	printer.Runs(runs)

	if ships, _ := cmd.Flags().GetBool("ships"); !ships || len(runs) == 0 {
		return nil
	}
	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		runID = runs[0].ID
	}
	states, err := st.Ships(ctx, runID)
	if err != nil {
		return err
	}
	printer.Info("ships of run " + runID)
	for _, s := range states {
		printer.ShipState(s)
	}
	return nil
}
