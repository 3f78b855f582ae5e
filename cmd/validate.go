package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/harbor/internal/scenario"
	"github.com/papapumpkin/harbor/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario>",
	Short: "Check every record of a scenario without running it",
	Long: `Decodes every record and reports missing or invalid fields, unknown record
types and actions, and references to ports, ships or containers that no
definition provides. Exits non-zero when any problem is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(); err != nil {
			return err
		}
		records, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		errs := scenario.Validate(records)
		ui.New(cmd.ErrOrStderr()).ValidateResult(filepath.Base(args[0]), len(records), errs)
		if len(errs) > 0 {
			return fmt.Errorf("validate: %d problem(s) in %s", len(errs), args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
