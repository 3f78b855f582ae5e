package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/harbor/internal/billing"
	"github.com/papapumpkin/harbor/internal/ui"
)

var billingCmd = &cobra.Command{
	Use:   "billing [script.toml]",
	Short: "Run a telecom billing script",
	Long: `Runs a billing script: operators with talk, message and data rates, bills
with credit limits, and customers spending through them. Without a script the
built-in demonstration is run.

A step that would exceed a bill's limit is reported and the script continues.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBilling,
}

func init() {
	rootCmd.AddCommand(billingCmd)
}

func runBilling(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}

	script := billing.DefaultScript()
	if len(args) == 1 {
		var err error
		if script, err = billing.LoadScript(args[0]); err != nil {
			return err
		}
	}

	network, err := script.Build()
	if err != nil {
		return err
	}

	printer := ui.New(cmd.OutOrStdout())
	failed := 0
	for _, r := range network.Run(script.Steps) {
		printer.BillingResult(r)
		if r.Err != nil {
			failed++
		}
	}

	bills := make([]*billing.Bill, 0, len(network.Bills))
	for _, b := range network.Bills {
		bills = append(bills, b)
	}
	slices.SortFunc(bills, func(a, b *billing.Bill) int { return strings.Compare(a.ID, b.ID) })
	printer.BillingSummary(bills)

	if failed > 0 {
		printer.Info(fmt.Sprintf("%d of %d steps refused", failed, len(script.Steps)))
	}
	return nil
}
