package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/cli"
	"github.com/subtrack-cli/subtrack/internal/model"
)

var (
	flagBudgetLimit      string
	flagBudgetCurrency   string
	flagBudgetCategories []string
	flagBudgetSubs       []string
	flagBudgetThreshold  float64
)

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "Manage monthly budgets",
	RunE:  runBudgetsList,
}

var budgetsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsAdd,
}

var budgetsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsRemove,
}

func init() {
	budgetsAddCmd.Flags().StringVar(&flagBudgetLimit, "limit", "", "Monthly limit, e.g. 50.00 (required)")
	budgetsAddCmd.Flags().StringVar(&flagBudgetCurrency, "currency", "", "Currency code (default from preferences)")
	budgetsAddCmd.Flags().StringSliceVar(&flagBudgetCategories, "category", nil, "Category id to match (repeatable; none = all)")
	budgetsAddCmd.Flags().StringSliceVar(&flagBudgetSubs, "subscription", nil, "Subscription id to match (repeatable; none = all)")
	budgetsAddCmd.Flags().Float64Var(&flagBudgetThreshold, "threshold", model.DefaultNotifyThreshold, "Alert threshold fraction (0-1)")
	_ = budgetsAddCmd.MarkFlagRequired("limit")
	budgetsCmd.AddCommand(budgetsAddCmd)
	budgetsCmd.AddCommand(budgetsRemoveCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgetsList(_ *cobra.Command, _ []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	statuses := env.service.BudgetStatuses()
	if len(statuses) == 0 {
		fmt.Println("\n  No budgets yet. Add one with: subtrack budgets add")
		return nil
	}

	fmt.Println()
	for _, st := range statuses {
		line := fmt.Sprintf("  %-20s %s  %s / %s",
			st.Budget.Name,
			cli.RenderBudgetBar(st.UsedFraction, 24),
			cli.FormatMoney(st.CurrentSpend, st.Budget.Currency),
			cli.FormatMoney(st.Budget.MonthlyLimit, st.Budget.Currency),
		)
		if st.OverLimit {
			line += "  " + cli.Warn("over limit")
		}
		fmt.Println(line)
		fmt.Printf("    %s\n", cli.Dim("id="+st.Budget.ID))
	}
	fmt.Println()
	return nil
}

func runBudgetsAdd(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	limit, err := decimal.NewFromString(flagBudgetLimit)
	if err != nil {
		return fmt.Errorf("malformed limit %q", flagBudgetLimit)
	}

	currency := flagBudgetCurrency
	if currency == "" {
		currency = env.service.Preferences().DefaultCurrency
	}

	b, err := env.service.AddBudget(model.Budget{
		Name:            args[0],
		MonthlyLimit:    limit,
		Currency:        currency,
		CategoryIDs:     flagBudgetCategories,
		SubscriptionIDs: flagBudgetSubs,
		NotifyEnabled:   true,
		NotifyThreshold: flagBudgetThreshold,
	})
	if err != nil {
		return err
	}
	fmt.Printf("  Added budget %s  id=%s\n", b.Name, b.ID)
	return nil
}

func runBudgetsRemove(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.service.DeleteBudget(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Removed budget %s\n", args[0])
	return nil
}
