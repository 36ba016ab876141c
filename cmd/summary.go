package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/cli"
	"github.com/subtrack-cli/subtrack/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly and annual spend overview",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	doc := env.service.Snapshot()
	if len(doc.Subscriptions) == 0 {
		fmt.Println("\n  No subscriptions yet. Add one with: subtrack add")
		return nil
	}

	stats := report.Aggregate(doc.Subscriptions)
	currency := doc.Preferences.DefaultCurrency

	fmt.Println()
	fmt.Println(cli.RenderTitle("SUBSCRIPTION SPEND"))
	fmt.Println()
	fmt.Printf("  Subscriptions:  %d total, %d active, %d on trial, %d paused\n",
		stats.TotalSubscriptions, stats.ActiveCount, stats.TrialCount, stats.PausedCount)
	fmt.Printf("  Monthly spend:  %s\n", cli.FormatMoney(stats.MonthlyTotal, currency))
	fmt.Printf("  Annual spend:   %s\n", cli.FormatMoney(stats.AnnualTotal, currency))
	fmt.Println()

	byCat := report.AggregateByCategory(doc.Subscriptions, doc.Categories)
	if len(byCat) > 0 {
		table := cli.Table{
			Title:   "By category",
			Headers: []string{"Category", "Subs", "Monthly", "Share"},
		}
		for _, row := range byCat {
			table.Rows = append(table.Rows, []string{
				row.CategoryName,
				fmt.Sprintf("%d", row.Count),
				cli.FormatMoney(row.MonthlyTotal, currency),
				fmt.Sprintf("%.1f%%", row.SharePercent),
			})
		}
		fmt.Println(table.Render())
	}

	statuses := report.BudgetReport(doc.Budgets, doc.Subscriptions)
	if len(statuses) > 0 {
		fmt.Println("  " + cli.Dim("Budgets"))
		for _, st := range statuses {
			fmt.Printf("  %-20s %s  %s / %s\n",
				st.Budget.Name,
				cli.RenderBudgetBar(st.UsedFraction, 20),
				cli.FormatMoney(st.CurrentSpend, st.Budget.Currency),
				cli.FormatMoney(st.Budget.MonthlyLimit, st.Budget.Currency),
			)
		}
		fmt.Println()
	}

	upcoming, err := report.UpcomingRenewals(doc.Subscriptions, time.Now(), env.cfg.General.DefaultDays)
	if err == nil && len(upcoming) > 0 {
		fmt.Printf("  %s\n", cli.Dim(fmt.Sprintf("Next %d days", env.cfg.General.DefaultDays)))
		for _, sub := range upcoming {
			fmt.Printf("  %-24s %10s  %s\n",
				sub.Name,
				cli.FormatMoney(sub.Cost, sub.Currency),
				cli.FormatDaysUntil(sub.NextBillingDate, time.Now()),
			)
		}
		fmt.Println()
	}

	return nil
}
