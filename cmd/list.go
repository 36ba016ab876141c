package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/cli"
	"github.com/subtrack-cli/subtrack/internal/model"
)

var flagListAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscriptions",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&flagListAll, "all", "a", false, "Include cancelled and expired subscriptions")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	doc := env.service.Snapshot()

	catNames := make(map[string]string, len(doc.Categories))
	for _, c := range doc.Categories {
		catNames[c.ID] = c.Name
	}

	subs := make([]model.Subscription, 0, len(doc.Subscriptions))
	for _, s := range doc.Subscriptions {
		if !flagListAll && (s.Status == model.StatusCancelled || s.Status == model.StatusExpired) {
			continue
		}
		subs = append(subs, s)
	}
	if len(subs) == 0 {
		fmt.Println("\n  No subscriptions to show.")
		return nil
	}

	sort.Slice(subs, func(i, j int) bool {
		a, b := subs[i], subs[j]
		switch doc.Preferences.SortBy {
		case "name":
			return a.Name < b.Name
		case "cost":
			return a.MonthlyEquivalent().GreaterThan(b.MonthlyEquivalent())
		default:
			if !a.NextBillingDate.Equal(b.NextBillingDate) {
				return a.NextBillingDate.Before(b.NextBillingDate)
			}
			return a.ID < b.ID
		}
	})

	now := time.Now()
	table := cli.Table{
		Headers: []string{"Name", "Cost", "Period", "Next billing", "Status", "Category"},
	}
	for _, s := range subs {
		next := cli.FormatDate(s.NextBillingDate)
		if !s.NextBillingDate.IsZero() {
			next += " (" + cli.FormatDaysUntil(s.NextBillingDate, now) + ")"
		}
		table.Rows = append(table.Rows, []string{
			s.Name,
			cli.FormatMoney(s.Cost, s.Currency),
			cli.FormatPeriod(s.Period, s.BillingCycleDays),
			next,
			cli.FormatStatus(s.Status),
			catNames[s.CategoryID],
		})
	}

	fmt.Println()
	fmt.Println(table.Render())
	return nil
}
