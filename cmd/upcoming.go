package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/cli"
)

var flagUpcomingDays int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Renewals and trial endings in the next days",
	RunE:  runUpcoming,
}

func init() {
	upcomingCmd.Flags().IntVarP(&flagUpcomingDays, "days", "n", 7, "Lookahead window in days")
	rootCmd.AddCommand(upcomingCmd)
}

func runUpcoming(_ *cobra.Command, _ []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	now := time.Now()

	renewals, err := env.service.UpcomingRenewals(now, flagUpcomingDays)
	if err != nil {
		return err
	}
	trials, err := env.service.UpcomingTrialEnds(now, flagUpcomingDays)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("UPCOMING  Next %dd", flagUpcomingDays)))
	fmt.Println()

	if len(renewals) == 0 && len(trials) == 0 {
		fmt.Println("  Nothing due in this window.")
		return nil
	}

	if len(renewals) > 0 {
		table := cli.Table{
			Title:   "Renewals",
			Headers: []string{"Name", "Cost", "Due"},
		}
		for _, s := range renewals {
			table.Rows = append(table.Rows, []string{
				s.Name,
				cli.FormatMoney(s.Cost, s.Currency),
				cli.FormatDaysUntil(s.NextBillingDate, now),
			})
		}
		fmt.Println(table.Render())
	}

	if len(trials) > 0 {
		table := cli.Table{
			Title:   "Trials ending",
			Headers: []string{"Name", "Ends"},
		}
		for _, s := range trials {
			table.Rows = append(table.Rows, []string{
				s.Name,
				cli.FormatDaysUntil(*s.TrialEndDate, now),
			})
		}
		fmt.Println(table.Render())
	}

	return nil
}
