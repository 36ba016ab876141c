package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/model"
)

var (
	flagEditCost   string
	flagEditNext   string
	flagEditStatus string
	flagEditNotify string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a subscription",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	editCmd.Flags().StringVar(&flagEditCost, "cost", "", "New cost per billing period")
	editCmd.Flags().StringVar(&flagEditNext, "next", "", "New next billing date (2006-01-02)")
	editCmd.Flags().StringVar(&flagEditStatus, "status", "", "New status: active|trial|paused|cancelled|expired")
	editCmd.Flags().StringVar(&flagEditNotify, "notify", "", "Reminder toggle: on|off")
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(removeCmd)
}

func runEdit(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	sub, ok := env.service.GetSubscription(args[0])
	if !ok {
		// Let the service apply the configured missing-id behavior.
		sub = model.Subscription{ID: args[0]}
	}

	if flagEditCost != "" {
		cost, err := decimal.NewFromString(flagEditCost)
		if err != nil {
			return fmt.Errorf("malformed cost %q", flagEditCost)
		}
		sub.Cost = cost
	}
	if flagEditNext != "" {
		next, err := time.ParseInLocation("2006-01-02", flagEditNext, time.Local)
		if err != nil {
			return fmt.Errorf("malformed next billing date %q", flagEditNext)
		}
		sub.NextBillingDate = next
	}
	if flagEditStatus != "" {
		sub.Status = model.Status(flagEditStatus)
	}
	switch flagEditNotify {
	case "":
	case "on":
		sub.NotifyEnabled = true
	case "off":
		sub.NotifyEnabled = false
	default:
		return fmt.Errorf("notify must be on or off, got %q", flagEditNotify)
	}

	if err := env.service.UpdateSubscription(sub); err != nil {
		return err
	}

	// Timing fields may have changed; rebuild the reminders.
	if ok {
		if err := env.scheduler.Reschedule(sub); err != nil {
			return err
		}
	}

	fmt.Printf("  Updated %s\n", args[0])
	return nil
}

func runRemove(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.service.DeleteSubscription(args[0]); err != nil {
		return err
	}
	if err := env.scheduler.CancelAll(args[0]); err != nil {
		return err
	}

	fmt.Printf("  Removed %s\n", args[0])
	return nil
}
