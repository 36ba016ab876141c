package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/cli"
	"github.com/subtrack-cli/subtrack/internal/model"
)

var (
	flagAddCost      string
	flagAddCurrency  string
	flagAddPeriod    string
	flagAddCycleDays int
	flagAddNext      string
	flagAddTrialEnd  string
	flagAddCategory  string
	flagAddNotify    bool
	flagAddLeadDays  int
	flagAddNotes     string
)

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a subscription",
	Long:  "Add a subscription. Without flags, an interactive form collects the details.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddCost, "cost", "", "Cost per billing period, e.g. 9.99")
	addCmd.Flags().StringVar(&flagAddCurrency, "currency", "", "Currency code (default from preferences)")
	addCmd.Flags().StringVar(&flagAddPeriod, "period", "monthly", "Billing period: daily|weekly|monthly|quarterly|semi_annually|annually|custom")
	addCmd.Flags().IntVar(&flagAddCycleDays, "cycle-days", 0, "Cycle length in days for custom period")
	addCmd.Flags().StringVar(&flagAddNext, "next", "", "Next billing date (2006-01-02)")
	addCmd.Flags().StringVar(&flagAddTrialEnd, "trial-end", "", "Trial end date (2006-01-02)")
	addCmd.Flags().StringVar(&flagAddCategory, "category", "", "Category name")
	addCmd.Flags().BoolVar(&flagAddNotify, "notify", true, "Schedule a renewal reminder")
	addCmd.Flags().IntVar(&flagAddLeadDays, "lead-days", 0, "Reminder lead days (default from preferences)")
	addCmd.Flags().StringVar(&flagAddNotes, "notes", "", "Free-form notes")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	prefs := env.service.Preferences()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	// Interactive form when the cost was not given on the command line.
	if flagAddCost == "" {
		if err := runAddForm(&name); err != nil {
			return err
		}
	}

	cost, err := decimal.NewFromString(flagAddCost)
	if err != nil {
		return fmt.Errorf("malformed cost %q", flagAddCost)
	}

	sub := model.Subscription{
		Name:             name,
		Cost:             cost,
		Currency:         flagAddCurrency,
		Period:           model.BillingPeriod(flagAddPeriod),
		BillingCycleDays: flagAddCycleDays,
		StartDate:        time.Now(),
		Status:           model.StatusActive,
		NotifyEnabled:    flagAddNotify && prefs.NotifyByDefault,
		NotifyLeadDays:   flagAddLeadDays,
		Notes:            flagAddNotes,
	}
	if sub.Currency == "" {
		sub.Currency = prefs.DefaultCurrency
	}
	if sub.NotifyLeadDays == 0 {
		sub.NotifyLeadDays = prefs.DefaultLeadDays
	}

	if flagAddNext != "" {
		next, err := time.ParseInLocation("2006-01-02", flagAddNext, time.Local)
		if err != nil {
			return fmt.Errorf("malformed next billing date %q", flagAddNext)
		}
		sub.NextBillingDate = next
	}
	if flagAddTrialEnd != "" {
		end, err := time.ParseInLocation("2006-01-02", flagAddTrialEnd, time.Local)
		if err != nil {
			return fmt.Errorf("malformed trial end date %q", flagAddTrialEnd)
		}
		sub.TrialEndDate = &end
		sub.Status = model.StatusTrial
	}

	if flagAddCategory != "" {
		sub.CategoryID, err = resolveCategory(env, flagAddCategory)
		if err != nil {
			return err
		}
	}

	stored, err := env.service.AddSubscription(sub)
	if err != nil {
		return err
	}

	if err := env.scheduler.Reschedule(stored); err != nil {
		fmt.Printf("  %s\n", cli.Warn("reminder not scheduled: "+err.Error()))
	}

	fmt.Printf("  Added %s (%s %s)  id=%s\n",
		stored.Name,
		cli.FormatMoney(stored.Cost, stored.Currency),
		cli.FormatPeriod(stored.Period, stored.BillingCycleDays),
		stored.ID,
	)
	return nil
}

// runAddForm fills the add flags from an interactive form.
func runAddForm(name *string) error {
	period := flagAddPeriod

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(name).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Cost per period").
				Placeholder("9.99").
				Value(&flagAddCost).
				Validate(func(s string) error {
					_, err := decimal.NewFromString(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Billing period").
				Options(
					huh.NewOption("Monthly", "monthly"),
					huh.NewOption("Annually", "annually"),
					huh.NewOption("Weekly", "weekly"),
					huh.NewOption("Daily", "daily"),
					huh.NewOption("Quarterly", "quarterly"),
					huh.NewOption("Semi-annually", "semi_annually"),
				).
				Value(&period),
			huh.NewInput().
				Title("Next billing date").
				Placeholder("2006-01-02 (optional)").
				Value(&flagAddNext),
			huh.NewConfirm().
				Title("Renewal reminder?").
				Value(&flagAddNotify),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	flagAddPeriod = period
	return nil
}

// resolveCategory maps a category name to its id, creating the
// category on first use.
func resolveCategory(env *appEnv, name string) (string, error) {
	for _, c := range env.service.Categories() {
		if c.Name == name {
			return c.ID, nil
		}
	}
	created, err := env.service.AddCategory(model.Category{Name: name})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}
