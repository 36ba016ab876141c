// Package tui provides the interactive Bubble Tea dashboard for subtrack.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/subtrack-cli/subtrack/internal/cli"
	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/report"
	"github.com/subtrack-cli/subtrack/internal/service"
	"github.com/subtrack-cli/subtrack/internal/store"
)

// Tabs lists the dashboard tabs in display order.
var Tabs = []string{"Overview", "Subscriptions", "Budgets"}

const (
	tabOverview = iota
	tabSubscriptions
	tabBudgets
)

// DataLoadedMsg carries the first document snapshot.
type DataLoadedMsg struct {
	Doc store.Document
}

// DocChangedMsg is delivered whenever the store changes underneath us.
type DocChangedMsg struct {
	Doc store.Document
}

// App is the root Bubble Tea model.
type App struct {
	svc      *service.Service
	currency string

	// Data snapshot, recomputed on every document change.
	doc        store.Document
	loaded     bool
	stats      report.SummaryStats
	byCategory []report.CategoryStats
	budgets    []report.BudgetStatus
	upcoming   []model.Subscription
	subs       []model.Subscription

	watch     <-chan store.Document
	stopWatch func()

	// UI state
	width     int
	height    int
	activeTab int
	cursor    int
	showHelp  bool

	spinner spinner.Model
}

const upcomingWindowDays = 30

// NewApp creates the dashboard model over an already-opened service.
func NewApp(svc *service.Service, currency string) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cli.ColorAccent)

	watch, stop := svc.Watch()

	return App{
		svc:       svc,
		currency:  currency,
		watch:     watch,
		stopWatch: stop,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadCmd(),
		a.waitForChange(),
		a.spinner.Tick,
	)
}

func (a App) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return DataLoadedMsg{Doc: a.svc.Snapshot()}
	}
}

func (a App) waitForChange() tea.Cmd {
	ch := a.watch
	return func() tea.Msg {
		doc, ok := <-ch
		if !ok {
			return nil
		}
		return DocChangedMsg{Doc: doc}
	}
}

func (a *App) recompute() {
	subs := a.doc.Subscriptions
	a.stats = report.Aggregate(subs)
	a.byCategory = report.AggregateByCategory(subs, a.doc.Categories)
	a.budgets = a.svc.BudgetStatuses()

	up, err := a.svc.UpcomingRenewals(time.Now(), upcomingWindowDays)
	if err == nil {
		a.upcoming = up
	}

	a.subs = append([]model.Subscription(nil), subs...)
	sort.Slice(a.subs, func(i, j int) bool {
		return a.subs[i].Name < a.subs[j].Name
	})

	if a.cursor >= len(a.subs) {
		a.cursor = len(a.subs) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" || key == "q" {
			if a.stopWatch != nil {
				a.stopWatch()
			}
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "o":
			a.activeTab = tabOverview
		case "s":
			a.activeTab = tabSubscriptions
		case "b":
			a.activeTab = tabBudgets
		case "left", "h":
			a.activeTab = (a.activeTab - 1 + len(Tabs)) % len(Tabs)
		case "right", "l":
			a.activeTab = (a.activeTab + 1) % len(Tabs)
		case "j", "down":
			if a.activeTab == tabSubscriptions && a.cursor < len(a.subs)-1 {
				a.cursor++
			}
		case "k", "up":
			if a.activeTab == tabSubscriptions && a.cursor > 0 {
				a.cursor--
			}
		case "g":
			a.cursor = 0
		case "G":
			if len(a.subs) > 0 {
				a.cursor = len(a.subs) - 1
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.doc = msg.Doc
		a.loaded = true
		a.recompute()
		return a, nil

	case DocChangedMsg:
		a.doc = msg.Doc
		a.recompute()
		return a, a.waitForChange()

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	if !a.loaded {
		return fmt.Sprintf("\n  %s Unlocking store...\n", a.spinner.View())
	}

	if a.showHelp {
		return a.viewHelp()
	}

	var b strings.Builder
	b.WriteString(a.viewTabBar())
	b.WriteString("\n")

	switch a.activeTab {
	case tabOverview:
		b.WriteString(a.viewOverview())
	case tabSubscriptions:
		b.WriteString(a.viewSubscriptions())
	case tabBudgets:
		b.WriteString(a.viewBudgets())
	}

	b.WriteString("\n")
	b.WriteString(cli.Dim("  o/s/b tabs · j/k move · ? help · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (a App) viewTabBar() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(cli.ColorAccent)
	inactive := lipgloss.NewStyle().Foreground(cli.ColorTextDim)

	parts := make([]string, len(Tabs))
	for i, name := range Tabs {
		if i == a.activeTab {
			parts[i] = active.Render("[" + name + "]")
		} else {
			parts[i] = inactive.Render(" " + name + " ")
		}
	}
	return "  " + strings.Join(parts, " ")
}

func (a App) viewOverview() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Monthly spend:  %s\n",
		cli.Ok(cli.FormatMoney(a.stats.MonthlyTotal, a.currency))))
	b.WriteString(fmt.Sprintf("  Annual spend:   %s\n",
		cli.FormatMoney(a.stats.AnnualTotal, a.currency)))
	b.WriteString(fmt.Sprintf("  Subscriptions:  %d active, %d trial, %d paused\n",
		a.stats.ActiveCount, a.stats.TrialCount, a.stats.PausedCount))
	b.WriteString("\n")

	if len(a.byCategory) > 0 {
		rows := make([][]string, 0, len(a.byCategory))
		for _, c := range a.byCategory {
			rows = append(rows, []string{
				c.CategoryName,
				fmt.Sprintf("%d", c.Count),
				cli.FormatMoney(c.MonthlyTotal, a.currency),
				fmt.Sprintf("%.1f%%", c.SharePercent),
			})
		}
		t := cli.Table{
			Title:   "By category",
			Headers: []string{"Category", "Subs", "Monthly", "Share"},
			Rows:    rows,
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if len(a.upcoming) > 0 {
		today := time.Now()
		b.WriteString("  " + cli.Warn(fmt.Sprintf("Renewing in the next %d days", upcomingWindowDays)) + "\n")
		for _, s := range a.upcoming {
			b.WriteString(fmt.Sprintf("    %-24s %10s  %s\n",
				s.Name,
				cli.FormatMoney(s.Cost, s.Currency),
				cli.Dim(cli.FormatDaysUntil(s.NextBillingDate, today))))
		}
	}

	return b.String()
}

func (a App) viewSubscriptions() string {
	if len(a.subs) == 0 {
		return "\n  " + cli.Dim("No subscriptions yet. Run `subtrack add`.") + "\n"
	}

	today := time.Now()
	var b strings.Builder
	b.WriteString("\n")

	selected := lipgloss.NewStyle().Bold(true).Foreground(cli.ColorText)
	for i, s := range a.subs {
		marker := "  "
		line := fmt.Sprintf("%-24s %10s  %-14s %-10s %s",
			s.Name,
			cli.FormatMoney(s.Cost, s.Currency),
			cli.FormatPeriod(s.Period, s.BillingCycleDays),
			cli.FormatStatus(s.Status),
			cli.FormatDaysUntil(s.NextBillingDate, today))
		if i == a.cursor {
			b.WriteString("  " + cli.Ok("›") + " " + selected.Render(line) + "\n")
		} else {
			b.WriteString("  " + marker + cli.Dim(line) + "\n")
		}
	}

	// Detail pane for the selected subscription.
	s := a.subs[a.cursor]
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Next billing: %s", cli.FormatDate(s.NextBillingDate)))
	if s.TrialEndDate != nil {
		b.WriteString(fmt.Sprintf("   Trial ends: %s", cli.FormatDate(*s.TrialEndDate)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Monthly equivalent: %s",
		cli.FormatMoney(s.MonthlyEquivalent(), s.Currency)))
	if s.Notes != "" {
		b.WriteString("\n  " + cli.Dim(s.Notes))
	}
	b.WriteString("\n")

	return b.String()
}

func (a App) viewBudgets() string {
	if len(a.budgets) == 0 {
		return "\n  " + cli.Dim("No budgets yet. Run `subtrack budgets add`.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, st := range a.budgets {
		b.WriteString(fmt.Sprintf("  %-20s %s of %s\n",
			st.Budget.Name,
			cli.FormatMoney(st.CurrentSpend, a.currency),
			cli.FormatMoney(st.Budget.MonthlyLimit, a.currency)))
		b.WriteString("    " + cli.RenderBudgetBar(st.UsedFraction, 40) + "\n")
		if st.OverLimit {
			b.WriteString("    " + cli.Warn("over limit") + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) viewHelp() string {
	lines := []string{
		"",
		"  subtrack dashboard",
		"",
		"  o / s / b      jump to Overview, Subscriptions, Budgets",
		"  left / right   cycle tabs",
		"  j / k          move the subscription cursor",
		"  g / G          jump to first / last subscription",
		"  ?              toggle this help",
		"  q              quit",
		"",
	}
	return cli.Dim(strings.Join(lines, "\n")) + "\n"
}
