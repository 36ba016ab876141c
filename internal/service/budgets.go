package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/report"
	"github.com/subtrack-cli/subtrack/internal/store"
)

// AddBudget validates and stores a new budget.
func (s *Service) AddBudget(b model.Budget) (model.Budget, error) {
	if strings.TrimSpace(b.Name) == "" {
		return model.Budget{}, validationErr("budget name is blank")
	}
	if !b.MonthlyLimit.IsPositive() {
		return model.Budget{}, validationErr("monthly limit must be positive")
	}
	if b.NotifyThreshold < 0 || b.NotifyThreshold > 1 {
		return model.Budget{}, validationErr("notify threshold %v outside [0, 1]", b.NotifyThreshold)
	}
	if b.NotifyThreshold == 0 {
		b.NotifyThreshold = model.DefaultNotifyThreshold
	}

	now := s.now()
	b.ID = newID()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		doc.Budgets = append(doc.Budgets, b)
		return doc, nil
	})
	if err != nil {
		return model.Budget{}, err
	}
	return b, nil
}

// UpdateBudget replaces the stored budget with the same id.
func (s *Service) UpdateBudget(b model.Budget) error {
	if err := requireID(b.ID); err != nil {
		return err
	}
	if !b.MonthlyLimit.IsPositive() {
		return validationErr("monthly limit must be positive")
	}
	if b.NotifyThreshold < 0 || b.NotifyThreshold > 1 {
		return validationErr("notify threshold %v outside [0, 1]", b.NotifyThreshold)
	}

	found := false
	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		found = false
		for i, existing := range doc.Budgets {
			if existing.ID == b.ID {
				b.CreatedAt = existing.CreatedAt
				b.UpdatedAt = s.now()
				doc.Budgets[i] = b
				found = true
				break
			}
		}
		return doc, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return s.notFound("budget", b.ID)
	}
	return nil
}

// DeleteBudget removes the budget with the given id.
func (s *Service) DeleteBudget(id string) error {
	if err := requireID(id); err != nil {
		return err
	}

	found := false
	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		found = false
		for i, existing := range doc.Budgets {
			if existing.ID == id {
				doc.Budgets = append(doc.Budgets[:i], doc.Budgets[i+1:]...)
				found = true
				break
			}
		}
		return doc, nil
	})
	if err != nil {
		return err
	}
	if !found {
		return s.notFound("budget", id)
	}
	return nil
}

// Budgets returns all stored budgets.
func (s *Service) Budgets() []model.Budget {
	return s.store.Read().Budgets
}

// CurrentSpending returns the monthly spend matched by the budget with
// the given id. A missing budget spends zero; it is not an error.
func (s *Service) CurrentSpending(budgetID string) decimal.Decimal {
	doc := s.store.Read()
	for _, b := range doc.Budgets {
		if b.ID == budgetID {
			statuses := report.BudgetReport([]model.Budget{b}, doc.Subscriptions)
			return statuses[0].CurrentSpend
		}
	}
	return decimal.Zero
}

// BudgetStatuses computes spend against every stored budget.
func (s *Service) BudgetStatuses() []report.BudgetStatus {
	doc := s.store.Read()
	return report.BudgetReport(doc.Budgets, doc.Subscriptions)
}
