package service

import (
	"strings"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/report"
	"github.com/subtrack-cli/subtrack/internal/store"
)

// AddSubscription validates and stores a new subscription, assigning
// its id and timestamps. Returns the stored record.
func (s *Service) AddSubscription(sub model.Subscription) (model.Subscription, error) {
	if strings.TrimSpace(sub.Name) == "" {
		return model.Subscription{}, validationErr("subscription name is blank")
	}
	if !sub.Period.Valid() {
		return model.Subscription{}, validationErr("unknown billing period %q", sub.Period)
	}
	if sub.Period == model.PeriodCustom && sub.BillingCycleDays <= 0 {
		return model.Subscription{}, validationErr("custom period needs a positive cycle length")
	}
	if sub.Cost.IsNegative() {
		return model.Subscription{}, validationErr("cost is negative")
	}
	if !sub.NextBillingDate.IsZero() && !sub.StartDate.IsZero() &&
		sub.NextBillingDate.Before(sub.StartDate) {
		return model.Subscription{}, validationErr("next billing date precedes start date")
	}

	now := s.now()
	sub.ID = newID()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = model.StatusActive
	}

	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		doc.Subscriptions = append(doc.Subscriptions, sub)
		return doc, nil
	})
	if err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

// UpdateSubscription replaces the stored record with the same id.
func (s *Service) UpdateSubscription(sub model.Subscription) error {
	if err := requireID(sub.ID); err != nil {
		return err
	}
	if sub.Period != "" && !sub.Period.Valid() {
		return validationErr("unknown billing period %q", sub.Period)
	}

	found := false
	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		found = false
		for i, existing := range doc.Subscriptions {
			if existing.ID == sub.ID {
				sub.CreatedAt = existing.CreatedAt
				sub.UpdatedAt = s.now()
				doc.Subscriptions[i] = sub
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
		return s.notFound("subscription", sub.ID)
	}
	return nil
}

// DeleteSubscription removes the record with the given id.
func (s *Service) DeleteSubscription(id string) error {
	if err := requireID(id); err != nil {
		return err
	}

	found := false
	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		found = false
		for i, existing := range doc.Subscriptions {
			if existing.ID == id {
				doc.Subscriptions = append(doc.Subscriptions[:i], doc.Subscriptions[i+1:]...)
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
		return s.notFound("subscription", id)
	}
	return nil
}

// GetSubscription looks up a subscription by id.
func (s *Service) GetSubscription(id string) (model.Subscription, bool) {
	for _, sub := range s.store.Read().Subscriptions {
		if sub.ID == id {
			return sub, true
		}
	}
	return model.Subscription{}, false
}

// Subscriptions returns all stored subscriptions.
func (s *Service) Subscriptions() []model.Subscription {
	return s.store.Read().Subscriptions
}

// UpcomingRenewals returns active subscriptions billing within the
// window, soonest first.
func (s *Service) UpcomingRenewals(today time.Time, windowDays int) ([]model.Subscription, error) {
	return report.UpcomingRenewals(s.activeSubscriptions(), today, windowDays)
}

// UpcomingTrialEnds returns subscriptions whose trials end within the
// window, soonest first.
func (s *Service) UpcomingTrialEnds(today time.Time, windowDays int) ([]model.Subscription, error) {
	return report.UpcomingTrialEnds(s.activeSubscriptions(), today, windowDays)
}

func (s *Service) activeSubscriptions() []model.Subscription {
	var out []model.Subscription
	for _, sub := range s.store.Read().Subscriptions {
		if sub.Status == model.StatusActive || sub.Status == model.StatusTrial {
			out = append(out, sub)
		}
	}
	return out
}
