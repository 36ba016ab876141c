package backup

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-cli/subtrack/internal/model"
)

func toBackupSub(s model.Subscription) backupSub {
	bs := backupSub{
		ID:               s.ID,
		Name:             s.Name,
		Cost:             s.Cost.String(),
		Currency:         s.Currency,
		Period:           string(s.Period),
		BillingCycleDays: s.BillingCycleDays,
		Status:           string(s.Status),
		NotifyEnabled:    s.NotifyEnabled,
		NotifyLeadDays:   s.NotifyLeadDays,
		CategoryID:       s.CategoryID,
		Tags:             s.Tags,
		Notes:            s.Notes,
		Links:            s.Links,
	}
	if !s.StartDate.IsZero() {
		bs.StartDate = s.StartDate.UTC().Format(time.RFC3339)
	}
	if !s.NextBillingDate.IsZero() {
		bs.NextBillingDate = s.NextBillingDate.UTC().Format(time.RFC3339)
	}
	if s.TrialEndDate != nil {
		bs.TrialEndDate = s.TrialEndDate.UTC().Format(time.RFC3339)
	}
	if !s.CreatedAt.IsZero() {
		bs.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !s.UpdatedAt.IsZero() {
		bs.UpdatedAt = s.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return bs
}

func fromBackupSub(bs backupSub) (model.Subscription, error) {
	cost, err := decimal.NewFromString(bs.Cost)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("malformed cost %q", bs.Cost)
	}

	s := model.Subscription{
		ID:               bs.ID,
		Name:             bs.Name,
		Cost:             cost,
		Currency:         bs.Currency,
		Period:           model.BillingPeriod(bs.Period),
		BillingCycleDays: bs.BillingCycleDays,
		Status:           model.Status(bs.Status),
		NotifyEnabled:    bs.NotifyEnabled,
		NotifyLeadDays:   bs.NotifyLeadDays,
		CategoryID:       bs.CategoryID,
		Tags:             bs.Tags,
		Notes:            bs.Notes,
		Links:            bs.Links,
	}
	if !s.Period.Valid() {
		return model.Subscription{}, fmt.Errorf("unknown billing period %q", bs.Period)
	}

	if s.StartDate, err = parseOptionalTime(bs.StartDate); err != nil {
		return model.Subscription{}, err
	}
	if s.NextBillingDate, err = parseOptionalTime(bs.NextBillingDate); err != nil {
		return model.Subscription{}, err
	}
	if bs.TrialEndDate != "" {
		end, err := time.Parse(time.RFC3339, bs.TrialEndDate)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("malformed trial end date %q", bs.TrialEndDate)
		}
		s.TrialEndDate = &end
	}
	if s.CreatedAt, err = parseOptionalTime(bs.CreatedAt); err != nil {
		return model.Subscription{}, err
	}
	if s.UpdatedAt, err = parseOptionalTime(bs.UpdatedAt); err != nil {
		return model.Subscription{}, err
	}
	return s, nil
}

func parseOptionalTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q", raw)
	}
	return t, nil
}
