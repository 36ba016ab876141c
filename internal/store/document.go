package store

import (
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
)

// SchemaVersion tags the persisted document layout. Bump on any
// incompatible change to Document.
const SchemaVersion = 1

// Document is the single on-device record holding every collection.
// It is persisted as one encrypted blob; there is no per-entity file.
type Document struct {
	Schema        int                   `json:"schema"`
	Revision      uint64                `json:"revision"`
	Subscriptions []model.Subscription  `json:"subscriptions"`
	Categories    []model.Category      `json:"categories"`
	Budgets       []model.Budget        `json:"budgets"`
	Preferences   model.UserPreferences `json:"preferences"`
	LastUpdated   int64                 `json:"last_updated"` // epoch seconds
}

// NewDocument returns the document created on first run.
func NewDocument(now time.Time) Document {
	return Document{
		Schema:      SchemaVersion,
		Preferences: model.DefaultPreferences(now),
		LastUpdated: now.Unix(),
	}
}

// Clone deep-copies the document so transforms can mutate freely
// without aliasing the committed state.
func (d Document) Clone() Document {
	out := d
	out.Subscriptions = append([]model.Subscription(nil), d.Subscriptions...)
	for i, s := range out.Subscriptions {
		out.Subscriptions[i].Tags = append([]string(nil), s.Tags...)
		out.Subscriptions[i].Links = append([]string(nil), s.Links...)
		if s.TrialEndDate != nil {
			end := *s.TrialEndDate
			out.Subscriptions[i].TrialEndDate = &end
		}
	}
	out.Categories = append([]model.Category(nil), d.Categories...)
	out.Budgets = append([]model.Budget(nil), d.Budgets...)
	for i, b := range out.Budgets {
		out.Budgets[i].CategoryIDs = append([]string(nil), b.CategoryIDs...)
		out.Budgets[i].SubscriptionIDs = append([]string(nil), b.SubscriptionIDs...)
	}
	return out
}
