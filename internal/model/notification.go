package model

// NotificationKind distinguishes the two reminder types scheduled per
// subscription.
type NotificationKind string

const (
	KindRenewal     NotificationKind = "renewal"
	KindTrialEnding NotificationKind = "trial_ending"
)

// Notification is the payload handed to the presentation layer when a
// reminder fires. The core's responsibility ends here.
type Notification struct {
	SubscriptionID   string           `json:"subscription_id"`
	SubscriptionName string           `json:"subscription_name"`
	Kind             NotificationKind `json:"kind"`
}
