package model

import "time"

// UserPreferences is the singleton settings record stored alongside the
// domain collections. Writes replace the whole record; callers
// read-modify-write rather than patching individual fields.
type UserPreferences struct {
	DefaultCurrency string `json:"default_currency"`

	ShowInactive bool   `json:"show_inactive"`
	SortBy       string `json:"sort_by"` // "name", "cost", "next_billing"
	Theme        string `json:"theme"`

	NotifyByDefault bool `json:"notify_by_default"`
	DefaultLeadDays int  `json:"default_lead_days"`

	AppLockEnabled    bool `json:"app_lock_enabled"`
	AppLockTimeoutMin int  `json:"app_lock_timeout_min"`

	BackupEveryDays int `json:"backup_every_days"` // 0 = manual only

	// Pinned off. The application never phones home.
	TelemetryEnabled      bool `json:"telemetry_enabled"`
	CrashReportingEnabled bool `json:"crash_reporting_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPreferences returns the record created on first run.
func DefaultPreferences(now time.Time) UserPreferences {
	return UserPreferences{
		DefaultCurrency: "USD",
		SortBy:          "next_billing",
		Theme:           "flexoki-dark",
		NotifyByDefault: true,
		DefaultLeadDays: 3,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Sanitize forces the privacy-pinned flags off regardless of what a
// caller (or a restored backup) put in the record.
func (p UserPreferences) Sanitize() UserPreferences {
	p.TelemetryEnabled = false
	p.CrashReportingEnabled = false
	return p
}
