// Package backup serializes the subscription set to an encrypted,
// versioned file and restores it with typed failure reporting.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/vault"
)

// FileExt is the backup file extension.
const FileExt = ".stbk"

// FormatVersion tags the backup payload layout.
const FormatVersion = "1"

var supportedVersions = map[string]bool{FormatVersion: true}

// Typed restore failures. Each one maps to distinct user guidance, so
// they must stay distinguishable from generic I/O errors.
var (
	ErrCorrupt            = errors.New("backup: corrupt file")
	ErrUnsupportedVersion = errors.New("backup: unsupported version")
)

// Mode selects how restored subscriptions combine with the stored set.
type Mode int

const (
	// Replace discards the stored subscriptions in favor of the backup.
	Replace Mode = iota
	// Merge keeps stored subscriptions, adding backup entries whose ids
	// are not already present.
	Merge
)

// payload is the decrypted backup file content. Dates serialize as
// ISO-8601 strings and money as decimal strings, so the file survives
// schema-agnostic tooling.
type payload struct {
	Version       string      `json:"version"`
	CreatedAt     string      `json:"created_at"`
	Subscriptions []backupSub `json:"subscriptions"`
}

type backupSub struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Cost             string   `json:"cost"`
	Currency         string   `json:"currency"`
	Period           string   `json:"period"`
	BillingCycleDays int      `json:"billing_cycle_days,omitempty"`
	StartDate        string   `json:"start_date,omitempty"`
	NextBillingDate  string   `json:"next_billing_date,omitempty"`
	TrialEndDate     string   `json:"trial_end_date,omitempty"`
	Status           string   `json:"status"`
	NotifyEnabled    bool     `json:"notify_enabled"`
	NotifyLeadDays   int      `json:"notify_lead_days"`
	CategoryID       string   `json:"category_id,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	Links            []string `json:"links,omitempty"`
	CreatedAt        string   `json:"created_at,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

// Create writes an encrypted backup of the subscriptions to w.
func Create(w io.Writer, subs []model.Subscription, key []byte) error {
	p := payload{
		Version:       FormatVersion,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Subscriptions: make([]backupSub, 0, len(subs)),
	}
	for _, s := range subs {
		p.Subscriptions = append(p.Subscriptions, toBackupSub(s))
	}

	plaintext, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("backup: encoding: %w", err)
	}

	sealed, err := vault.Encrypt(key, plaintext)
	if err != nil {
		return fmt.Errorf("backup: encrypting: %w", err)
	}

	if _, err := w.Write(sealed); err != nil {
		return fmt.Errorf("backup: writing: %w", err)
	}
	return nil
}

// Restore decrypts and parses a backup from r and combines it with
// current per mode. Returns the resulting subscription set.
//
// Failure taxonomy: vault.ErrDecrypt for authentication failures,
// ErrCorrupt for unparseable payloads, ErrUnsupportedVersion for
// versions this build does not read.
func Restore(r io.Reader, key []byte, mode Mode, current []model.Subscription) ([]model.Subscription, error) {
	sealed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("backup: reading: %w", err)
	}

	plaintext, err := vault.Decrypt(key, sealed)
	if err != nil {
		return nil, err
	}

	var p payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if p.Version == "" {
		return nil, fmt.Errorf("%w: missing version tag", ErrCorrupt)
	}
	if !supportedVersions[p.Version] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, p.Version)
	}

	restored := make([]model.Subscription, 0, len(p.Subscriptions))
	for i, bs := range p.Subscriptions {
		sub, err := fromBackupSub(bs)
		if err != nil {
			return nil, fmt.Errorf("%w: subscription %d: %v", ErrCorrupt, i, err)
		}
		restored = append(restored, sub)
	}

	switch mode {
	case Replace:
		return restored, nil
	case Merge:
		existing := make(map[string]bool, len(current))
		merged := append([]model.Subscription(nil), current...)
		for _, s := range current {
			existing[s.ID] = true
		}
		for _, s := range restored {
			if !existing[s.ID] {
				merged = append(merged, s)
			}
		}
		return merged, nil
	default:
		return nil, fmt.Errorf("backup: unknown restore mode %d", mode)
	}
}
