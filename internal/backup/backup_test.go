package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/vault"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := vault.LoadOrCreateKey(filepath.Join(t.TempDir(), "store.key"))
	if err != nil {
		t.Fatalf("LoadOrCreateKey: %v", err)
	}
	return key
}

func sampleSubs(t *testing.T) []model.Subscription {
	t.Helper()
	trialEnd := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return []model.Subscription{
		{
			ID:              "s1",
			Name:            "Streamly",
			Cost:            decimal.RequireFromString("12.99"),
			Currency:        "USD",
			Period:          model.PeriodMonthly,
			NextBillingDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Status:          model.StatusActive,
			NotifyEnabled:   true,
			NotifyLeadDays:  3,
			Tags:            []string{"video"},
		},
		{
			ID:           "s2",
			Name:         "Musely",
			Cost:         decimal.RequireFromString("99"),
			Currency:     "EUR",
			Period:       model.PeriodAnnually,
			Status:       model.StatusTrial,
			TrialEndDate: &trialEnd,
		},
	}
}

func TestBackupRoundTrip(t *testing.T) {
	key := testKey(t)
	subs := sampleSubs(t)

	var buf bytes.Buffer
	if err := Create(&buf, subs, key); err != nil {
		t.Fatalf("Create: %v", err)
	}

	restored, err := Restore(&buf, key, Replace, nil)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("restored %d subscriptions, want 2", len(restored))
	}
	if !restored[0].Cost.Equal(subs[0].Cost) {
		t.Fatalf("cost = %s, want %s", restored[0].Cost, subs[0].Cost)
	}
	if !restored[0].NextBillingDate.Equal(subs[0].NextBillingDate) {
		t.Fatalf("next billing = %v, want %v", restored[0].NextBillingDate, subs[0].NextBillingDate)
	}
	if restored[1].TrialEndDate == nil || !restored[1].TrialEndDate.Equal(*subs[1].TrialEndDate) {
		t.Fatal("trial end date lost in round trip")
	}
}

func TestBackupStringEncodings(t *testing.T) {
	key := testKey(t)
	var buf bytes.Buffer
	if err := Create(&buf, sampleSubs(t), key); err != nil {
		t.Fatalf("Create: %v", err)
	}

	plaintext, err := vault.Decrypt(key, buf.Bytes())
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	var raw struct {
		Version       string `json:"version"`
		CreatedAt     string `json:"created_at"`
		Subscriptions []struct {
			Cost            string `json:"cost"`
			NextBillingDate string `json:"next_billing_date"`
		} `json:"subscriptions"`
	}
	if err := json.Unmarshal(plaintext, &raw); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if raw.Version != FormatVersion {
		t.Fatalf("version = %q, want %q", raw.Version, FormatVersion)
	}
	if _, err := time.Parse(time.RFC3339, raw.CreatedAt); err != nil {
		t.Fatalf("created_at %q is not ISO-8601: %v", raw.CreatedAt, err)
	}
	if raw.Subscriptions[0].Cost != "12.99" {
		t.Fatalf("cost serialized as %q, want decimal string", raw.Subscriptions[0].Cost)
	}
	if _, err := time.Parse(time.RFC3339, raw.Subscriptions[0].NextBillingDate); err != nil {
		t.Fatalf("next_billing_date is not ISO-8601: %v", err)
	}
}

func TestRestoreMerge(t *testing.T) {
	key := testKey(t)
	subs := sampleSubs(t)

	var buf bytes.Buffer
	if err := Create(&buf, subs, key); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// s1 already exists locally with a newer name; merge keeps it.
	local := []model.Subscription{{
		ID:     "s1",
		Name:   "Streamly Premium",
		Cost:   decimal.RequireFromString("15.99"),
		Period: model.PeriodMonthly,
		Status: model.StatusActive,
	}}

	merged, err := Restore(&buf, key, Merge, local)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged %d subscriptions, want 2", len(merged))
	}
	if merged[0].Name != "Streamly Premium" {
		t.Fatalf("merge overwrote local record: %q", merged[0].Name)
	}
	if merged[1].ID != "s2" {
		t.Fatalf("merge missed new record, got %q", merged[1].ID)
	}
}

func TestRestoreUnsupportedVersion(t *testing.T) {
	key := testKey(t)

	plaintext, err := json.Marshal(payload{Version: "99", CreatedAt: time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	sealed, err := vault.Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	_, err = Restore(bytes.NewReader(sealed), key, Replace, nil)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
	if errors.Is(err, ErrCorrupt) {
		t.Fatal("unsupported version must not read as a corrupt file")
	}
}

func TestRestoreCorruptPayload(t *testing.T) {
	key := testKey(t)

	sealed, err := vault.Encrypt(key, []byte("this is not json"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Restore(bytes.NewReader(sealed), key, Replace, nil); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestRestoreWrongKeyFailsClosed(t *testing.T) {
	key := testKey(t)
	var buf bytes.Buffer
	if err := Create(&buf, sampleSubs(t), key); err != nil {
		t.Fatalf("Create: %v", err)
	}

	otherKey := testKey(t)
	_, err := Restore(&buf, otherKey, Replace, nil)
	if !errors.Is(err, vault.ErrDecrypt) {
		t.Fatalf("err = %v, want vault.ErrDecrypt", err)
	}
}
