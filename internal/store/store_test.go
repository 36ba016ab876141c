package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/vault"
)

func openTestStore(t *testing.T) (*Store, string, []byte) {
	t.Helper()
	dir := t.TempDir()
	key, err := vault.LoadOrCreateKey(filepath.Join(dir, "store.key"))
	if err != nil {
		t.Fatalf("LoadOrCreateKey: %v", err)
	}
	path := filepath.Join(dir, "subtrack.db")
	s, err := Open(path, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path, key
}

func addSub(id, name string) Transform {
	return func(doc Document) (Document, error) {
		doc.Subscriptions = append(doc.Subscriptions, model.Subscription{
			ID:     id,
			Name:   name,
			Cost:   decimal.RequireFromString("9.99"),
			Period: model.PeriodMonthly,
			Status: model.StatusActive,
		})
		return doc, nil
	}
}

func TestUpdatePersistsAcrossOpen(t *testing.T) {
	s, path, key := openTestStore(t)

	if _, err := s.Update(addSub("s1", "Streamly")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reopened, err := Open(path, key)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	doc := reopened.Read()
	if len(doc.Subscriptions) != 1 || doc.Subscriptions[0].Name != "Streamly" {
		t.Fatalf("reopened document = %+v, want one subscription Streamly", doc.Subscriptions)
	}
	if doc.Revision != 1 {
		t.Fatalf("Revision = %d, want 1", doc.Revision)
	}
	if doc.LastUpdated == 0 {
		t.Fatal("LastUpdated not set on commit")
	}
}

func TestUpdateSerialized(t *testing.T) {
	s, _, _ := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.Update(func(doc Document) (Document, error) {
				doc.Subscriptions = append(doc.Subscriptions, model.Subscription{
					ID: string(rune('a' + n)),
				})
				return doc, nil
			})
			if err != nil {
				t.Errorf("concurrent Update: %v", err)
			}
		}(i)
	}
	wg.Wait()

	doc := s.Read()
	if len(doc.Subscriptions) != 10 {
		t.Fatalf("after 10 concurrent updates: %d subscriptions, want 10", len(doc.Subscriptions))
	}
	if doc.Revision != 10 {
		t.Fatalf("Revision = %d, want 10", doc.Revision)
	}
}

func TestTransformErrorAbortsCommit(t *testing.T) {
	s, _, _ := openTestStore(t)
	boom := errors.New("boom")

	_, err := s.Update(func(doc Document) (Document, error) {
		return Document{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the transform error", err)
	}
	if rev := s.Read().Revision; rev != 0 {
		t.Fatalf("Revision after failed transform = %d, want 0", rev)
	}
}

func TestWatchDeliversCommittedSnapshots(t *testing.T) {
	s, _, _ := openTestStore(t)
	ch, cancel := s.Watch()
	defer cancel()

	if _, err := s.Update(addSub("s1", "Streamly")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	select {
	case snap := <-ch:
		if len(snap.Subscriptions) != 1 {
			t.Fatalf("watched snapshot has %d subscriptions, want 1", len(snap.Subscriptions))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered after commit")
	}
}

func TestConflictRerunsTransform(t *testing.T) {
	_, path, key := openTestStore(t)

	a, err := Open(path, key)
	if err != nil {
		t.Fatalf("open writer a: %v", err)
	}
	defer a.Close()
	b, err := Open(path, key)
	if err != nil {
		t.Fatalf("open writer b: %v", err)
	}
	defer b.Close()

	if _, err := a.Update(addSub("s1", "Streamly")); err != nil {
		t.Fatalf("writer a Update: %v", err)
	}

	// Writer b still holds the stale revision; its transform must be
	// re-applied against writer a's committed state.
	runs := 0
	doc, err := b.Update(func(doc Document) (Document, error) {
		runs++
		doc.Subscriptions = append(doc.Subscriptions, model.Subscription{ID: "s2"})
		return doc, nil
	})
	if err != nil {
		t.Fatalf("writer b Update: %v", err)
	}
	if runs < 2 {
		t.Fatalf("transform ran %d times, want a re-run after the conflict", runs)
	}
	if len(doc.Subscriptions) != 2 {
		t.Fatalf("merged document has %d subscriptions, want 2", len(doc.Subscriptions))
	}
}

func TestReadReturnsIsolatedCopy(t *testing.T) {
	s, _, _ := openTestStore(t)
	if _, err := s.Update(addSub("s1", "Streamly")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	doc := s.Read()
	doc.Subscriptions[0].Name = "mutated"

	if got := s.Read().Subscriptions[0].Name; got != "Streamly" {
		t.Fatalf("store state leaked through Read copy: name = %q", got)
	}
}

func TestOpenRejectsUnknownSchema(t *testing.T) {
	dir := t.TempDir()
	key, err := vault.LoadOrCreateKey(filepath.Join(dir, "store.key"))
	if err != nil {
		t.Fatalf("LoadOrCreateKey: %v", err)
	}

	// A validly-encrypted document from a future build: decrypts fine,
	// carries a schema this build does not read.
	plaintext, err := json.Marshal(Document{Schema: SchemaVersion + 1})
	if err != nil {
		t.Fatalf("encoding document: %v", err)
	}
	sealed, err := encryptDocument(key, plaintext)
	if err != nil {
		t.Fatalf("encryptDocument: %v", err)
	}
	path := filepath.Join(dir, "subtrack.db")
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	_, err = Open(path, key)
	if !errors.Is(err, ErrUnsupportedSchema) {
		t.Fatalf("Open = %v, want ErrUnsupportedSchema", err)
	}
}

func TestOpenRejectsForeignFile(t *testing.T) {
	dir := t.TempDir()
	key, err := vault.LoadOrCreateKey(filepath.Join(dir, "store.key"))
	if err != nil {
		t.Fatalf("LoadOrCreateKey: %v", err)
	}
	path := filepath.Join(dir, "subtrack.db")
	if err := os.WriteFile(path, []byte("not a document"), 0o600); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	if _, err := Open(path, key); err == nil {
		t.Fatal("Open accepted a non-document file")
	}
}
