// Package store persists the encrypted subscription document and
// serializes all mutations against it.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrUnsupportedSchema is returned when the on-disk document carries a
// schema version this build does not understand.
var ErrUnsupportedSchema = errors.New("store: unsupported document schema")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Transform mutates a document copy inside Update. It must be pure: on
// a revision conflict with another writer it is re-invoked against the
// fresh document.
type Transform func(Document) (Document, error)

// maxRetries bounds transform re-runs on revision conflicts.
const maxRetries = 3

// Store is the single-document encrypted store. All updates are
// serialized; readers always observe a committed snapshot.
type Store struct {
	path string
	key  []byte

	mu     sync.Mutex
	doc    Document
	closed bool

	watchMu sync.Mutex
	nextSub int
	watches map[int]chan Document
}

// Open loads (or initializes) the document at path, decrypting it with
// key. A missing file yields a fresh default document; it is not
// written until the first Update.
func Open(path string, key []byte) (*Store, error) {
	s := &Store{
		path:    path,
		key:     key,
		watches: make(map[int]chan Document),
	}

	doc, err := readDocument(path, key)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		doc = NewDocument(time.Now())
	}
	s.doc = doc
	return s, nil
}

// Read returns the current committed snapshot.
func (s *Store) Read() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Update applies transform atomically and persists the result. The
// transform runs against a copy; if the on-disk revision moved under us
// (another process wrote), the document is reloaded and the transform
// re-applied. Returns the committed snapshot.
func (s *Store) Update(transform Transform) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Document{}, ErrClosed
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		next, err := transform(s.doc.Clone())
		if err != nil {
			return Document{}, err
		}

		next.Schema = SchemaVersion
		next.Revision = s.doc.Revision + 1
		next.LastUpdated = time.Now().Unix()

		if err := s.persist(next); err != nil {
			if errors.Is(err, errRevisionConflict) {
				// Another process committed; pick up its state and retry.
				fresh, readErr := readDocument(s.path, s.key)
				if readErr != nil {
					return Document{}, fmt.Errorf("store: reloading after conflict: %w", readErr)
				}
				s.doc = fresh
				lastErr = err
				continue
			}
			return Document{}, err
		}

		s.doc = next
		snapshot := next.Clone()
		s.notify(snapshot)
		return snapshot, nil
	}

	return Document{}, fmt.Errorf("store: update retries exhausted: %w", lastErr)
}

// Watch returns a channel receiving a snapshot after every committed
// update, plus a cancel function. Slow receivers drop intermediate
// snapshots rather than blocking writers.
func (s *Store) Watch() (<-chan Document, func()) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Document, 1)
	s.watches[id] = ch

	cancel := func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if existing, ok := s.watches[id]; ok {
			delete(s.watches, id)
			close(existing)
		}
	}
	return ch, cancel
}

func (s *Store) notify(snapshot Document) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watches {
		select {
		case ch <- snapshot:
		default:
			// Replace the stale pending snapshot with the newest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// Close releases watchers. Pending updates complete first.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for id, ch := range s.watches {
		delete(s.watches, id)
		close(ch)
	}
	return nil
}

var errRevisionConflict = errors.New("store: revision conflict")

// persist writes next to disk, failing with errRevisionConflict if the
// on-disk revision is not the one this update was computed from.
func (s *Store) persist(next Document) error {
	onDisk, err := readDocument(s.path, s.key)
	switch {
	case err == nil:
		if onDisk.Revision != next.Revision-1 {
			return errRevisionConflict
		}
	case os.IsNotExist(err):
		// First write.
	default:
		return err
	}

	plaintext, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("store: encoding document: %w", err)
	}

	sealed, err := encryptDocument(s.key, plaintext)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("store: creating data dir: %w", err)
	}

	// Write-then-rename so a crash never leaves a torn document.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("store: writing document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: committing document: %w", err)
	}
	return nil
}

func readDocument(path string, key []byte) (Document, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}

	plaintext, err := decryptDocument(key, sealed)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return Document{}, fmt.Errorf("store: decoding document: %w", err)
	}
	if doc.Schema != SchemaVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, doc.Schema)
	}
	return doc, nil
}
