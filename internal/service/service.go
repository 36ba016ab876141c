// Package service implements the domain operations over the document
// store: subscription, category, budget, and preferences management.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/subtrack-cli/subtrack/internal/store"
)

// ErrNotFound is returned for missing ids when strict mode is on.
var ErrNotFound = errors.New("service: not found")

// ErrValidation wraps all synchronous input validation failures.
var ErrValidation = errors.New("service: invalid input")

// Options tunes service behavior.
type Options struct {
	// StrictNotFound makes update/delete of an absent id an error.
	// Off by default: the historical behavior is a silent no-op.
	StrictNotFound bool
}

// Service executes domain operations against a single store.
type Service struct {
	store *store.Store
	opts  Options
	now   func() time.Time
}

// New returns a service bound to the given store.
func New(st *store.Store, opts Options) *Service {
	return &Service{store: st, opts: opts, now: time.Now}
}

// Snapshot returns the current committed document.
func (s *Service) Snapshot() store.Document {
	return s.store.Read()
}

// Watch subscribes to committed snapshots.
func (s *Service) Watch() (<-chan store.Document, func()) {
	return s.store.Watch()
}

func newID() string {
	return uuid.NewString()
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return validationErr("blank id")
	}
	return nil
}

// notFound resolves the configured absent-id behavior: nil (no-op
// success) in idempotent mode, ErrNotFound in strict mode.
func (s *Service) notFound(kind, id string) error {
	if s.opts.StrictNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}
