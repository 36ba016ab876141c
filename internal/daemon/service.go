// Package daemon provides the long-running reminder delivery service.
package daemon

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/notify"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	EventsBuffer int
}

// Event is emitted whenever a reminder fires.
type Event struct {
	ID           int64              `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	Notification model.Notification `json:"notification"`
}

// Status summarizes the daemon runtime state.
type Status struct {
	StartedAt       time.Time
	LastPollAt      time.Time
	PollCount       int64
	FiredCount      int64
	PendingQueued   int
	LastError       string
	SubscriberCount int
}

// Service polls the durable queue and hands due reminders to the
// presenter. While it runs, exact in-process timers are also available,
// so the capability probe should report true for its lifetime.
type Service struct {
	cfg       Config
	queue     *notify.Queue
	presenter notify.Presenter

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	firedCount  int64
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service delivering from queue to presenter.
func New(cfg Config, queue *notify.Queue, presenter notify.Presenter) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}

	return &Service{
		cfg:       cfg,
		queue:     queue,
		presenter: presenter,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run polls until ctx is canceled. The first poll happens immediately
// so reminders that came due while the daemon was down fire on startup.
func (s *Service) Run(ctx context.Context) error {
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.pollOnce()
		}
	}
}

func (s *Service) pollOnce() {
	now := time.Now()
	due, err := s.queue.PopDue(now)

	s.mu.Lock()
	s.lastPollAt = now
	s.pollCount++
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		log.Printf("subtrack daemon poll error: %v", err)
		return
	}
	s.lastError = ""
	s.firedCount += int64(len(due))
	s.mu.Unlock()

	for _, n := range due {
		s.presenter.Present(n)
		s.publishEvent(n, now)
	}
}

func (s *Service) publishEvent(n model.Notification, at time.Time) {
	s.mu.Lock()
	s.nextEventID++
	ev := Event{ID: s.nextEventID, Timestamp: at, Notification: n}

	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	subs := make([]chan Event, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; it can catch up from Events.
		}
	}
}

// Subscribe returns a channel of fired-reminder events and a cancel
// function.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, 16)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Events returns the retained event ring, oldest first.
func (s *Service) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}

// Status reports the current runtime state.
func (s *Service) Status() Status {
	pending, err := s.queue.Pending()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollCount:       s.pollCount,
		FiredCount:      s.firedCount,
		PendingQueued:   pending,
		LastError:       s.lastError,
		SubscriberCount: len(s.subs),
	}
	if err != nil && st.LastError == "" {
		st.LastError = err.Error()
	}
	return st
}
