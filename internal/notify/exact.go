package notify

import (
	"sync"
	"time"

	"github.com/subtrack-cli/subtrack/internal/model"
)

type timerKey struct {
	subID string
	kind  model.NotificationKind
}

// ExactTimers is the precise-wake strategy: one in-process timer per
// (subscription, kind) pair, delivering straight to the presenter at
// the fire time. Only useful while a long-lived process (the daemon) is
// running, which is what the capability probe checks.
type ExactTimers struct {
	presenter Presenter

	mu     sync.Mutex
	timers map[timerKey]*time.Timer
}

// NewExactTimers returns an empty timer registry.
func NewExactTimers(p Presenter) *ExactTimers {
	return &ExactTimers{presenter: p, timers: make(map[timerKey]*time.Timer)}
}

// Schedule arms a timer for the request, replacing any existing timer
// for the same pair.
func (e *ExactTimers) Schedule(req Request) error {
	key := timerKey{subID: req.SubscriptionID, kind: req.Kind}
	payload := model.Notification{
		SubscriptionID:   req.SubscriptionID,
		SubscriptionName: req.SubscriptionName,
		Kind:             req.Kind,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.timers[key]; ok {
		old.Stop()
	}
	e.timers[key] = time.AfterFunc(time.Until(req.FireAt), func() {
		e.mu.Lock()
		delete(e.timers, key)
		e.mu.Unlock()
		e.presenter.Present(payload)
	})
	return nil
}

// Cancel stops and forgets the timer for the pair, if any.
func (e *ExactTimers) Cancel(subscriptionID string, kind model.NotificationKind) error {
	key := timerKey{subID: subscriptionID, kind: kind}

	e.mu.Lock()
	defer e.mu.Unlock()

	if timer, ok := e.timers[key]; ok {
		timer.Stop()
		delete(e.timers, key)
	}
	return nil
}

// Pending returns the number of armed timers.
func (e *ExactTimers) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}
