package middleware

import (
	"context"
	"sync"
	"time"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/store"
)

// DefaultRetryWindow is how long a recorded action stays retryable.
const DefaultRetryWindow = 5 * time.Minute

// retryable is the fixed whitelist of action types worth re-dispatching.
var retryable = map[action.Type]bool{
	action.TypeIdentifyText:      true,
	action.TypeIdentifyImage:     true,
	action.TypeReidentify:        true,
	action.TypeEscalate:          true,
	action.TypeSearchAnyway:      true,
	action.TypeEnrich:            true,
	action.TypeRefreshEnrichment: true,
	action.TypeSubmitWine:        true,
}

type pendingRetry struct {
	action action.Action
	at     time.Time
}

// RetryTracker remembers the most recent retryable action per session
// for a bounded window. It owns this state exclusively, so the same
// reset path that clears a session clears its pending retry too.
type RetryTracker struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]pendingRetry
	now     func() time.Time
}

func NewRetryTracker(window time.Duration) *RetryTracker {
	if window <= 0 {
		window = DefaultRetryWindow
	}
	return &RetryTracker{
		window:  window,
		pending: make(map[string]pendingRetry),
		now:     time.Now,
	}
}

// Middleware records retryable actions after the wrapped handler ran.
func (t *RetryTracker) Middleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, s *store.Session, a action.Action) error {
			if retryable[a.Type] {
				t.mu.Lock()
				t.pending[s.ID] = pendingRetry{action: a, at: t.now()}
				t.mu.Unlock()
			}
			return next(ctx, s, a)
		}
	}
}

// Take returns the most recent recorded action for a session if it is
// younger than the window. Expired entries are dropped.
func (t *RetryTracker) Take(sessionID string) (action.Action, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.pending[sessionID]
	if !ok {
		return action.Action{}, false
	}
	if t.now().Sub(p.at) > t.window {
		delete(t.pending, sessionID)
		return action.Action{}, false
	}
	return p.action, true
}

// Clear drops the pending retry for a session. Called on start_over and
// session teardown.
func (t *RetryTracker) Clear(sessionID string) {
	t.mu.Lock()
	delete(t.pending, sessionID)
	t.mu.Unlock()
}
