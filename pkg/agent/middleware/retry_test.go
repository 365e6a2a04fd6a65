package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

func dispatchThrough(t *testing.T, tracker *RetryTracker, s *store.Session, a action.Action) {
	t.Helper()
	handler := tracker.Middleware()(func(ctx context.Context, s *store.Session, a action.Action) error {
		return nil
	})
	if err := handler(context.Background(), s, a); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func TestRetryTrackerRecordsRetryableActions(t *testing.T) {
	tracker := NewRetryTracker(time.Minute)
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)

	dispatchThrough(t, tracker, s, action.Action{
		Type:    action.TypeIdentifyText,
		Payload: action.Payload{Text: "sassicaia 2016"},
	})

	got, ok := tracker.Take(s.ID)
	if !ok {
		t.Fatal("recorded action not returned")
	}
	if got.Type != action.TypeIdentifyText || got.Payload.Text != "sassicaia 2016" {
		t.Errorf("Take = %+v", got)
	}
}

func TestRetryTrackerIgnoresNonRetryable(t *testing.T) {
	tracker := NewRetryTracker(time.Minute)
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)

	dispatchThrough(t, tracker, s, action.Action{Type: action.TypeUserMessage})
	dispatchThrough(t, tracker, s, action.Action{Type: action.TypeStartOver})

	if _, ok := tracker.Take(s.ID); ok {
		t.Error("non-retryable action was recorded")
	}
}

func TestRetryTrackerKeepsMostRecent(t *testing.T) {
	tracker := NewRetryTracker(time.Minute)
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)

	dispatchThrough(t, tracker, s, action.Action{Type: action.TypeIdentifyText, Payload: action.Payload{Text: "first"}})
	dispatchThrough(t, tracker, s, action.Action{Type: action.TypeEscalate})

	got, ok := tracker.Take(s.ID)
	if !ok || got.Type != action.TypeEscalate {
		t.Errorf("Take = %+v, %v, want escalate", got, ok)
	}
}

func TestRetryTrackerWindowExpiry(t *testing.T) {
	tracker := NewRetryTracker(time.Minute)
	now := time.Now()
	tracker.now = func() time.Time { return now }
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)

	dispatchThrough(t, tracker, s, action.Action{Type: action.TypeEnrich})

	now = now.Add(59 * time.Second)
	if _, ok := tracker.Take(s.ID); !ok {
		t.Error("action expired inside the window")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := tracker.Take(s.ID); ok {
		t.Error("action survived past the window")
	}
	// The expired entry is dropped, not just hidden.
	if _, ok := tracker.pending[s.ID]; ok {
		t.Error("expired entry still stored")
	}
}

func TestRetryTrackerClear(t *testing.T) {
	tracker := NewRetryTracker(time.Minute)
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)

	dispatchThrough(t, tracker, s, action.Action{Type: action.TypeSubmitWine})
	tracker.Clear(s.ID)

	if _, ok := tracker.Take(s.ID); ok {
		t.Error("cleared action still returned")
	}
}

func TestRetryTrackerDefaultsWindow(t *testing.T) {
	tracker := NewRetryTracker(0)
	if tracker.window != DefaultRetryWindow {
		t.Errorf("window = %v, want default", tracker.window)
	}
}
