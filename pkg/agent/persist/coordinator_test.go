package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

// rejectingStore refuses the first n writes with ErrQuotaExceeded and
// records every attempted blob.
type rejectingStore struct {
	mu         sync.Mutex
	rejections int
	attempts   [][]byte
	saved      []byte
}

func (r *rejectingStore) Save(_ context.Context, _ string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, data)
	if len(r.attempts) <= r.rejections {
		return ErrQuotaExceeded
	}
	r.saved = data
	return nil
}

func (r *rejectingStore) Load(_ context.Context, _ string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		return nil, ErrNotFound
	}
	return r.saved, nil
}

func (r *rejectingStore) Delete(_ context.Context, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = nil
	return nil
}

func (r *rejectingStore) savedBlob() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved
}

func sessionWithHistory(n int) *store.Session {
	s := store.NewSession(uuid.New(), registry.PersonalitySommelier, 0, nil)
	for i := 0; i < n; i++ {
		s.Conversation.Append(store.Message{
			Role:     store.RoleUser,
			Category: store.CategoryImage,
			Text:     "label photo",
			ImageRef: "labels/shot.jpg",
		})
	}
	return s
}

func TestFlushShrinksBeforeGivingUp(t *testing.T) {
	backend := &rejectingStore{rejections: 2}
	c := NewCoordinator(backend, time.Second, nil)
	s := sessionWithHistory(8)

	c.Flush(s)

	if len(backend.attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(backend.attempts))
	}
	if backend.saved == nil {
		t.Fatal("third attempt did not save")
	}

	var snap store.Snapshot
	if err := json.Unmarshal(backend.saved, &snap); err != nil {
		t.Fatalf("unmarshal saved blob: %v", err)
	}
	for _, m := range snap.Messages {
		if m.ImageRef != "" {
			t.Error("saved blob still carries image refs")
		}
	}
	if len(snap.Messages) != 4 {
		t.Errorf("saved messages = %d, want halved 4", len(snap.Messages))
	}
}

func TestFlushStopsOnNonQuotaError(t *testing.T) {
	backend := &failingStore{err: errors.New("connection refused")}
	c := NewCoordinator(backend, time.Second, nil)

	c.Flush(sessionWithHistory(2))

	if backend.calls != 1 {
		t.Errorf("calls = %d, want 1: shrinking cannot fix a dead backend", backend.calls)
	}
}

type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) Save(_ context.Context, _ string, _ []byte) error {
	f.calls++
	return f.err
}
func (f *failingStore) Load(_ context.Context, _ string) ([]byte, error) { return nil, ErrNotFound }
func (f *failingStore) Delete(_ context.Context, _ string) error         { return nil }

func TestRestoreRoundTrip(t *testing.T) {
	backend := &rejectingStore{}
	c := NewCoordinator(backend, time.Second, nil)
	s := sessionWithHistory(3)

	c.Flush(s)

	r, err := c.Restore(context.Background(), s.ID, 0)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if r.ID != s.ID {
		t.Errorf("restored id = %s, want %s", r.ID, s.ID)
	}
	if got := len(r.Conversation.Messages()); got != 3 {
		t.Errorf("messages = %d, want 3", got)
	}
}

func TestRestoreNotFound(t *testing.T) {
	c := NewCoordinator(&rejectingStore{}, time.Second, nil)
	if _, err := c.Restore(context.Background(), "missing", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestForgetDropsSnapshotAndTimer(t *testing.T) {
	backend := &rejectingStore{}
	c := NewCoordinator(backend, time.Hour, nil)
	s := sessionWithHistory(1)

	c.MarkDirty(s)
	c.Flush(s)

	if err := c.Forget(context.Background(), s.ID); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, err := c.Restore(context.Background(), s.ID, 0); !errors.Is(err, ErrNotFound) {
		t.Error("snapshot survived Forget")
	}
	c.mu.Lock()
	_, pending := c.timers[s.ID]
	c.mu.Unlock()
	if pending {
		t.Error("debounce timer survived Forget")
	}
}

func TestMarkCriticalWritesPromptly(t *testing.T) {
	backend := &rejectingStore{}
	c := NewCoordinator(backend, time.Hour, nil)
	s := sessionWithHistory(1)

	c.MarkCritical(s)

	deadline := time.Now().Add(2 * time.Second)
	for backend.savedBlob() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if backend.savedBlob() == nil {
		t.Error("critical mark did not write before the debounce window")
	}
}

func TestMemoryStoreQuota(t *testing.T) {
	m := NewMemoryStore(time.Minute, 10)
	if err := m.Save(context.Background(), "s", []byte("small")); err != nil {
		t.Fatalf("small blob refused: %v", err)
	}
	err := m.Save(context.Background(), "s", make([]byte, 64))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}
