package persist

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/store"
)

// DefaultDebounce is how long the coordinator waits for further
// mutations before writing.
const DefaultDebounce = 500 * time.Millisecond

const flushTimeout = 10 * time.Second

// Coordinator owns the write scheduling for all sessions.
type Coordinator struct {
	store    SnapshotStore
	log      logger.ILogger
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewCoordinator(st SnapshotStore, debounce time.Duration, log logger.ILogger) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		store:    st,
		log:      log,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// MarkDirty schedules a debounced write. Safe to call while holding the
// session lock; the snapshot is taken later on the flush goroutine.
func (c *Coordinator) MarkDirty(s *store.Session) {
	c.schedule(s, c.debounce)
}

// MarkCritical schedules an immediate write, skipping the debounce.
func (c *Coordinator) MarkCritical(s *store.Session) {
	c.schedule(s, 0)
}

func (c *Coordinator) schedule(s *store.Session, after time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[s.ID]; ok {
		t.Stop()
	}
	c.timers[s.ID] = time.AfterFunc(after, func() {
		c.mu.Lock()
		delete(c.timers, s.ID)
		c.mu.Unlock()
		c.Flush(s)
	})
}

// Flush snapshots the session and writes it, shrinking in fixed steps
// (drop images, then halve the history) if the backend refuses.
func (c *Coordinator) Flush(s *store.Session) {
	snap := s.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := c.write(ctx, snap); err == nil {
		return
	} else if !errors.Is(err, ErrQuotaExceeded) {
		c.logError(s.ID, "snapshot write failed", err)
		return
	}

	snap.DropImages()
	if err := c.write(ctx, snap); err == nil {
		return
	} else if !errors.Is(err, ErrQuotaExceeded) {
		c.logError(s.ID, "snapshot write failed after dropping images", err)
		return
	}

	snap.TrimMessages()
	if err := c.write(ctx, snap); err != nil {
		c.logError(s.ID, "snapshot write failed after trimming history", err)
	}
}

func (c *Coordinator) write(ctx context.Context, snap *store.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.store.Save(ctx, snap.SessionID, data)
}

// Restore loads and rebuilds a session, or ErrNotFound.
func (c *Coordinator) Restore(ctx context.Context, sessionID string, messageCap int) (*store.Session, error) {
	data, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return store.RestoreSession(&snap, messageCap, c.log), nil
}

// Forget drops any scheduled write and the stored snapshot.
func (c *Coordinator) Forget(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	if t, ok := c.timers[sessionID]; ok {
		t.Stop()
		delete(c.timers, sessionID)
	}
	c.mu.Unlock()
	return c.store.Delete(ctx, sessionID)
}

func (c *Coordinator) logError(sessionID, msg string, err error) {
	if c.log != nil {
		c.log.Error("Persist", msg, map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}
