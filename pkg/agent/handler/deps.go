// Package handler implements the per-family business logic behind every
// dispatched action: conversation, identification, enrichment, add-wine
// and forms. Each family mutates only its own store; cross-store reads
// are free, cross-store writes are not.
package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/middleware"
	"wine-cellar-be/pkg/agent/store"
	"wine-cellar-be/pkg/sommelier"
)

// abandonTimeout bounds the fire-and-forget backend abandon call.
const abandonTimeout = 5 * time.Second

// DuplicateMatch is the outcome of a duplicate-wine check.
type DuplicateMatch struct {
	WineID      uuid.UUID
	BottleCount int
}

// Cellar is the backend surface the agent writes through. Implemented by
// the cellar service on top of the repository layer.
type Cellar interface {
	CheckDuplicate(ctx context.Context, userID uuid.UUID, producer, name, vintage string) (*DuplicateMatch, error)
	SearchEntities(ctx context.Context, userID uuid.UUID, kind store.EntityKind, name string) ([]store.Candidate, error)
	CreateWineWithBottle(ctx context.Context, userID uuid.UUID, payload *store.SubmitPayload) (uuid.UUID, error)
	AddBottle(ctx context.Context, userID, wineID uuid.UUID, bottle store.BottleDetails) (int, error)
}

// Notifier pushes agent events to the UI stream (websocket hub).
type Notifier interface {
	Notify(sessionID string, event string, data map[string]interface{})
}

// CacheWarmer accepts freshly fetched enrichment payloads for async
// cache warming. Must not block.
type CacheWarmer interface {
	WarmEnrichment(lookupKey string, res *sommelier.EnrichResult)
}

// Persister schedules session snapshots. MarkCritical bypasses the
// debounce for the fields whose loss would break retry or
// mobile-backgrounding recovery.
type Persister interface {
	MarkDirty(s *store.Session)
	MarkCritical(s *store.Session)
}

// Config carries the agent policy constants.
type Config struct {
	ConfidenceThreshold      float64 // high-confidence cutoff, default 0.70
	ImageAutoVerifyThreshold float64 // below this an image result escalates once, default 0.60
}

// Deps bundles what every handler family needs.
type Deps struct {
	Client   sommelier.Client
	Cellar   Cellar
	Log      logger.ILogger
	Tracker  *middleware.RetryTracker
	Notifier Notifier
	Persist  Persister
	Warmer   CacheWarmer
	Config   Config

	// dispatch re-enters the middleware chain. It must only be called
	// while the session lock is already held (nested dispatches and
	// stream completion callbacks both satisfy this).
	dispatch middleware.Handler
}

// SetDispatch wires the re-entry point after router construction.
func (d *Deps) SetDispatch(h middleware.Handler) {
	d.dispatch = h
}

// Dispatch re-dispatches an action through the full chain.
func (d *Deps) Dispatch(ctx context.Context, s *store.Session, a action.Action) error {
	return d.dispatch(ctx, s, a)
}

func (d *Deps) notify(s *store.Session, event string, data map[string]interface{}) {
	if d.Notifier != nil {
		d.Notifier.Notify(s.ID, event, data)
	}
}

func (d *Deps) markDirty(s *store.Session) {
	if d.Persist != nil {
		d.Persist.MarkDirty(s)
	}
}

func (d *Deps) markCritical(s *store.Session) {
	if d.Persist != nil {
		d.Persist.MarkCritical(s)
	}
}
