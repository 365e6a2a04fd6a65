package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/registry"
)

// Session aggregates the four domain stores of one conversation. All
// mutation happens under the session mutex: the router holds it for the
// whole synchronous part of a dispatch, and streaming callbacks take it
// per event, so store mutations are atomic relative to other actions.
type Session struct {
	ID          string
	UserID      uuid.UUID
	Personality registry.Personality
	CreatedAt   time.Time

	mu sync.Mutex

	Conversation   *ConversationStore
	Identification *IdentificationStore
	Enrichment     *EnrichmentStore
	AddFlow        *AddFlowStore
}

func NewSession(userID uuid.UUID, personality registry.Personality, messageCap int, log logger.ILogger) *Session {
	if personality == "" {
		personality = registry.PersonalitySommelier
	}
	return &Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		Personality:    personality,
		CreatedAt:      time.Now(),
		Conversation:   NewConversationStore(messageCap, log),
		Identification: NewIdentificationStore(),
		Enrichment:     NewEnrichmentStore(),
		AddFlow:        NewAddFlowStore(),
	}
}

// Do runs fn holding the session mutex.
func (s *Session) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Lock / Unlock expose the mutex for the dispatcher, which needs to hold
// it across several store reads and writes.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }
