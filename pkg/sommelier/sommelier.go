// Package sommelier defines the opaque LLM capability the agent core
// consumes: streaming text/image identification with escalation,
// streaming enrichment with cache-mismatch signalling, and an on-demand
// disambiguation explainer. Implementations live in subpackages.
package sommelier

import (
	"context"
	"errors"
)

// Typed failure reasons. The agent error taxonomy classifies these.
var (
	ErrTimeout         = errors.New("sommelier: request timed out")
	ErrRateLimited     = errors.New("sommelier: rate limited")
	ErrQuotaExceeded   = errors.New("sommelier: daily quota exceeded")
	ErrUnreadableImage = errors.New("sommelier: image unreadable")
	ErrUnavailable     = errors.New("sommelier: backend unavailable")
)

// Enrichment payload provenance values.
const (
	SourceCache     = "cache"
	SourceWebSearch = "web_search"
	SourceInference = "inference"
)

// IdentifyRequest asks for a wine identification from text and/or image.
type IdentifyRequest struct {
	RequestID    string            // caller-assigned, used for Abandon
	Text         string
	ImageRef     string
	Augmentation []string          // accumulated supplementary evidence
	Tier         int               // escalation tier; 0 is the cheap pass
	Locked       map[string]string // user-corrected field values to respect
}

// FieldPartial is one incrementally streamed identification field.
type FieldPartial struct {
	Field string
	Value string
}

// IdentifyResult is the final identification payload.
type IdentifyResult struct {
	Producer       string
	WineName       string
	Vintage        string
	Region         string
	Country        string
	WineType       string
	GrapeVarieties []string
	Confidence     float64 // 0..100
}

// IdentifyEvent is one element of an identification stream. Exactly one
// pointer is non-nil. A Final event supersedes all partials; the channel
// closes after Final or Err.
type IdentifyEvent struct {
	Partial *FieldPartial
	Final   *IdentifyResult
	Err     error
}

// EnrichRequest asks for reference data on a confirmed wine.
type EnrichRequest struct {
	RequestID string
	LookupKey string
	Producer  string
	WineName  string
	Vintage   string
	Fresh     bool // bypass the cache
}

// SectionPartial is one incrementally streamed enrichment section.
type SectionPartial struct {
	Section string
	Value   string
}

// EnrichResult is the final enrichment payload.
type EnrichResult struct {
	LookupKey        string
	Overview         string
	GrapeComposition map[string]float64
	StyleProfile     string
	CriticScores     []CriticScore
	DrinkWindow      *DrinkWindow
	TastingNotes     string
	PairingNotes     string
	Source           string // cache | web_search | inference
}

type CriticScore struct {
	Critic string
	Score  int
	Scale  int
}

type DrinkWindow struct {
	From int
	To   int
}

// CacheMismatch reports a cache hit for a different vintage/name than
// requested. The stream pauses (channel closes) after emitting it.
type CacheMismatch struct {
	RequestedKey string
	CachedKey    string
	Cached       *EnrichResult
}

// EnrichEvent is one element of an enrichment stream.
type EnrichEvent struct {
	Partial  *SectionPartial
	Final    *EnrichResult
	Mismatch *CacheMismatch
	Err      error
}

// Client is the opaque capability contract.
type Client interface {
	// Identify starts a streaming identification. Events arrive in
	// order on the returned channel, which closes after Final or Err.
	Identify(ctx context.Context, req IdentifyRequest) (<-chan IdentifyEvent, error)

	// Enrich starts a streaming enrichment with the same contract.
	Enrich(ctx context.Context, req EnrichRequest) (<-chan EnrichEvent, error)

	// Abandon tells the backend to stop server-side work for a request.
	// Callers fire it out-of-band and never block state transitions on it.
	Abandon(ctx context.Context, requestID string) error

	// ExplainCandidates produces a short disambiguation of similar
	// catalog matches on demand.
	ExplainCandidates(ctx context.Context, entityKind, query string, candidates []string) (string, error)
}
