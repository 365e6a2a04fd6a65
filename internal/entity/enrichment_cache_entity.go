package entity

import (
	"time"

	"github.com/google/uuid"
)

type EnrichmentSource string

const (
	EnrichmentSourceCache     EnrichmentSource = "cache"
	EnrichmentSourceWebSearch EnrichmentSource = "web_search"
	EnrichmentSourceInference EnrichmentSource = "inference"
)

// EnrichmentCacheEntry stores a previously fetched enrichment payload keyed by
// the normalized producer|wine|vintage lookup key, shared across users.
type EnrichmentCacheEntry struct {
	Id        uuid.UUID
	LookupKey string
	Payload   map[string]interface{}
	Source    EnrichmentSource
	FetchedAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
