package dto

import "wine-cellar-be/pkg/sommelier"

// WarmEnrichmentCacheMessage is the async cache-warming job published
// after a fresh enrichment stream completes.
type WarmEnrichmentCacheMessage struct {
	LookupKey string                  `json:"lookup_key"`
	Result    *sommelier.EnrichResult `json:"result"`
}
