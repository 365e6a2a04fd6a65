package store

import (
	"fmt"
	"strings"
)

// Enrichment provenance tags.
const (
	SourceCache     = "cache"
	SourceWebSearch = "web_search"
	SourceInference = "inference"
)

// CriticScore is one reviewer's rating.
type CriticScore struct {
	Critic string `json:"critic"`
	Score  int    `json:"score"`
	Scale  int    `json:"scale"`
}

// DrinkWindow is the suggested drinking range in years.
type DrinkWindow struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// EnrichmentResult is the reference-data payload for a confirmed wine,
// keyed by the normalized producer|name|vintage lookup string.
type EnrichmentResult struct {
	LookupKey        string             `json:"lookup_key"`
	Overview         string             `json:"overview,omitempty"`
	GrapeComposition map[string]float64 `json:"grape_composition,omitempty"`
	StyleProfile     string             `json:"style_profile,omitempty"`
	CriticScores     []CriticScore      `json:"critic_scores,omitempty"`
	DrinkWindow      *DrinkWindow       `json:"drink_window,omitempty"`
	TastingNotes     string             `json:"tasting_notes,omitempty"`
	PairingNotes     string             `json:"pairing_notes,omitempty"`
	Source           string             `json:"source"`
}

// Clone returns a deep copy.
func (e *EnrichmentResult) Clone() *EnrichmentResult {
	if e == nil {
		return nil
	}
	cp := *e
	if e.GrapeComposition != nil {
		cp.GrapeComposition = make(map[string]float64, len(e.GrapeComposition))
		for k, v := range e.GrapeComposition {
			cp.GrapeComposition[k] = v
		}
	}
	cp.CriticScores = append([]CriticScore(nil), e.CriticScores...)
	if e.DrinkWindow != nil {
		dw := *e.DrinkWindow
		cp.DrinkWindow = &dw
	}
	return &cp
}

// LookupKey normalizes (producer, name, vintage) into the cache key.
func LookupKey(producer, name, vintage string) string {
	norm := func(s string) string {
		return strings.ToLower(strings.Join(strings.Fields(s), " "))
	}
	return fmt.Sprintf("%s|%s|%s", norm(producer), norm(name), norm(vintage))
}

// CacheMismatch signals a cache hit for a different vintage or name than
// requested; the flow pauses until the user accepts it or forces a fresh
// fetch.
type CacheMismatch struct {
	RequestedKey string            `json:"requested_key"`
	CachedKey    string            `json:"cached_key"`
	Cached       *EnrichmentResult `json:"cached"`
}

// EnrichmentStore holds the last enrichment payload, its provenance and
// streaming state. Produced by the enrichment handlers, read-only for
// everyone else.
type EnrichmentStore struct {
	result     *EnrichmentResult
	mismatch   *CacheMismatch
	generation uint64
	streaming  bool
}

func NewEnrichmentStore() *EnrichmentStore {
	return &EnrichmentStore{}
}

// BeginRequest starts a streaming enrichment attempt.
func (s *EnrichmentStore) BeginRequest(lookupKey string) uint64 {
	s.generation++
	s.streaming = true
	s.result = &EnrichmentResult{LookupKey: lookupKey}
	return s.generation
}

func (s *EnrichmentStore) Generation() uint64 { return s.generation }
func (s *EnrichmentStore) Streaming() bool    { return s.streaming }

// ApplyPartial merges one streamed section value under generation check.
func (s *EnrichmentStore) ApplyPartial(gen uint64, section, value string) bool {
	if gen != s.generation || !s.streaming || s.result == nil {
		return false
	}
	switch section {
	case "overview":
		s.result.Overview = value
	case "style_profile":
		s.result.StyleProfile = value
	case "tasting_notes":
		s.result.TastingNotes = value
	case "pairing_notes":
		s.result.PairingNotes = value
	}
	return true
}

// Complete installs the final payload, superseding all partials.
func (s *EnrichmentStore) Complete(gen uint64, final *EnrichmentResult) bool {
	if gen != s.generation {
		return false
	}
	s.result = final.Clone()
	s.streaming = false
	return true
}

// CancelRequest abandons the in-flight stream.
func (s *EnrichmentStore) CancelRequest() {
	s.generation++
	s.streaming = false
}

func (s *EnrichmentStore) Result() *EnrichmentResult {
	return s.result.Clone()
}

func (s *EnrichmentStore) HasResult() bool {
	return s.result != nil && s.result.Overview != ""
}

func (s *EnrichmentStore) SetMismatch(m *CacheMismatch) { s.mismatch = m }
func (s *EnrichmentStore) Mismatch() *CacheMismatch     { return s.mismatch }
func (s *EnrichmentStore) ClearMismatch()               { s.mismatch = nil }

// Reset clears everything; used by start_over.
func (s *EnrichmentStore) Reset() {
	s.result = nil
	s.mismatch = nil
	s.generation++
	s.streaming = false
}
