package store

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EntityKind names one level of the region → producer → wine hierarchy.
type EntityKind string

const (
	EntityRegion   EntityKind = "region"
	EntityProducer EntityKind = "producer"
	EntityWine     EntityKind = "wine"
)

// EntityOrder is the fixed resolution sequence.
var EntityOrder = []EntityKind{EntityRegion, EntityProducer, EntityWine}

// Candidate is one catalog record matched against a free-text name.
type Candidate struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Detail string    `json:"detail,omitempty"`
	Score  float64   `json:"score"`
	Exact  bool      `json:"exact"`
}

// EntityResolution tracks the candidates and the user's selection for
// one entity kind.
type EntityResolution struct {
	Kind       EntityKind  `json:"kind"`
	Query      string      `json:"query"`
	Candidates []Candidate `json:"candidates,omitempty"`
	SelectedID *uuid.UUID  `json:"selected_id,omitempty"`
	CreateNew  bool        `json:"create_new"`
	Resolved   bool        `json:"resolved"`
}

// DuplicateInfo is the outcome of the duplicate check on add_to_cellar.
type DuplicateInfo struct {
	ExistingWineID      uuid.UUID `json:"existing_wine_id"`
	ExistingBottleCount int       `json:"existing_bottle_count"`
}

// BottleDetails are the bottle-level fields collected before the write.
type BottleDetails struct {
	Size          string     `json:"size,omitempty"`
	Location      string     `json:"location,omitempty"`
	PurchasePrice string     `json:"purchase_price,omitempty"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	Quantity      int        `json:"quantity,omitempty"`
}

// SubmitPayload is the exact payload of the final cellar write. Kept so
// a failed submission retries with the same payload, never re-derived.
type SubmitPayload struct {
	RegionID       *uuid.UUID            `json:"region_id,omitempty"`
	ProducerID     *uuid.UUID            `json:"producer_id,omitempty"`
	WineID         *uuid.UUID            `json:"wine_id,omitempty"`
	Result         *IdentificationResult `json:"result"`
	Bottle         BottleDetails         `json:"bottle"`
	WithEnrichment bool                  `json:"with_enrichment"`
}

// AddFlowStore tracks entity resolution and bottle collection between
// add_to_cellar and the final write. Created on add_to_cellar, destroyed
// on success, cancel, or start_over.
type AddFlowStore struct {
	active      bool
	currentIdx  int
	resolutions map[EntityKind]*EntityResolution
	duplicate   *DuplicateInfo
	bottle      BottleDetails
	payload     *SubmitPayload
	submitting  bool
}

func NewAddFlowStore() *AddFlowStore {
	return &AddFlowStore{resolutions: make(map[EntityKind]*EntityResolution)}
}

// Begin creates a fresh flow.
func (s *AddFlowStore) Begin() {
	s.active = true
	s.currentIdx = 0
	s.resolutions = make(map[EntityKind]*EntityResolution)
	s.duplicate = nil
	s.bottle = BottleDetails{Quantity: 1}
	s.payload = nil
	s.submitting = false
}

// Destroy tears the flow down.
func (s *AddFlowStore) Destroy() {
	s.active = false
	s.currentIdx = 0
	s.resolutions = make(map[EntityKind]*EntityResolution)
	s.duplicate = nil
	s.bottle = BottleDetails{}
	s.payload = nil
	s.submitting = false
}

func (s *AddFlowStore) Active() bool { return s.active }

// CurrentEntity returns the entity kind being resolved, or false once
// all three are resolved.
func (s *AddFlowStore) CurrentEntity() (EntityKind, bool) {
	if !s.active || s.currentIdx >= len(EntityOrder) {
		return "", false
	}
	return EntityOrder[s.currentIdx], true
}

// Advance moves to the next entity kind, returning false when the
// sequence is exhausted.
func (s *AddFlowStore) Advance() bool {
	s.currentIdx++
	return s.currentIdx < len(EntityOrder)
}

// SetCandidates records the backend's matches for the current kind.
func (s *AddFlowStore) SetCandidates(kind EntityKind, query string, cands []Candidate) {
	s.resolutions[kind] = &EntityResolution{
		Kind:       kind,
		Query:      query,
		Candidates: append([]Candidate(nil), cands...),
	}
}

// Select resolves the current kind to an existing catalog record.
func (s *AddFlowStore) Select(kind EntityKind, id uuid.UUID) {
	res := s.resolution(kind)
	res.SelectedID = &id
	res.CreateNew = false
	res.Resolved = true
}

// MarkCreateNew resolves the current kind to a to-be-created record.
func (s *AddFlowStore) MarkCreateNew(kind EntityKind) {
	res := s.resolution(kind)
	res.SelectedID = nil
	res.CreateNew = true
	res.Resolved = true
}

func (s *AddFlowStore) resolution(kind EntityKind) *EntityResolution {
	res, ok := s.resolutions[kind]
	if !ok {
		res = &EntityResolution{Kind: kind}
		s.resolutions[kind] = res
	}
	return res
}

// Resolution returns the resolution state for a kind, or nil.
func (s *AddFlowStore) Resolution(kind EntityKind) *EntityResolution {
	return s.resolutions[kind]
}

func (s *AddFlowStore) SetDuplicate(d *DuplicateInfo) { s.duplicate = d }
func (s *AddFlowStore) Duplicate() *DuplicateInfo     { return s.duplicate }

func (s *AddFlowStore) Bottle() BottleDetails { return s.bottle }

func (s *AddFlowStore) SetBottleField(field, value string) {
	switch field {
	case "size":
		s.bottle.Size = value
	case "location":
		s.bottle.Location = value
	case "purchase_price":
		s.bottle.PurchasePrice = value
	case "purchase_date":
		if t, err := time.Parse("2006-01-02", value); err == nil {
			s.bottle.PurchaseDate = &t
		}
	case "quantity":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			s.bottle.Quantity = n
		}
	}
}

func (s *AddFlowStore) SetBottle(b BottleDetails) { s.bottle = b }

func (s *AddFlowStore) SetSubmitPayload(p *SubmitPayload) { s.payload = p }
func (s *AddFlowStore) SubmitPayload() *SubmitPayload     { return s.payload }

// Submitting marks the final write in flight. Never persisted.
func (s *AddFlowStore) Submitting() bool     { return s.submitting }
func (s *AddFlowStore) SetSubmitting(v bool) { s.submitting = v }
