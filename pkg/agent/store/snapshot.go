package store

import (
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
)

// Snapshot is the serialized session state. Boolean in-progress flags
// (streaming, submitting) are deliberately absent so a restored session
// can never show a permanently-spinning loader.
type Snapshot struct {
	SessionID   string               `json:"session_id"`
	UserID      uuid.UUID            `json:"user_id"`
	Personality registry.Personality `json:"personality"`
	SavedAt     time.Time            `json:"saved_at"`

	Messages []Message   `json:"messages"`
	Phase    phase.Phase `json:"phase"`
	AddStep  AddStep     `json:"add_step"`

	Result       *IdentificationResult `json:"result,omitempty"`
	LockedFields []Field               `json:"locked_fields,omitempty"`
	Tier         int                   `json:"tier,omitempty"`
	Augmentation []string              `json:"augmentation,omitempty"`
	PendingText  string                `json:"pending_text,omitempty"`
	PendingImage string                `json:"pending_image,omitempty"`

	Enrichment *EnrichmentResult `json:"enrichment,omitempty"`

	AddFlowActive bool                             `json:"add_flow_active"`
	AddFlowIdx    int                              `json:"add_flow_idx,omitempty"`
	Resolutions   map[EntityKind]*EntityResolution `json:"resolutions,omitempty"`
	Duplicate     *DuplicateInfo                   `json:"duplicate,omitempty"`
	Bottle        BottleDetails                    `json:"bottle,omitempty"`
	Payload       *SubmitPayload                   `json:"payload,omitempty"`
}

// Snapshot captures the session under its lock. The message log is
// copied by value so later streaming fills do not leak into the blob.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.Conversation.Messages()
	copied := make([]Message, len(msgs))
	for i, m := range msgs {
		copied[i] = *m
	}

	snap := &Snapshot{
		SessionID:   s.ID,
		UserID:      s.UserID,
		Personality: s.Personality,
		SavedAt:     time.Now(),

		Messages: copied,
		Phase:    s.Conversation.Phase(),
		AddStep:  s.Conversation.AddStep(),

		Result:       s.Identification.Result(),
		LockedFields: s.Identification.LockedFields(),
		Tier:         s.Identification.Tier(),
		Augmentation: s.Identification.Augmentation(),
		PendingText:  s.Identification.PendingText(),
		PendingImage: s.Identification.PendingImage(),

		Enrichment: s.Enrichment.Result(),

		AddFlowActive: s.AddFlow.Active(),
		AddFlowIdx:    s.AddFlow.currentIdx,
		Duplicate:     s.AddFlow.Duplicate(),
		Bottle:        s.AddFlow.Bottle(),
		Payload:       s.AddFlow.SubmitPayload(),
	}
	if s.AddFlow.Active() {
		snap.Resolutions = make(map[EntityKind]*EntityResolution, len(s.AddFlow.resolutions))
		for k, v := range s.AddFlow.resolutions {
			cp := *v
			cp.Candidates = append([]Candidate(nil), v.Candidates...)
			snap.Resolutions[k] = &cp
		}
	}
	return snap
}

// DropImages removes image references from the snapshot. First shrink
// step when the storage backend refuses a write.
func (snap *Snapshot) DropImages() {
	snap.PendingImage = ""
	for i := range snap.Messages {
		snap.Messages[i].ImageRef = ""
	}
}

// TrimMessages halves the message history, keeping the newest entries.
// Second shrink step after DropImages.
func (snap *Snapshot) TrimMessages() {
	if len(snap.Messages) < 2 {
		return
	}
	snap.Messages = snap.Messages[len(snap.Messages)/2:]
}

// RestoreSession rebuilds a live session from a snapshot. All in-progress
// flags start false regardless of what was true at serialization time.
func RestoreSession(snap *Snapshot, messageCap int, log logger.ILogger) *Session {
	s := NewSession(snap.UserID, snap.Personality, messageCap, log)
	s.ID = snap.SessionID

	for i := range snap.Messages {
		s.Conversation.Append(snap.Messages[i])
	}
	s.Conversation.phase = snap.Phase
	if !phase.Valid(s.Conversation.phase) {
		s.Conversation.phase = phase.Greeting
	}
	s.Conversation.SetAddStep(snap.AddStep)

	if snap.Result != nil {
		s.Identification.result = snap.Result.Clone()
	}
	for _, f := range snap.LockedFields {
		s.Identification.locked[f] = true
	}
	s.Identification.tier = snap.Tier
	s.Identification.augmentation = append([]string(nil), snap.Augmentation...)
	s.Identification.pendingText = snap.PendingText
	s.Identification.pendingImage = snap.PendingImage

	if snap.Enrichment != nil {
		s.Enrichment.result = snap.Enrichment.Clone()
	}

	if snap.AddFlowActive {
		s.AddFlow.active = true
		s.AddFlow.currentIdx = snap.AddFlowIdx
		if snap.Resolutions != nil {
			s.AddFlow.resolutions = snap.Resolutions
		}
		s.AddFlow.duplicate = snap.Duplicate
		s.AddFlow.bottle = snap.Bottle
		s.AddFlow.payload = snap.Payload
	}
	return s
}
