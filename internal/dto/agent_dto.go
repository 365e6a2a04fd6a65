package dto

import (
	"time"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

type CreateSessionRequest struct {
	Personality string `json:"personality" validate:"omitempty,oneof=sommelier casual"`
}

type CreateSessionResponse struct {
	SessionId   string               `json:"session_id"`
	Personality registry.Personality `json:"personality"`
	Phase       phase.Phase          `json:"phase"`
}

type DispatchRequest struct {
	Type    string         `json:"type" validate:"required"`
	Payload action.Payload `json:"payload"`
}

// SessionView is what the client renders after a dispatch or reconnect:
// the transcript plus enough state to reopen panels and forms.
type SessionView struct {
	SessionId   string               `json:"session_id"`
	Personality registry.Personality `json:"personality"`
	Phase       phase.Phase          `json:"phase"`
	AddStep     store.AddStep        `json:"add_step"`
	Messages    []MessageView        `json:"messages"`

	Result     *store.IdentificationResult `json:"result,omitempty"`
	Enrichment *store.EnrichmentResult     `json:"enrichment,omitempty"`
	Bottle     *store.BottleDetails        `json:"bottle,omitempty"`
	Streaming  bool                        `json:"streaming"`
	Submitting bool                        `json:"submitting"`
}

type MessageView struct {
	Id         string                      `json:"id"`
	Role       store.MessageRole           `json:"role"`
	Category   store.MessageCategory       `json:"category"`
	Text       string                      `json:"text,omitempty"`
	Chips      []store.Chip                `json:"chips,omitempty"`
	Result     *store.IdentificationResult `json:"result,omitempty"`
	Enrichment *store.EnrichmentResult     `json:"enrichment,omitempty"`
	ImageRef   string                      `json:"image_ref,omitempty"`
	Disabled   bool                        `json:"disabled"`
	Divider    bool                        `json:"divider,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
}
