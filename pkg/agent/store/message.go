package store

import (
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/action"
)

// MessageRole distinguishes who produced a log entry.
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleAgent MessageRole = "agent"
)

// MessageCategory selects the payload shape of a message.
type MessageCategory string

const (
	CategoryText       MessageCategory = "text"
	CategoryChips      MessageCategory = "chips"
	CategoryWineResult MessageCategory = "wine_result"
	CategoryEnrichment MessageCategory = "enrichment"
	CategoryForm       MessageCategory = "form"
	CategoryError      MessageCategory = "error"
	CategoryImage      MessageCategory = "image"
)

// ChipVariant is the emphasis rendering of a chip.
type ChipVariant string

const (
	VariantPrimary     ChipVariant = "primary"
	VariantSecondary   ChipVariant = "secondary"
	VariantPlaceholder ChipVariant = "placeholder"
	VariantLocked      ChipVariant = "locked"
)

// Chip is a single selectable response affordance.
type Chip struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	Action  action.Action `json:"action"`
	Variant ChipVariant   `json:"variant"`
}

// Message is one append-only entry of the conversation log. Messages are
// never mutated after append except to disable chips or to fill streaming
// payload fields in place.
type Message struct {
	ID         uuid.UUID             `json:"id"`
	Role       MessageRole           `json:"role"`
	Category   MessageCategory       `json:"category"`
	Text       string                `json:"text,omitempty"`
	Chips      []Chip                `json:"chips,omitempty"`
	Result     *IdentificationResult `json:"result,omitempty"`
	Enrichment *EnrichmentResult     `json:"enrichment,omitempty"`
	ImageRef   string                `json:"image_ref,omitempty"`
	Disabled   bool                  `json:"disabled"`
	Divider    bool                  `json:"divider,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}
