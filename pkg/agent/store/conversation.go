package store

import (
	"time"

	"github.com/google/uuid"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/phase"
)

// AddStep is the sub-step of the add-to-cellar flow shown on screen.
type AddStep string

const (
	StepNone           AddStep = ""
	StepDuplicate      AddStep = "duplicate"
	StepEntityRegion   AddStep = "entity_region"
	StepEntityProducer AddStep = "entity_producer"
	StepEntityWine     AddStep = "entity_wine"
	StepBottleDetails  AddStep = "bottle_details"
	StepManualEntry    AddStep = "manual_entry"
)

// DefaultMessageCap bounds the message log; the oldest entries are
// trimmed past it.
const DefaultMessageCap = 200

// ConversationStore is the canonical message log plus the current phase
// and add-flow sub-step. It is the single source of truth for what is on
// screen.
type ConversationStore struct {
	messages []*Message
	phase    phase.Phase
	addStep  AddStep
	cap      int
	log      logger.ILogger
}

func NewConversationStore(cap int, log logger.ILogger) *ConversationStore {
	if cap <= 0 {
		cap = DefaultMessageCap
	}
	return &ConversationStore{
		messages: make([]*Message, 0, 32),
		phase:    phase.Greeting,
		cap:      cap,
		log:      log,
	}
}

// Append adds a message to the log, trimming the oldest entries past the
// cap, and returns the stored message for in-place streaming fills.
func (c *ConversationStore) Append(m Message) *Message {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	stored := &m
	c.messages = append(c.messages, stored)
	if len(c.messages) > c.cap {
		c.messages = c.messages[len(c.messages)-c.cap:]
	}
	return stored
}

// Messages returns a copy of the log slice. The pointed-to messages are
// shared so streaming fills stay visible.
func (c *ConversationStore) Messages() []*Message {
	out := make([]*Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// DisableChips marks every chip message inert. Called once a chip has
// been acted on so stale affordances cannot fire twice.
func (c *ConversationStore) DisableChips() {
	for _, m := range c.messages {
		if len(m.Chips) > 0 && !m.Disabled {
			m.Disabled = true
		}
	}
}

// Phase returns the single active phase.
func (c *ConversationStore) Phase() phase.Phase {
	return c.phase
}

// SetPhase is the one legal phase write. Transitions absent from the
// table are refused and logged, leaving the phase unchanged.
func (c *ConversationStore) SetPhase(next phase.Phase) bool {
	if !phase.CanTransition(c.phase, next) {
		if c.log != nil {
			c.log.Warn("ConversationStore", "refused illegal phase transition", map[string]interface{}{
				"from": string(c.phase),
				"to":   string(next),
			})
		}
		return false
	}
	c.phase = next
	return true
}

func (c *ConversationStore) AddStep() AddStep {
	return c.addStep
}

func (c *ConversationStore) SetAddStep(s AddStep) {
	c.addStep = s
}

// Cap returns the configured message cap.
func (c *ConversationStore) Cap() int {
	return c.cap
}

// StartOver resets phase and sub-step to the greeting state but keeps
// the prior transcript above a visual divider.
func (c *ConversationStore) StartOver() {
	c.Append(Message{Role: RoleAgent, Category: CategoryText, Divider: true})
	c.phase = phase.Greeting
	c.addStep = StepNone
}
