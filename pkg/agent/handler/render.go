package handler

import (
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

// appendAgentText appends a plain agent message rendered from the
// registry in the session's personality.
func (d *Deps) appendAgentText(s *store.Session, key registry.Key, args ...interface{}) *store.Message {
	m := s.Conversation.Append(store.Message{
		Role:     store.RoleAgent,
		Category: store.CategoryText,
		Text:     registry.Text(s.Personality, key, args...),
	})
	d.notify(s, "message_appended", map[string]interface{}{"message": m})
	d.markDirty(s)
	return m
}

// appendAgentChips appends an agent message carrying quick-reply chips.
// Previously offered chips are disabled first so only one live chip set
// exists at a time.
func (d *Deps) appendAgentChips(s *store.Session, key registry.Key, chips []store.Chip, args ...interface{}) *store.Message {
	s.Conversation.DisableChips()
	m := s.Conversation.Append(store.Message{
		Role:     store.RoleAgent,
		Category: store.CategoryChips,
		Text:     registry.Text(s.Personality, key, args...),
		Chips:    chips,
	})
	d.notify(s, "message_appended", map[string]interface{}{"message": m})
	d.markDirty(s)
	return m
}

func (d *Deps) appendUserText(s *store.Session, text string) *store.Message {
	m := s.Conversation.Append(store.Message{
		Role:     store.RoleUser,
		Category: store.CategoryText,
		Text:     text,
	})
	d.notify(s, "message_appended", map[string]interface{}{"message": m})
	d.markDirty(s)
	return m
}

// setPhase applies a phase change and broadcasts it. Illegal
// transitions are refused by the store and logged there.
func (d *Deps) setPhase(s *store.Session, next phase.Phase) bool {
	if !s.Conversation.SetPhase(next) {
		return false
	}
	d.notify(s, "phase_changed", map[string]interface{}{"phase": string(next)})
	d.markDirty(s)
	return true
}
