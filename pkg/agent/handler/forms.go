package handler

import (
	"context"
	"strings"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/chips"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

// Forms handles the bottle-details form and the manual-entry fallback.
type Forms struct {
	deps *Deps
}

func NewForms(deps *Deps) *Forms {
	return &Forms{deps: deps}
}

func (h *Forms) Handle(ctx context.Context, s *store.Session, a action.Action) error {
	switch a.Type {
	case action.TypeSetBottleField:
		return h.setBottleField(s, a.Payload.Field, a.Payload.Value)
	case action.TypeNextFormStep:
		return h.nextStep(s)
	case action.TypePrevFormStep:
		return h.prevStep(s)
	case action.TypeSubmitBottleForm:
		return h.submitBottleForm(s)
	case action.TypeManualEntry:
		return h.manualEntry(s)
	case action.TypeSubmitManualEntry:
		return h.submitManualEntry(ctx, s, a.Payload.Fields)
	}
	return agenterr.Newf(agenterr.KindServerError, "forms", "unroutable action %q", a.Type)
}

// setBottleField stages one field of the open bottle form. Debounced
// persistence absorbs keystroke-rate updates.
func (h *Forms) setBottleField(s *store.Session, field, value string) error {
	if s.Conversation.AddStep() != store.StepBottleDetails {
		return agenterr.Newf(agenterr.KindValidation, "bottle_form", "no bottle form open")
	}
	s.AddFlow.SetBottleField(field, value)
	h.deps.markDirty(s)
	return nil
}

// nextStep closes the bottle form and offers enrichment before the
// final write.
func (h *Forms) nextStep(s *store.Session) error {
	return h.offerEnrichment(s)
}

// prevStep re-opens the bottle form with its staged values intact.
func (h *Forms) prevStep(s *store.Session) error {
	s.Conversation.SetAddStep(store.StepBottleDetails)
	s.Conversation.DisableChips()
	h.deps.notify(s, "form_opened", map[string]interface{}{"form": "bottle_details"})
	return nil
}

func (h *Forms) submitBottleForm(s *store.Session) error {
	if s.Conversation.AddStep() != store.StepBottleDetails {
		return agenterr.Newf(agenterr.KindValidation, "bottle_form", "no bottle form open")
	}
	b := s.AddFlow.Bottle()
	if b.Quantity < 1 {
		b.Quantity = 1
		s.AddFlow.SetBottle(b)
	}
	return h.offerEnrichment(s)
}

func (h *Forms) offerEnrichment(s *store.Session) error {
	h.deps.appendAgentChips(s, registry.KeyEnrichOffer, chips.ForEnrichOffer(s.Personality))
	return nil
}

// manualEntry abandons automated identification for a plain form.
func (h *Forms) manualEntry(s *store.Session) error {
	s.Conversation.DisableChips()
	s.Conversation.SetAddStep(store.StepManualEntry)
	h.deps.setPhase(s, phase.AwaitingInput)
	h.deps.appendAgentText(s, registry.KeyManualEntry)
	h.deps.notify(s, "form_opened", map[string]interface{}{"form": "manual_entry"})
	return nil
}

// submitManualEntry adopts the user's fields verbatim as a fully locked
// result and enters the add flow with it.
func (h *Forms) submitManualEntry(ctx context.Context, s *store.Session, fields map[string]string) error {
	producer := strings.TrimSpace(fields[string(store.FieldProducer)])
	name := strings.TrimSpace(fields[string(store.FieldWineName)])
	if producer == "" && name == "" {
		return agenterr.Newf(agenterr.KindValidation, "manual_entry", "producer or wine name required")
	}

	s.Identification.Reset()
	for _, f := range store.ScalarFields {
		if v := strings.TrimSpace(fields[string(f)]); v != "" {
			s.Identification.SetField(f, v)
		}
	}
	s.Conversation.SetAddStep(store.StepNone)
	s.Conversation.DisableChips()
	return h.deps.Dispatch(ctx, s, action.Action{Type: action.TypeAddToCellar})
}
