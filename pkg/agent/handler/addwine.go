package handler

import (
	"context"
	"fmt"
	"strings"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/chips"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

// AddWine handles the duplicate check, the region → producer → wine
// entity resolution walk and the final cellar write.
type AddWine struct {
	deps *Deps
}

func NewAddWine(deps *Deps) *AddWine {
	return &AddWine{deps: deps}
}

func (h *AddWine) Handle(ctx context.Context, s *store.Session, a action.Action) error {
	switch a.Type {
	case action.TypeAddToCellar:
		return h.begin(ctx, s)
	case action.TypeAddAnotherBottle:
		return h.addAnotherBottle(s)
	case action.TypeCreateNewWine:
		return h.createNewWine(ctx, s)
	case action.TypeSelectMatch:
		return h.selectMatch(ctx, s, a)
	case action.TypeCreateNewEntity:
		return h.createNewEntity(ctx, s)
	case action.TypeExplainMatches:
		return h.explainMatches(ctx, s)
	case action.TypeSubmitWine:
		return h.submit(ctx, s)
	}
	return agenterr.Newf(agenterr.KindServerError, "add_wine", "unroutable action %q", a.Type)
}

// begin opens the flow with a duplicate check, then walks the entity
// hierarchy.
func (h *AddWine) begin(ctx context.Context, s *store.Session) error {
	result := s.Identification.Result()
	if result == nil {
		return agenterr.Newf(agenterr.KindValidation, "add_to_cellar", "no identified wine to add")
	}
	s.AddFlow.Begin()
	s.Conversation.DisableChips()
	h.deps.setPhase(s, phase.AddingWine)

	dup, err := h.deps.Cellar.CheckDuplicate(ctx, s.UserID, result.Producer, result.WineName, result.Vintage)
	if err != nil {
		s.AddFlow.Destroy()
		return wrapCapabilityErr("duplicate_check", err)
	}
	if dup != nil {
		s.AddFlow.SetDuplicate(&store.DuplicateInfo{
			ExistingWineID:      dup.WineID,
			ExistingBottleCount: dup.BottleCount,
		})
		s.Conversation.SetAddStep(store.StepDuplicate)
		h.deps.appendAgentChips(s, registry.KeyDuplicateFound,
			chips.ForDuplicate(s.Personality), dup.BottleCount)
		return nil
	}
	return h.resolveNext(ctx, s)
}

// addAnotherBottle short-circuits entity matching: the wine exists, only
// a bottle row is missing.
func (h *AddWine) addAnotherBottle(s *store.Session) error {
	if s.AddFlow.Duplicate() == nil {
		return agenterr.Newf(agenterr.KindValidation, "add_bottle", "no duplicate wine on record")
	}
	s.Conversation.DisableChips()
	s.Conversation.SetAddStep(store.StepBottleDetails)
	h.deps.appendAgentText(s, registry.KeyBottleDetails)
	h.deps.notify(s, "form_opened", map[string]interface{}{"form": "bottle_details"})
	return nil
}

// createNewWine keeps a duplicate on file but files this bottle as a
// distinct wine entry, entering the normal resolution walk.
func (h *AddWine) createNewWine(ctx context.Context, s *store.Session) error {
	s.AddFlow.SetDuplicate(nil)
	s.Conversation.DisableChips()
	return h.resolveNext(ctx, s)
}

// resolveNext advances the region → producer → wine walk. Zero matches
// auto-create, a single exact match auto-selects, anything else asks.
func (h *AddWine) resolveNext(ctx context.Context, s *store.Session) error {
	result := s.Identification.Result()
	for {
		kind, ok := s.AddFlow.CurrentEntity()
		if !ok {
			return h.collectBottle(s)
		}

		query := entityQuery(result, kind)
		if query == "" {
			s.AddFlow.MarkCreateNew(kind)
			s.AddFlow.Advance()
			continue
		}

		cands, err := h.deps.Cellar.SearchEntities(ctx, s.UserID, kind, query)
		if err != nil {
			return wrapCapabilityErr("entity_search", err)
		}
		s.AddFlow.SetCandidates(kind, query, cands)

		switch {
		case len(cands) == 0:
			s.AddFlow.MarkCreateNew(kind)
			s.AddFlow.Advance()
		case len(cands) == 1 && cands[0].Exact:
			s.AddFlow.Select(kind, cands[0].ID)
			s.AddFlow.Advance()
		default:
			s.Conversation.SetAddStep(entityStep(kind))
			h.deps.appendAgentChips(s, registry.KeySelectMatch,
				chips.ForEntitySelection(kind, cands, s.Personality), query)
			return nil
		}
	}
}

func (h *AddWine) selectMatch(ctx context.Context, s *store.Session, a action.Action) error {
	kind, ok := s.AddFlow.CurrentEntity()
	if !ok {
		return agenterr.Newf(agenterr.KindValidation, "select_match", "no entity pending selection")
	}
	if a.Payload.EntityID == nil {
		return agenterr.Newf(agenterr.KindValidation, "select_match", "missing entity id")
	}
	s.AddFlow.Select(kind, *a.Payload.EntityID)
	s.AddFlow.Advance()
	s.Conversation.DisableChips()
	return h.resolveNext(ctx, s)
}

func (h *AddWine) createNewEntity(ctx context.Context, s *store.Session) error {
	kind, ok := s.AddFlow.CurrentEntity()
	if !ok {
		return agenterr.Newf(agenterr.KindValidation, "create_entity", "no entity pending selection")
	}
	s.AddFlow.MarkCreateNew(kind)
	s.AddFlow.Advance()
	s.Conversation.DisableChips()
	return h.resolveNext(ctx, s)
}

// explainMatches fetches an on-demand disambiguation of the shown
// candidates, then re-offers the same selection.
func (h *AddWine) explainMatches(ctx context.Context, s *store.Session) error {
	kind, ok := s.AddFlow.CurrentEntity()
	if !ok {
		return agenterr.Newf(agenterr.KindValidation, "explain_matches", "no entity pending selection")
	}
	res := s.AddFlow.Resolution(kind)
	if res == nil || len(res.Candidates) == 0 {
		return agenterr.Newf(agenterr.KindValidation, "explain_matches", "no candidates to explain")
	}

	names := make([]string, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		if c.Detail != "" {
			names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.Detail))
		} else {
			names = append(names, c.Name)
		}
	}
	explanation, err := h.deps.Client.ExplainCandidates(ctx, string(kind), res.Query, names)
	if err != nil {
		return wrapCapabilityErr("explain_matches", err)
	}
	h.deps.appendAgentText(s, registry.KeyExplainMatches, explanation)
	h.deps.appendAgentChips(s, registry.KeySelectMatch,
		chips.ForEntitySelection(kind, res.Candidates, s.Personality), res.Query)
	return nil
}

// collectBottle opens the bottle-details form once all entities resolve.
func (h *AddWine) collectBottle(s *store.Session) error {
	s.Conversation.SetAddStep(store.StepBottleDetails)
	h.deps.appendAgentText(s, registry.KeyBottleDetails)
	h.deps.notify(s, "form_opened", map[string]interface{}{"form": "bottle_details"})
	h.deps.markDirty(s)
	return nil
}

// submit performs the final cellar write. The payload is built once and
// retained, so a retried submission replays the identical write.
func (h *AddWine) submit(ctx context.Context, s *store.Session) error {
	if !s.AddFlow.Active() {
		return agenterr.Newf(agenterr.KindValidation, "submit", "no add flow in progress")
	}
	if s.AddFlow.Submitting() {
		return nil // a write is already in flight
	}

	payload := s.AddFlow.SubmitPayload()
	if payload == nil {
		payload = h.buildPayload(s)
		s.AddFlow.SetSubmitPayload(payload)
		h.deps.markCritical(s)
	}

	s.AddFlow.SetSubmitting(true)
	defer s.AddFlow.SetSubmitting(false)

	label := wineLabel(payload.Result)

	if dup := s.AddFlow.Duplicate(); dup != nil {
		count, err := h.deps.Cellar.AddBottle(ctx, s.UserID, dup.ExistingWineID, payload.Bottle)
		if err != nil {
			return wrapCapabilityErr("add_bottle", err)
		}
		h.deps.Log.Info("Agent", "bottle added to existing wine", map[string]interface{}{
			"wine_id": dup.ExistingWineID.String(), "bottles": count,
		})
		return h.finish(s, registry.KeyBottleAdded, label)
	}

	wineID, err := h.deps.Cellar.CreateWineWithBottle(ctx, s.UserID, payload)
	if err != nil {
		return wrapCapabilityErr("create_wine", err)
	}
	h.deps.Log.Info("Agent", "wine created", map[string]interface{}{
		"wine_id": wineID.String(),
	})
	return h.finish(s, registry.KeyWineAdded, label)
}

func (h *AddWine) finish(s *store.Session, key registry.Key, label string) error {
	if h.deps.Tracker != nil {
		h.deps.Tracker.Clear(s.ID)
	}
	s.AddFlow.Destroy()
	s.Conversation.SetAddStep(store.StepNone)
	s.Conversation.DisableChips()
	h.deps.appendAgentText(s, key, label)
	h.deps.setPhase(s, phase.Complete)
	h.deps.markCritical(s)
	return nil
}

// buildPayload freezes the write exactly as resolved.
func (h *AddWine) buildPayload(s *store.Session) *store.SubmitPayload {
	p := &store.SubmitPayload{
		Result:         s.Identification.Result().Clone(),
		Bottle:         s.AddFlow.Bottle(),
		WithEnrichment: s.Enrichment.HasResult(),
	}
	if r := s.AddFlow.Resolution(store.EntityRegion); r != nil {
		p.RegionID = r.SelectedID
	}
	if r := s.AddFlow.Resolution(store.EntityProducer); r != nil {
		p.ProducerID = r.SelectedID
	}
	if r := s.AddFlow.Resolution(store.EntityWine); r != nil {
		p.WineID = r.SelectedID
	}
	return p
}

func entityQuery(r *store.IdentificationResult, kind store.EntityKind) string {
	if r == nil {
		return ""
	}
	switch kind {
	case store.EntityRegion:
		if r.Region != "" {
			return r.Region
		}
		return r.Country
	case store.EntityProducer:
		return r.Producer
	default:
		return r.WineName
	}
}

func entityStep(kind store.EntityKind) store.AddStep {
	switch kind {
	case store.EntityRegion:
		return store.StepEntityRegion
	case store.EntityProducer:
		return store.StepEntityProducer
	default:
		return store.StepEntityWine
	}
}

func wineLabel(r *store.IdentificationResult) string {
	if r == nil {
		return "the wine"
	}
	parts := make([]string, 0, 3)
	if r.Producer != "" {
		parts = append(parts, r.Producer)
	}
	if r.WineName != "" {
		parts = append(parts, r.WineName)
	}
	if r.Vintage != "" {
		parts = append(parts, r.Vintage)
	}
	if len(parts) == 0 {
		return "the wine"
	}
	return strings.Join(parts, " ")
}
