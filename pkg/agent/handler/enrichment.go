package handler

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/chips"
	"wine-cellar-be/pkg/agent/middleware"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
	"wine-cellar-be/pkg/sommelier"
)

// Enrichment handles reference-data lookup: streaming sections, the
// cache-mismatch pause and cancellation.
type Enrichment struct {
	deps *Deps

	mu      sync.Mutex
	streams map[string]identifyStream // by session ID
}

func NewEnrichment(deps *Deps) *Enrichment {
	return &Enrichment{deps: deps, streams: make(map[string]identifyStream)}
}

func (h *Enrichment) Handle(ctx context.Context, s *store.Session, a action.Action) error {
	switch a.Type {
	case action.TypeEnrich:
		return h.enrich(s, false)
	case action.TypeRefreshEnrichment:
		s.Enrichment.ClearMismatch()
		s.Conversation.DisableChips()
		return h.enrich(s, true)
	case action.TypeAcceptCachedMatch:
		return h.acceptCached(ctx, s)
	case action.TypeCancelEnrich:
		return h.cancelEnrich(s)
	}
	return agenterr.Newf(agenterr.KindServerError, "enrichment", "unroutable action %q", a.Type)
}

func (h *Enrichment) enrich(s *store.Session, fresh bool) error {
	result := s.Identification.Result()
	if result == nil {
		return agenterr.Newf(agenterr.KindValidation, "enrich", "no identified wine to enrich")
	}
	key := store.LookupKey(result.Producer, result.WineName, result.Vintage)
	gen := s.Enrichment.BeginRequest(key)

	req := sommelier.EnrichRequest{
		RequestID: uuid.NewString(),
		LookupKey: key,
		Producer:  result.Producer,
		WineName:  result.WineName,
		Vintage:   result.Vintage,
		Fresh:     fresh,
	}

	h.deps.appendAgentText(s, registry.KeyEnriching)
	h.deps.setPhase(s, phase.Enriching)

	streamCtx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.streams[s.ID] = identifyStream{cancel: cancel, requestID: req.RequestID}
	h.mu.Unlock()

	ch, err := h.deps.Client.Enrich(streamCtx, req)
	if err != nil {
		cancel()
		h.dropStream(s.ID)
		s.Enrichment.CancelRequest()
		middleware.RenderFailure(s, wrapCapabilityErr("enrich", err), h.deps.Log, action.TypeEnrich)
		return nil
	}

	go func() {
		defer cancel()
		for ev := range ch {
			switch {
			case ev.Partial != nil:
				p := ev.Partial
				s.Do(func() {
					if s.Enrichment.ApplyPartial(gen, p.Section, p.Value) {
						h.deps.notify(s, "enrich_partial", map[string]interface{}{
							"section": p.Section, "value": p.Value,
						})
					}
				})
			case ev.Mismatch != nil:
				m := ev.Mismatch
				s.Do(func() { h.pauseOnMismatch(s, gen, m) })
				h.dropStream(s.ID)
				return
			case ev.Final != nil:
				final := ev.Final
				s.Do(func() { h.finishEnrich(s, gen, final) })
				h.dropStream(s.ID)
				return
			case ev.Err != nil:
				streamErr := ev.Err
				s.Do(func() {
					if s.Enrichment.Generation() != gen {
						return
					}
					s.Enrichment.CancelRequest()
					middleware.RenderFailure(s, wrapCapabilityErr("enrich", streamErr), h.deps.Log, action.TypeEnrich)
					h.deps.markCritical(s)
				})
				h.dropStream(s.ID)
				return
			}
		}
		h.dropStream(s.ID)
	}()
	return nil
}

// pauseOnMismatch parks the flow on a near-miss cache hit until the
// user picks a side. Runs under the session lock.
func (h *Enrichment) pauseOnMismatch(s *store.Session, gen uint64, m *sommelier.CacheMismatch) {
	if s.Enrichment.Generation() != gen {
		return
	}
	s.Enrichment.CancelRequest()
	s.Enrichment.SetMismatch(&store.CacheMismatch{
		RequestedKey: m.RequestedKey,
		CachedKey:    m.CachedKey,
		Cached:       convertEnrichResult(m.Cached),
	})
	h.deps.appendAgentChips(s, registry.KeyCachedMismatch,
		chips.ForCachedMismatch(s.Personality), m.CachedKey)
	h.deps.markCritical(s)
}

// finishEnrich installs the final payload and renders it. Runs under
// the session lock.
func (h *Enrichment) finishEnrich(s *store.Session, gen uint64, final *sommelier.EnrichResult) {
	if !s.Enrichment.Complete(gen, convertEnrichResult(final)) {
		return
	}
	if h.deps.Warmer != nil && final.Source != sommelier.SourceCache {
		h.deps.Warmer.WarmEnrichment(final.LookupKey, final)
	}
	h.renderEnrichment(context.Background(), s)
}

// renderEnrichment appends the enrichment card and moves the flow
// along: inside an add flow that means submission, otherwise back to
// the confirmation surface.
func (h *Enrichment) renderEnrichment(ctx context.Context, s *store.Session) {
	m := s.Conversation.Append(store.Message{
		Role:       store.RoleAgent,
		Category:   store.CategoryEnrichment,
		Text:       registry.Text(s.Personality, registry.KeyEnrichmentReady),
		Enrichment: s.Enrichment.Result().Clone(),
	})
	h.deps.notify(s, "message_appended", map[string]interface{}{"message": m})
	h.deps.markCritical(s)

	if s.AddFlow.Active() {
		if err := h.deps.Dispatch(ctx, s, action.Action{Type: action.TypeSubmitWine}); err != nil {
			middleware.RenderFailure(s, err, h.deps.Log, action.TypeSubmitWine)
		}
		return
	}
	h.deps.setPhase(s, phase.Confirming)
}

// acceptCached adopts the near-miss cached payload as-is.
func (h *Enrichment) acceptCached(ctx context.Context, s *store.Session) error {
	m := s.Enrichment.Mismatch()
	if m == nil || m.Cached == nil {
		return agenterr.Newf(agenterr.KindValidation, "enrich", "no cached match pending")
	}
	s.Enrichment.ClearMismatch()
	s.Conversation.DisableChips()
	gen := s.Enrichment.BeginRequest(m.RequestedKey)
	s.Enrichment.Complete(gen, m.Cached.Clone())
	h.renderEnrichment(ctx, s)
	return nil
}

func (h *Enrichment) cancelEnrich(s *store.Session) error {
	h.mu.Lock()
	st, ok := h.streams[s.ID]
	delete(h.streams, s.ID)
	h.mu.Unlock()
	if ok {
		st.cancel()
		go func() {
			abandonCtx, done := context.WithTimeout(context.Background(), abandonTimeout)
			defer done()
			_ = h.deps.Client.Abandon(abandonCtx, st.requestID)
		}()
	}

	s.Enrichment.CancelRequest()
	s.Enrichment.ClearMismatch()
	h.deps.appendAgentText(s, registry.KeyCancelled)
	if s.AddFlow.Active() {
		h.deps.setPhase(s, phase.AddingWine)
	} else if s.Identification.HasResult() {
		h.deps.setPhase(s, phase.Confirming)
	} else {
		h.deps.setPhase(s, phase.AwaitingInput)
	}
	return nil
}

func (h *Enrichment) dropStream(sessionID string) {
	h.mu.Lock()
	delete(h.streams, sessionID)
	h.mu.Unlock()
}

func convertEnrichResult(in *sommelier.EnrichResult) *store.EnrichmentResult {
	if in == nil {
		return nil
	}
	out := &store.EnrichmentResult{
		LookupKey:        in.LookupKey,
		Overview:         in.Overview,
		GrapeComposition: in.GrapeComposition,
		StyleProfile:     in.StyleProfile,
		TastingNotes:     in.TastingNotes,
		PairingNotes:     in.PairingNotes,
		Source:           in.Source,
	}
	for _, cs := range in.CriticScores {
		out.CriticScores = append(out.CriticScores, store.CriticScore{
			Critic: cs.Critic, Score: cs.Score, Scale: cs.Scale,
		})
	}
	if in.DrinkWindow != nil {
		out.DrinkWindow = &store.DrinkWindow{From: in.DrinkWindow.From, To: in.DrinkWindow.To}
	}
	return out
}
