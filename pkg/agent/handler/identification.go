package handler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/analyze"
	"wine-cellar-be/pkg/agent/chips"
	"wine-cellar-be/pkg/agent/middleware"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
	"wine-cellar-be/pkg/sommelier"
)

// Identification handles search, streaming result assembly, escalation,
// the missing-field loop and field corrections.
type Identification struct {
	deps *Deps

	mu      sync.Mutex
	streams map[string]identifyStream // by session ID
}

type identifyStream struct {
	cancel    context.CancelFunc
	requestID string
}

func NewIdentification(deps *Deps) *Identification {
	return &Identification{deps: deps, streams: make(map[string]identifyStream)}
}

func (h *Identification) Handle(ctx context.Context, s *store.Session, a action.Action) error {
	switch a.Type {
	case action.TypeIdentifyText:
		return h.identifyText(s, a.Payload.Text)
	case action.TypeSearchAnyway:
		return h.identifyText(s, a.Payload.Text)
	case action.TypeIdentifyImage:
		return h.identifyImage(s, a.Payload.ImageRef)
	case action.TypeReidentify:
		return h.reidentify(s, a.Payload.Text)
	case action.TypeEscalate:
		return h.escalate(s)
	case action.TypeConfirmResult:
		return h.confirm(ctx, s)
	case action.TypeRejectResult:
		return h.reject(s)
	case action.TypeCorrectField:
		return h.correctField(s, store.Field(a.Payload.Field), a.Payload.Value)
	case action.TypeProvideMissingField:
		return h.provideMissingField(s, store.Field(a.Payload.Field), a.Payload.Value)
	case action.TypeContinueAsIs:
		return h.confirm(ctx, s)
	case action.TypeSetNonVintage:
		return h.setNonVintage(s)
	case action.TypeAddDetail:
		return h.addDetail(s, a.Payload.Text)
	case action.TypeCancelIdentify:
		return h.cancelIdentify(s)
	}
	return agenterr.Newf(agenterr.KindServerError, "identification", "unroutable action %q", a.Type)
}

func (h *Identification) identifyText(s *store.Session, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return agenterr.Newf(agenterr.KindValidation, "identify", "empty query")
	}
	s.Identification.SetPendingText(text)
	s.Identification.SetTier(0)
	h.deps.appendAgentText(s, registry.KeyIdentifying)
	h.deps.setPhase(s, phase.Identifying)
	h.startStream(s)
	return nil
}

func (h *Identification) identifyImage(s *store.Session, imageRef string) error {
	if imageRef == "" {
		return agenterr.Newf(agenterr.KindValidation, "identify", "missing image reference")
	}
	s.Conversation.Append(store.Message{
		Role:     store.RoleUser,
		Category: store.CategoryImage,
		ImageRef: imageRef,
	})
	s.Identification.SetPendingImage(imageRef)
	s.Identification.SetTier(0)
	h.deps.appendAgentText(s, registry.KeyIdentifying)
	h.deps.setPhase(s, phase.Identifying)
	h.startStream(s)
	return nil
}

// reidentify runs a new search while a result is already shown. Locked
// fields survive; the escalation tier resets for the new query.
func (h *Identification) reidentify(s *store.Session, text string) error {
	if text != "" {
		s.Identification.SetPendingText(text)
	}
	s.Identification.SetTier(0)
	s.Conversation.DisableChips()
	h.deps.appendAgentText(s, registry.KeyIdentifying)
	h.deps.setPhase(s, phase.Identifying)
	h.startStream(s)
	return nil
}

// escalate re-runs identification at the next effort tier against the
// accumulated evidence, still respecting locked fields.
func (h *Identification) escalate(s *store.Session) error {
	s.Identification.BumpTier()
	s.Conversation.DisableChips()
	h.deps.appendAgentText(s, registry.KeyEscalating)
	h.deps.setPhase(s, phase.Identifying)
	h.startStream(s)
	return nil
}

// startStream begins a new identification generation and consumes its
// events on a goroutine. Stale generations are discarded by the store,
// so an in-flight stream never needs to be torn down before starting
// the next one.
func (h *Identification) startStream(s *store.Session) {
	gen := s.Identification.BeginRequest()
	req := sommelier.IdentifyRequest{
		RequestID:    uuid.NewString(),
		Text:         s.Identification.PendingText(),
		ImageRef:     s.Identification.PendingImage(),
		Augmentation: s.Identification.Augmentation(),
		Tier:         s.Identification.Tier(),
		Locked:       lockedAsStrings(s.Identification.LockedValues()),
	}
	fromImage := req.ImageRef != ""

	streamCtx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.streams[s.ID] = identifyStream{cancel: cancel, requestID: req.RequestID}
	h.mu.Unlock()

	ch, err := h.deps.Client.Identify(streamCtx, req)
	if err != nil {
		cancel()
		h.dropStream(s.ID)
		s.Identification.CancelRequest()
		wrapped := wrapCapabilityErr("identify", err)
		middleware.RenderFailure(s, wrapped, h.deps.Log, action.TypeIdentifyText)
		return
	}
	h.deps.markCritical(s)

	go func() {
		defer cancel()
		for ev := range ch {
			switch {
			case ev.Partial != nil:
				p := ev.Partial
				s.Do(func() {
					if s.Identification.ApplyPartial(gen, store.Field(p.Field), p.Value) {
						h.deps.notify(s, "identify_partial", map[string]interface{}{
							"field": p.Field, "value": p.Value,
						})
					}
				})
			case ev.Final != nil:
				final := ev.Final
				s.Do(func() { h.finishStream(s, gen, final, fromImage) })
				h.dropStream(s.ID)
				return
			case ev.Err != nil:
				streamErr := ev.Err
				s.Do(func() {
					if s.Identification.Generation() != gen {
						return // superseded, failure belongs to a dead request
					}
					s.Identification.CancelRequest()
					middleware.RenderFailure(s, wrapCapabilityErr("identify", streamErr), h.deps.Log, action.TypeIdentifyText)
					h.deps.markCritical(s)
				})
				h.dropStream(s.ID)
				return
			}
		}
		h.dropStream(s.ID)
	}()
}

// finishStream installs the final result (locked fields re-applied by
// the store), auto-escalates one tier for weak image reads, then renders
// the analyzed outcome. Runs under the session lock.
func (h *Identification) finishStream(s *store.Session, gen uint64, final *sommelier.IdentifyResult, fromImage bool) {
	result := &store.IdentificationResult{
		Producer:       final.Producer,
		WineName:       final.WineName,
		Vintage:        final.Vintage,
		Region:         final.Region,
		Country:        final.Country,
		WineType:       final.WineType,
		GrapeVarieties: final.GrapeVarieties,
		Confidence:     final.Confidence,
	}
	if !s.Identification.Complete(gen, result) {
		return
	}

	autoVerify := h.deps.Config.ImageAutoVerifyThreshold
	if fromImage && s.Identification.Tier() == 0 && autoVerify > 0 &&
		s.Identification.Result().Confidence < autoVerify*100 {
		s.Identification.BumpTier()
		h.deps.appendAgentText(s, registry.KeyEscalating)
		h.startStream(s)
		return
	}

	h.renderAnalysis(s)
	h.deps.markCritical(s)
}

// renderAnalysis classifies the current result and emits the matching
// message, result card and chip set. Shared by stream completion and
// every field-mutation path.
func (h *Identification) renderAnalysis(s *store.Session) {
	result := s.Identification.Result()
	an := analyze.Analyze(result, h.deps.Config.ConfidenceThreshold)
	chipSet := chips.ForSituation(an, s.Personality)
	s.Identification.SetPromptedField("")

	if result != nil && !result.Empty() {
		m := s.Conversation.Append(store.Message{
			Role:     store.RoleAgent,
			Category: store.CategoryWineResult,
			Result:   result.Clone(),
		})
		h.deps.notify(s, "message_appended", map[string]interface{}{"message": m})
	}

	switch an.Situation {
	case analyze.SituationCompleteHighConfidence:
		h.deps.appendAgentChips(s, registry.KeyConfirmResult, chipSet)
		h.deps.setPhase(s, phase.Confirming)

	case analyze.SituationCompleteLowConfidence:
		h.deps.appendAgentChips(s, registry.KeyLowConfidence, chipSet)
		h.deps.setPhase(s, phase.Confirming)

	case analyze.SituationMissingProducer:
		s.Identification.SetPromptedField(store.FieldProducer)
		h.deps.appendAgentChips(s, registry.KeyAskProducer, chipSet)
		h.deps.setPhase(s, phase.Confirming)

	case analyze.SituationMissingWineName:
		s.Identification.SetPromptedField(store.FieldWineName)
		h.deps.appendAgentChips(s, registry.KeyAskWineName, chipSet)
		h.deps.setPhase(s, phase.Confirming)

	case analyze.SituationMissingVintage:
		s.Identification.SetPromptedField(store.FieldVintage)
		h.deps.appendAgentChips(s, registry.KeyAskVintage, chipSet)
		h.deps.setPhase(s, phase.Confirming)

	case analyze.SituationGrapeOnly:
		grapes := ""
		if result != nil {
			grapes = strings.Join(result.GrapeVarieties, ", ")
		}
		h.deps.appendAgentChips(s, registry.KeyGrapeOnly, chipSet, grapes)
		h.deps.setPhase(s, phase.AwaitingInput)

	default: // nothing found
		h.deps.appendAgentChips(s, registry.KeyNothingFound, chipSet)
		h.deps.setPhase(s, phase.AwaitingInput)
	}
	h.deps.markDirty(s)
}

// confirm accepts the shown result and hands over to the add-wine flow.
func (h *Identification) confirm(ctx context.Context, s *store.Session) error {
	if !s.Identification.HasResult() {
		return agenterr.Newf(agenterr.KindValidation, "confirm", "no result to confirm")
	}
	s.Conversation.DisableChips()
	s.Identification.SetPromptedField("")
	return h.deps.Dispatch(ctx, s, action.Action{Type: action.TypeAddToCellar})
}

// reject offers per-field correction chips derived from the live result.
func (h *Identification) reject(s *store.Session) error {
	set := chips.ForFieldCorrection(s.Identification.Result(), s.Identification.Locked, s.Personality)
	h.deps.appendAgentChips(s, registry.KeyWhichFieldWrong, set)
	return nil
}

// correctField applies a user correction, locking the field against any
// later automated overwrite. With no value yet, it prompts for one.
func (h *Identification) correctField(s *store.Session, f store.Field, value string) error {
	if !scalarField(f) {
		return agenterr.Newf(agenterr.KindValidation, "correct_field", "unknown field %q", f)
	}
	if value == "" {
		s.Identification.SetPromptedField(f)
		h.deps.appendAgentText(s, registry.KeyAskFieldValue, strings.ToLower(registry.FieldLabel(string(f))))
		return nil
	}
	s.Identification.SetField(f, value)
	h.deps.appendAgentText(s, registry.KeyFieldCorrected, strings.ToLower(registry.FieldLabel(string(f))), value)
	h.renderAnalysis(s)
	return nil
}

// provideMissingField fills the field being collected. A user-supplied
// value locks like a correction does.
func (h *Identification) provideMissingField(s *store.Session, f store.Field, value string) error {
	if f == store.FieldDetail {
		if value == "" {
			return h.addDetail(s, "")
		}
		return h.addDetail(s, value)
	}
	if !scalarField(f) {
		return agenterr.Newf(agenterr.KindValidation, "provide_field", "unknown field %q", f)
	}
	if value == "" {
		s.Identification.SetPromptedField(f)
		h.deps.appendAgentText(s, registry.KeyAskFieldValue, strings.ToLower(registry.FieldLabel(string(f))))
		return nil
	}
	s.Identification.SetField(f, value)
	h.renderAnalysis(s)
	return nil
}

func (h *Identification) setNonVintage(s *store.Session) error {
	s.Identification.SetField(store.FieldVintage, store.NonVintage)
	h.renderAnalysis(s)
	return nil
}

// addDetail accumulates supplementary evidence and re-identifies with
// it. An empty payload prompts for the detail first.
func (h *Identification) addDetail(s *store.Session, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		s.Identification.SetPromptedField(store.FieldDetail)
		h.deps.appendAgentText(s, registry.KeyAddDetailsPrompt)
		return nil
	}
	s.Identification.AppendAugmentation(text)
	s.Identification.SetPromptedField("")
	s.Conversation.DisableChips()
	h.deps.appendAgentText(s, registry.KeyIdentifying)
	h.deps.setPhase(s, phase.Identifying)
	h.startStream(s)
	return nil
}

// cancelIdentify abandons the in-flight stream. The generation bump
// makes any still-queued events for it no-ops, and the store reverts
// the request's own streamed fragments. An identification cancel always
// returns to awaiting_input; only a mid-enrichment cancel may keep the
// confirmation surface, since only there is the prior result intact.
func (h *Identification) cancelIdentify(s *store.Session) error {
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

	s.Identification.CancelRequest()
	h.deps.appendAgentText(s, registry.KeyCancelled)
	h.deps.setPhase(s, phase.AwaitingInput)
	return nil
}

func (h *Identification) dropStream(sessionID string) {
	h.mu.Lock()
	delete(h.streams, sessionID)
	h.mu.Unlock()
}

func scalarField(f store.Field) bool {
	for _, sf := range store.ScalarFields {
		if sf == f {
			return true
		}
	}
	return false
}

func lockedAsStrings(in map[store.Field]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for f, v := range in {
		out[string(f)] = v
	}
	return out
}

// wrapCapabilityErr maps the capability's sentinel failures onto the
// agent error taxonomy.
func wrapCapabilityErr(op string, err error) error {
	switch {
	case errors.Is(err, sommelier.ErrTimeout):
		return agenterr.Wrap(agenterr.KindTimeout, op, err)
	case errors.Is(err, sommelier.ErrRateLimited):
		return agenterr.Wrap(agenterr.KindRateLimit, op, err)
	case errors.Is(err, sommelier.ErrQuotaExceeded):
		return agenterr.Wrap(agenterr.KindQuotaExceeded, op, err)
	case errors.Is(err, sommelier.ErrUnreadableImage):
		return agenterr.Wrap(agenterr.KindInputQuality, op, err)
	case errors.Is(err, sommelier.ErrUnavailable):
		return agenterr.Wrap(agenterr.KindServerError, op, err)
	default:
		return agenterr.Wrap(agenterr.Classify(err), op, err)
	}
}
