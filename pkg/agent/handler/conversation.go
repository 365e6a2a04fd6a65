package handler

import (
	"context"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/chips"
	"wine-cellar-be/pkg/agent/detect"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

// Conversation handles greeting, free-text routing and the navigation
// commands. It is the only family allowed to touch every store, because
// start_over resets all of them.
type Conversation struct {
	deps *Deps
}

func NewConversation(deps *Deps) *Conversation {
	return &Conversation{deps: deps}
}

func (h *Conversation) Handle(ctx context.Context, s *store.Session, a action.Action) error {
	switch a.Type {
	case action.TypeGreet:
		return h.greet(s)
	case action.TypeUserMessage:
		return h.userMessage(ctx, s, a.Payload.Text)
	case action.TypeStartOver:
		return h.startOver(s)
	case action.TypeGoBack:
		return h.goBack(s)
	case action.TypeCancel:
		return h.cancel(s)
	case action.TypeRetry:
		return h.retry(ctx, s)
	}
	return agenterr.Newf(agenterr.KindServerError, "conversation", "unroutable action %q", a.Type)
}

func (h *Conversation) greet(s *store.Session) error {
	h.deps.appendAgentText(s, registry.KeyGreeting)
	h.deps.setPhase(s, phase.AwaitingInput)
	return nil
}

// userMessage classifies typed text and re-dispatches it as the action
// it stands for. Only brief input is answered here directly.
func (h *Conversation) userMessage(ctx context.Context, s *store.Session, text string) error {
	h.deps.appendUserText(s, text)

	det := detect.Detect(text, detect.Context{
		Phase:         s.Conversation.Phase(),
		HasResult:     s.Identification.HasResult(),
		PromptedField: s.Identification.PromptedField(),
	})

	switch det.Kind {
	case detect.KindCommand:
		return h.deps.Dispatch(ctx, s, action.Action{Type: commandAction(det.Command)})

	case detect.KindFieldCorrection:
		return h.deps.Dispatch(ctx, s, action.Action{
			Type:    action.TypeCorrectField,
			Payload: action.Payload{Field: string(det.Field), Value: det.Value},
		})

	case detect.KindDirectFieldValue:
		return h.deps.Dispatch(ctx, s, action.Action{
			Type:    action.TypeProvideMissingField,
			Payload: action.Payload{Field: string(det.Field), Value: det.Value},
		})

	case detect.KindChipEquivalent:
		if det.Affirmative {
			return h.deps.Dispatch(ctx, s, action.Action{Type: action.TypeConfirmResult})
		}
		return h.deps.Dispatch(ctx, s, action.Action{Type: action.TypeRejectResult})

	case detect.KindNewSearchCandidate:
		return h.deps.Dispatch(ctx, s, action.Action{
			Type:    action.TypeReidentify,
			Payload: action.Payload{Text: det.Query},
		})

	case detect.KindBriefInput:
		h.deps.appendAgentChips(s, registry.KeyBriefInput,
			chips.ForBriefInput(det.Query, s.Personality), det.Query)
		if s.Conversation.Phase() == phase.Greeting {
			h.deps.setPhase(s, phase.AwaitingInput)
		}
		return nil

	default: // fresh query
		return h.deps.Dispatch(ctx, s, action.Action{
			Type:    action.TypeIdentifyText,
			Payload: action.Payload{Text: det.Query},
		})
	}
}

func commandAction(c detect.Command) action.Type {
	switch c {
	case detect.CommandStartOver:
		return action.TypeStartOver
	case detect.CommandCancel:
		return action.TypeCancel
	case detect.CommandGoBack:
		return action.TypeGoBack
	default:
		return action.TypeRetry
	}
}

// startOver wipes every store, drops any pending retry and re-greets
// behind a divider. Reachable from any phase.
func (h *Conversation) startOver(s *store.Session) error {
	if h.deps.Tracker != nil {
		h.deps.Tracker.Clear(s.ID)
	}
	s.Identification.Reset()
	s.Enrichment.Reset()
	s.AddFlow.Destroy()
	s.Conversation.SetAddStep(store.StepNone)
	s.Conversation.StartOver()

	h.deps.appendAgentText(s, registry.KeyStartOver)
	h.deps.setPhase(s, phase.AwaitingInput)
	h.deps.markCritical(s)
	return nil
}

// goBack is a single-step backtrack. Anywhere it has no meaning it is a
// silent no-op.
func (h *Conversation) goBack(s *store.Session) error {
	switch s.Conversation.Phase() {
	case phase.Confirming:
		s.Conversation.DisableChips()
		h.deps.setPhase(s, phase.AwaitingInput)
	case phase.AddingWine:
		s.AddFlow.Destroy()
		s.Conversation.SetAddStep(store.StepNone)
		s.Conversation.DisableChips()
		h.deps.setPhase(s, phase.Confirming)
	}
	return nil
}

// cancel closes the agent surface without resetting state. Mid-stream
// cancellation has its own actions per capability.
func (h *Conversation) cancel(s *store.Session) error {
	h.deps.appendAgentText(s, registry.KeyCancelled)
	h.deps.notify(s, "panel_closed", nil)
	return nil
}

// retry replays the most recent retryable action with its original
// payload, if one was recorded inside the retry window.
func (h *Conversation) retry(ctx context.Context, s *store.Session) error {
	if h.deps.Tracker != nil {
		if recorded, ok := h.deps.Tracker.Take(s.ID); ok {
			return h.deps.Dispatch(ctx, s, recorded)
		}
	}
	h.deps.appendAgentChips(s, registry.KeyNothingToRetry, chips.ForError(agenterr.KindValidation, s.Personality))
	return nil
}
