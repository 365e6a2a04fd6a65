package middleware

import (
	"context"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/store"
)

// precondition declares what must hold before a handler may run.
type precondition struct {
	phases       []phase.Phase // empty means any phase
	needsResult  bool
	needsAddFlow bool
}

// preconditions guards the actions that would misbehave against
// inconsistent state. Actions absent from the table run unconditionally.
var preconditions = map[action.Type]precondition{
	action.TypeConfirmResult:       {phases: []phase.Phase{phase.Confirming}, needsResult: true},
	action.TypeRejectResult:        {phases: []phase.Phase{phase.Confirming}, needsResult: true},
	action.TypeCorrectField:        {needsResult: true},
	action.TypeEscalate:            {needsResult: true},
	action.TypeReidentify:          {needsResult: true},
	action.TypeProvideMissingField: {needsResult: true},
	action.TypeContinueAsIs:        {needsResult: true},
	action.TypeSetNonVintage:       {needsResult: true},

	action.TypeEnrich:            {needsResult: true},
	action.TypeRefreshEnrichment: {needsResult: true},
	action.TypeAcceptCachedMatch: {needsResult: true},

	action.TypeAddToCellar:      {needsResult: true},
	action.TypeAddAnotherBottle: {needsResult: true, needsAddFlow: true},
	action.TypeCreateNewWine:    {needsResult: true, needsAddFlow: true},
	action.TypeSelectMatch:      {phases: []phase.Phase{phase.AddingWine}, needsAddFlow: true},
	action.TypeCreateNewEntity:  {phases: []phase.Phase{phase.AddingWine}, needsAddFlow: true},
	action.TypeExplainMatches:   {phases: []phase.Phase{phase.AddingWine}, needsAddFlow: true},
	action.TypeSubmitWine:       {needsResult: true, needsAddFlow: true},

	action.TypeSetBottleField:   {needsAddFlow: true},
	action.TypeNextFormStep:     {needsAddFlow: true},
	action.TypePrevFormStep:     {needsAddFlow: true},
	action.TypeSubmitBottleForm: {needsAddFlow: true},
}

// Precondition silently drops (with a warning) actions whose declared
// prerequisites are unmet, instead of letting the handler run against
// inconsistent state.
func Precondition(log logger.ILogger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, s *store.Session, a action.Action) error {
			pre, ok := preconditions[a.Type]
			if !ok {
				return next(ctx, s, a)
			}
			if !pre.met(s) {
				if log != nil {
					log.Warn("Agent", "dropped action with unmet preconditions", map[string]interface{}{
						"action": string(a.Type),
						"phase":  string(s.Conversation.Phase()),
					})
				}
				return nil
			}
			return next(ctx, s, a)
		}
	}
}

func (p precondition) met(s *store.Session) bool {
	if len(p.phases) > 0 {
		current := s.Conversation.Phase()
		found := false
		for _, ph := range p.phases {
			if ph == current {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.needsResult && !s.Identification.HasResult() {
		return false
	}
	if p.needsAddFlow && !s.AddFlow.Active() {
		return false
	}
	return true
}
