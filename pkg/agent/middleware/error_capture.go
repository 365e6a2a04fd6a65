package middleware

import (
	"context"
	"fmt"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/chips"
	"wine-cellar-be/pkg/agent/phase"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/store"
)

var errorMessageKeys = map[agenterr.Kind]registry.Key{
	agenterr.KindTimeout:       registry.KeyErrTimeout,
	agenterr.KindRateLimit:     registry.KeyErrRateLimit,
	agenterr.KindQuotaExceeded: registry.KeyErrQuotaExceeded,
	agenterr.KindServerError:   registry.KeyErrServer,
	agenterr.KindInputQuality:  registry.KeyErrInputQuality,
	agenterr.KindValidation:    registry.KeyErrValidation,
	agenterr.KindNetwork:       registry.KeyErrNetwork,
}

// ErrorCapture is the single place a handler failure becomes user-visible:
// it classifies the error, appends exactly one error message plus an
// escape-path chip set, and forces phase = error. Handlers never swallow
// network/LLM errors themselves.
func ErrorCapture(log logger.ILogger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, s *store.Session, a action.Action) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = agenterr.Wrap(agenterr.KindServerError, "dispatch", fmt.Errorf("panic: %v", r))
					renderError(s, err, log, a)
				}
			}()

			err = next(ctx, s, a)
			if err != nil {
				renderError(s, err, log, a)
				// The failure is rendered; it does not propagate further.
				return nil
			}
			return nil
		}
	}
}

// RenderFailure renders a failure that happened outside a dispatch, such
// as in a stream consumer goroutine. The caller must hold the session lock.
func RenderFailure(s *store.Session, err error, log logger.ILogger, at action.Type) {
	renderError(s, err, log, action.Action{Type: at})
}

func renderError(s *store.Session, err error, log logger.ILogger, a action.Action) {
	kind := agenterr.Classify(err)
	if log != nil {
		log.Error("Agent", "action failed", map[string]interface{}{
			"action": string(a.Type),
			"kind":   string(kind),
			"error":  err.Error(),
		})
	}

	key, ok := errorMessageKeys[kind]
	if !ok {
		key = registry.KeyErrServer
	}
	s.Conversation.DisableChips()
	s.Conversation.Append(store.Message{
		Role:     store.RoleAgent,
		Category: store.CategoryError,
		Text:     registry.Text(s.Personality, key),
		Chips:    chips.ForError(kind, s.Personality),
	})
	s.Conversation.SetPhase(phase.Error)
}
