// Package middleware provides the three composable wrappers applied
// around every dispatched action: error capture, retry tracking, and
// precondition validation.
package middleware

import (
	"context"

	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/store"
)

// Handler processes one action against a session.
type Handler func(ctx context.Context, s *store.Session, a action.Action) error

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Chain applies middlewares so the first listed runs outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
