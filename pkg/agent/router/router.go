// Package router is the single entry point for agent actions. Every
// action passes through the fixed middleware chain and lands on exactly
// one handler family, resolved from a static table.
package router

import (
	"context"

	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/agenterr"
	"wine-cellar-be/pkg/agent/handler"
	"wine-cellar-be/pkg/agent/middleware"
	"wine-cellar-be/pkg/agent/store"
)

// Router owns the handler families and the middleware chain.
type Router struct {
	deps  *handler.Deps
	log   logger.ILogger
	chain middleware.Handler
}

// New builds the router and verifies at construction that every declared
// action type is owned by a registered family.
func New(deps *handler.Deps, log logger.ILogger) (*Router, error) {
	families := map[action.Family]interface {
		Handle(ctx context.Context, s *store.Session, a action.Action) error
	}{
		action.FamilyConversation:   handler.NewConversation(deps),
		action.FamilyIdentification: handler.NewIdentification(deps),
		action.FamilyEnrichment:     handler.NewEnrichment(deps),
		action.FamilyAddWine:        handler.NewAddWine(deps),
		action.FamilyForms:          handler.NewForms(deps),
	}

	registered := make([]action.Family, 0, len(families))
	for f := range families {
		registered = append(registered, f)
	}
	if err := action.Validate(registered); err != nil {
		return nil, err
	}

	route := func(ctx context.Context, s *store.Session, a action.Action) error {
		fam, ok := action.OwnerOf(a.Type)
		if !ok {
			return agenterr.Newf(agenterr.KindValidation, "route", "unknown action %q", a.Type)
		}
		return families[fam].Handle(ctx, s, a)
	}

	// Outermost first: error capture sees everything, retry tracking
	// records what precondition-approved handlers actually ran.
	chain := middleware.Chain(route,
		middleware.ErrorCapture(log),
		deps.Tracker.Middleware(),
		middleware.Precondition(log),
	)
	deps.SetDispatch(chain)

	return &Router{deps: deps, log: log, chain: chain}, nil
}

// Dispatch runs one action to completion under the session lock.
// Concurrent dispatches for the same session serialize; distinct
// sessions never contend.
func (r *Router) Dispatch(ctx context.Context, s *store.Session, a action.Action) error {
	s.Lock()
	defer s.Unlock()
	return r.chain(ctx, s, a)
}
