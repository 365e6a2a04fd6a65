package service

import (
	"context"
	"errors"
	"fmt"

	"wine-cellar-be/internal/config"
	"wine-cellar-be/internal/dto"
	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/internal/repository/memory"
	"wine-cellar-be/pkg/agent/action"
	"wine-cellar-be/pkg/agent/persist"
	"wine-cellar-be/pkg/agent/registry"
	"wine-cellar-be/pkg/agent/router"
	"wine-cellar-be/pkg/agent/store"
	"wine-cellar-be/pkg/sommelier"

	"github.com/google/uuid"
)

type IAgentService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionView, error)
	Dispatch(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.DispatchRequest) (*dto.SessionView, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId string) error

	// WarmEnrichment satisfies the agent's cache warming hook by handing
	// the payload to the async pipeline.
	WarmEnrichment(lookupKey string, res *sommelier.EnrichResult)
}

type agentService struct {
	sessions    *memory.SessionRepository
	coordinator *persist.Coordinator
	router      *router.Router
	publisher   IPublisherService
	agentCfg    config.AgentConfig
	log         logger.ILogger
}

func NewAgentService(
	sessions *memory.SessionRepository,
	coordinator *persist.Coordinator,
	agentRouter *router.Router,
	publisher IPublisherService,
	agentCfg config.AgentConfig,
	log logger.ILogger,
) IAgentService {
	return &agentService{
		sessions:    sessions,
		coordinator: coordinator,
		router:      agentRouter,
		publisher:   publisher,
		agentCfg:    agentCfg,
		log:         log,
	}
}

func (s *agentService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	session := store.NewSession(userId, registry.Personality(req.Personality), s.agentCfg.MessageCap, s.log)
	s.sessions.Save(session)

	if err := s.router.Dispatch(ctx, session, action.Action{Type: action.TypeGreet}); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{
		SessionId:   session.ID,
		Personality: session.Personality,
		Phase:       session.Conversation.Phase(),
	}, nil
}

func (s *agentService) GetSession(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionView, error) {
	session, err := s.resolve(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	var view *dto.SessionView
	session.Do(func() { view = buildView(session) })
	return view, nil
}

func (s *agentService) Dispatch(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.DispatchRequest) (*dto.SessionView, error) {
	session, err := s.resolve(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	a := action.Action{Type: action.Type(req.Type), Payload: req.Payload}
	if err := s.router.Dispatch(ctx, session, a); err != nil {
		return nil, err
	}
	s.sessions.Touch(sessionId)

	var view *dto.SessionView
	session.Do(func() { view = buildView(session) })
	return view, nil
}

func (s *agentService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId string) error {
	session, err := s.resolve(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	s.sessions.Delete(session.ID)
	return s.coordinator.Forget(ctx, session.ID)
}

func (s *agentService) WarmEnrichment(lookupKey string, res *sommelier.EnrichResult) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishWarmEnrichmentCache(context.Background(), &dto.WarmEnrichmentCacheMessage{
		LookupKey: lookupKey,
		Result:    res,
	})
	if err != nil {
		s.log.Error("agent_service", "failed to publish cache warming job", map[string]interface{}{
			"lookup_key": lookupKey,
			"error":      err.Error(),
		})
	}
}

// resolve finds the live session, falling back to a snapshot restore so
// a backgrounded client can pick up where it left off.
func (s *agentService) resolve(ctx context.Context, userId uuid.UUID, sessionId string) (*store.Session, error) {
	if session, ok := s.sessions.Get(sessionId); ok {
		if session.UserID != userId {
			return nil, fmt.Errorf("session %s does not belong to user", sessionId)
		}
		return session, nil
	}

	session, err := s.coordinator.Restore(ctx, sessionId, s.agentCfg.MessageCap)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, fmt.Errorf("session %s not found", sessionId)
		}
		return nil, err
	}
	if session.UserID != userId {
		return nil, fmt.Errorf("session %s does not belong to user", sessionId)
	}
	s.sessions.Save(session)
	return session, nil
}

// buildView must run under the session lock.
func buildView(session *store.Session) *dto.SessionView {
	msgs := session.Conversation.Messages()
	views := make([]dto.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, dto.MessageView{
			Id:         m.ID.String(),
			Role:       m.Role,
			Category:   m.Category,
			Text:       m.Text,
			Chips:      m.Chips,
			Result:     m.Result,
			Enrichment: m.Enrichment,
			ImageRef:   m.ImageRef,
			Disabled:   m.Disabled,
			Divider:    m.Divider,
			CreatedAt:  m.CreatedAt,
		})
	}

	view := &dto.SessionView{
		SessionId:   session.ID,
		Personality: session.Personality,
		Phase:       session.Conversation.Phase(),
		AddStep:     session.Conversation.AddStep(),
		Messages:    views,
		Result:      session.Identification.Result(),
		Enrichment:  session.Enrichment.Result(),
		Streaming:   session.Identification.Streaming() || session.Enrichment.Streaming(),
		Submitting:  session.AddFlow.Submitting(),
	}
	if session.AddFlow.Active() {
		bottle := session.AddFlow.Bottle()
		view.Bottle = &bottle
	}
	return view
}
