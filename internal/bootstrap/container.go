package bootstrap

import (
	"context"
	"log"

	"wine-cellar-be/internal/config"
	"wine-cellar-be/internal/controller"
	intHandler "wine-cellar-be/internal/handler"
	"wine-cellar-be/internal/pkg/logger"
	"wine-cellar-be/internal/repository/memory"
	"wine-cellar-be/internal/repository/unitofwork"
	"wine-cellar-be/internal/service"
	"wine-cellar-be/internal/websocket"
	"wine-cellar-be/pkg/agent/handler"
	agentmw "wine-cellar-be/pkg/agent/middleware"
	"wine-cellar-be/pkg/agent/persist"
	"wine-cellar-be/pkg/agent/router"
	"wine-cellar-be/pkg/events"
	pktNats "wine-cellar-be/pkg/nats"
	"wine-cellar-be/pkg/sommelier/gemini"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	AgentController  controller.IAgentController
	CellarController controller.ICellarController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub       *websocket.Hub
	AgentStreamHandler *intHandler.AgentStreamHandler

	// AgentService resolves sessions for the websocket route.
	AgentService service.IAgentService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event bus (in-process jobs)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS (cross-service events)
	eventBus, err := pktNats.NewBus(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
	}
	if eventBus != nil {
		// Audit trail: every cellar event lands in the structured log.
		err := eventBus.Subscribe("events.>", "cellar-audit", func(ctx context.Context, event events.Event) error {
			sysLogger.Info("audit", event.EventType(), event.Payload())
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to start audit subscriber: %v", err)
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/agent_events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Session persistence
	snapshotStore := persist.NewRedisStore(rdb, cfg.Agent.SessionTTL)
	coordinator := persist.NewCoordinator(snapshotStore, cfg.Agent.PersistDebounce, sysLogger)
	sessionRepo := memory.NewSessionRepository(cfg.Agent.SessionTTL)

	// Enrichment cache + async warming
	cacheService := service.NewEnrichmentCacheService(uowFactory)
	publisherService := service.NewPublisherService(pubSub, cfg.Agent.EnrichCacheTopic)
	consumerService := service.NewConsumerService(pubSub, cfg.Agent.EnrichCacheTopic, cacheService)

	// Sommelier client
	sommClient := gemini.NewClient(gemini.Config{
		APIKey: cfg.Keys.GoogleGemini,
		Model:  cfg.Agent.Model,
	}, cacheService, sysLogger)

	// Cellar
	cellarService := service.NewCellarService(uowFactory, eventBus)

	// Agent engine
	tracker := agentmw.NewRetryTracker(cfg.Agent.RetryWindow)
	deps := &handler.Deps{
		Client:   sommClient,
		Cellar:   cellarService,
		Log:      sysLogger,
		Tracker:  tracker,
		Notifier: wsHub,
		Persist:  coordinator,
		Config: handler.Config{
			ConfidenceThreshold:      cfg.Agent.ConfidenceThreshold,
			ImageAutoVerifyThreshold: cfg.Agent.ImageAutoVerifyThreshold,
		},
	}
	agentRouter, err := router.New(deps, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to build agent router: %v", err)
	}

	agentService := service.NewAgentService(sessionRepo, coordinator, agentRouter, publisherService, cfg.Agent, sysLogger)
	deps.Warmer = agentService

	authService := service.NewAuthService(uowFactory, cfg.App.JWTSecret)

	return &Container{
		AuthController:   controller.NewAuthController(authService),
		AgentController:  controller.NewAgentController(agentService),
		CellarController: controller.NewCellarController(cellarService),

		ConsumerService:    consumerService,
		WebSocketHub:       wsHub,
		AgentStreamHandler: intHandler.NewAgentStreamHandler(agentService, wsHub, wsLogger),
		AgentService:       agentService,
	}
}
