package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/thereayou/planora/internal/assistant"
	"github.com/thereayou/planora/internal/database"
	"github.com/thereayou/planora/internal/handlers"
	"github.com/thereayou/planora/internal/services"
	ws "github.com/thereayou/planora/internal/websocket"
	"github.com/thereayou/planora/pkg/auth"
	"github.com/thereayou/planora/pkg/config"
)

type Server struct {
	Router       *gin.Engine
	Store        services.Store
	Redis        *redis.Client
	Hub          *ws.Hub
	Orchestrator *assistant.Orchestrator
	Logger       *zap.Logger

	cfg *config.Config
}

func NewServer(logger *zap.Logger) (*Server, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			logger.Info(".env not found, using environment variables")
		}
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		return nil, err
	}

	var store services.Store
	if cfg.Database.UseInMemory {
		logger.Info("using in-memory storage")
		store = database.NewMemoryDatabase()
	} else {
		db := &database.Database{}
		if err := db.Connect(cfg.Database.URL); err != nil {
			return nil, err
		}
		store = db
	}

	var rdb *redis.Client
	var guard assistant.Guard
	if cfg.Redis.URL != "" && !cfg.Database.UseInMemory {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		rdb = redis.NewClient(redisOpts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, err
		}
		guard = assistant.NewRedisGuard(rdb, cfg.Assistant.GuardTTL)
	} else {
		logger.Info("using in-memory generation guard")
		guard = assistant.NewMemoryGuard()
	}

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)

	userService := services.NewUserService(store, logger)
	eventService := services.NewEventService(store, logger)
	agendaService := services.NewAgendaService(store, logger)
	participantService := services.NewParticipantService(store, logger)

	hub := ws.NewHub(logger)
	go hub.Run()

	provider := assistant.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature)
	orchestrator := assistant.NewOrchestrator(
		store,
		participantService,
		agendaService,
		provider,
		guard,
		hub,
		logger,
		cfg.Assistant.Timeout,
	)

	deps := routerDeps{
		events:       handlers.NewEventHandler(eventService),
		agenda:       handlers.NewAgendaHandler(agendaService, hub),
		participants: handlers.NewParticipantHandler(participantService),
		presence:     handlers.NewPresenceHandler(participantService),
		chat:         handlers.NewChatHandler(orchestrator),
		users:        handlers.NewUserHandler(userService, store),
		webhooks:     handlers.NewWebhookHandler(userService, cfg.Auth.WebhookSecret, logger),
		websocket:    handlers.NewWebSocketHandler(hub, participantService, logger),
		jwtManager:   jwtMgr,
		redis:        rdb,
		userService:  userService,
	}

	router := gin.Default()
	APIEndpoints(router, deps)

	return &Server{
		Router:       router,
		Store:        store,
		Redis:        rdb,
		Hub:          hub,
		Orchestrator: orchestrator,
		Logger:       logger,
		cfg:          cfg,
	}, nil
}

func (s *Server) Run() error {
	s.Logger.Info("server starting", zap.String("port", s.cfg.Server.Port))
	if err := s.Router.Run(":" + s.cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown дожидается фоновых генераций и закрывает соединения
func (s *Server) Shutdown() {
	s.Orchestrator.Wait()
	s.Hub.Stop()
	if s.Redis != nil {
		s.Redis.Close()
	}
}
