package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/dispatch"
	"github.com/cadencehq/cadence/internal/platform"
	"github.com/cadencehq/cadence/internal/service"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	ContentService   *service.ContentService
	GeneratorService *service.GeneratorService
	StatsService     *service.StatsService
	Scheduler        *service.Scheduler
	Dispatcher       *dispatch.Dispatcher
	Registry         *platform.Registry
	StatsUpdater     *service.StatsUpdater
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Register platform adapters
	registry := platform.NewRegistry(logger)
	for _, pc := range cfg.Platforms {
		if !pc.Enabled {
			continue
		}
		adapter := platform.NewHTTPAdapter(platform.Platform(pc.Name), pc.Endpoint, pc.Token)
		if err := registry.Register(adapter); err != nil {
			logger.Error("Failed to register platform adapter",
				zap.String("platform", pc.Name), zap.Error(err))
		}
	}

	// Initialize services
	dispatchCfg := dispatch.Config{
		Retry: dispatch.RetryConfig{
			MaxAttempts: cfg.Dispatch.MaxAttempts,
		},
		RatePerMinute: cfg.Dispatch.RatePerMinute,
		PoolSize:      cfg.Dispatch.PoolSize,
	}
	if d, err := time.ParseDuration(cfg.Dispatch.BaseDelay); err == nil {
		dispatchCfg.Retry.BaseDelay = d
	}
	if d, err := time.ParseDuration(cfg.Dispatch.MaxDelay); err == nil {
		dispatchCfg.Retry.MaxDelay = d
	}

	statsService := service.NewStatsService(db, logger)
	dispatcher := dispatch.New(dispatchCfg, registry, db, statsService, logger)
	contentService := service.NewContentService(db, logger)
	generatorService := service.NewGeneratorService(&cfg.OpenAI, logger)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, db, contentService, dispatcher)
	statsUpdater := service.NewStatsUpdater(statsService, logger, 15*time.Minute)

	// Create router
	router := gin.New()

	srv := &Server{
		Config:           cfg,
		DB:               db,
		Router:           router,
		Logger:           logger,
		ContentService:   contentService,
		GeneratorService: generatorService,
		StatsService:     statsService,
		Scheduler:        scheduler,
		Dispatcher:       dispatcher,
		Registry:         registry,
		StatsUpdater:     statsUpdater,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"time":      time.Now().Unix(),
			"platforms": s.Registry.Available(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		content := api.Group("/content")
		{
			content.POST("", s.handleCreateContent)
			content.GET("", s.handleListContent)
			content.GET("/:id", s.handleGetContent)
			content.POST("/:id/schedule", s.handleScheduleContent)
			content.POST("/:id/dispatch", s.handleDispatchContent)
			content.POST("/:id/archive", s.handleArchiveContent)
			content.POST("/optimize", s.handleOptimizeContent)
			content.GET("/suggest-times", s.handleSuggestTimes)
		}

		workflows := api.Group("/workflows")
		{
			workflows.POST("", s.handleCreateWorkflow)
			workflows.GET("", s.handleListWorkflows)
			workflows.POST("/:id/pause", s.handlePauseWorkflow)
			workflows.POST("/:id/resume", s.handleResumeWorkflow)
		}

		trendsGroup := api.Group("/trends")
		{
			trendsGroup.POST("", s.handleCreateTrend)
			trendsGroup.POST("/rank", s.handleRankTrends)
		}

		api.POST("/generate", s.handleGenerate)
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler and stats refresh
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	s.StatsUpdater.Start(ctx)

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop background loops first
	s.Scheduler.Stop()
	s.StatsUpdater.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
