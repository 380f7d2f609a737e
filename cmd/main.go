package main

import (
	"fmt"
	"os"

	"agent-service/internal/docjob"
	"agent-service/internal/handler"
	"agent-service/internal/middleware"
	"agent-service/internal/model"
	"agent-service/internal/reconcile"
	"agent-service/pkg/config"
	"agent-service/pkg/database"
	"agent-service/pkg/elevenlabs"
	"agent-service/pkg/jwtutil"
	"agent-service/pkg/logger"
	"agent-service/prometheus"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	conf, err := config.Load("agent")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", conf.LogConfig()...)

	// Initialize database connection
	_, err = database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	// Run migrations
	if err := database.MigrateModels(
		&model.Organization{},
		&model.Project{},
		&model.Agent{},
		&model.Conversation{},
		&model.ConversationTurn{},
		&model.Lead{},
		&model.Document{},
		&model.DocumentChunk{},
		&model.Widget{},
	); err != nil {
		log.Fatal("Failed to migrate database models", zap.Error(err))
	}

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	// Remote conversational-AI provider
	provider := elevenlabs.NewClient(conf.ElevenLabs.BaseURL, conf.ElevenLabs.APIKey)

	// Document processing worker; re-enqueue rows a previous run left behind
	docWorker := docjob.NewWorker(log, conf.Documents.ChunkSize, conf.Documents.QueueSize)
	docWorker.Start()
	if err := docWorker.RequeueStuck(); err != nil {
		log.Fatal("Failed to recover stuck documents", zap.Error(err))
	}

	// Reconciliation sweep
	sweeper := reconcile.NewSweeper(provider, log)
	scheduler := cron.New()
	if conf.Sweep.Enabled {
		_, err := scheduler.AddFunc(conf.Sweep.Schedule, func() {
			if _, err := sweeper.Run(); err != nil {
				log.Error("Scheduled sweep failed", zap.Error(err))
			}
		})
		if err != nil {
			log.Fatal("Invalid sweep schedule", zap.String("schedule", conf.Sweep.Schedule), zap.Error(err))
		}
	}

	// Documents deferred by a full queue sit in processing until this picks
	// them up again.
	_, err = scheduler.AddFunc(conf.Documents.RequeueSchedule, func() {
		docWorker.RequeueAged(conf.Documents.RequeueMinAge)
	})
	if err != nil {
		log.Fatal("Invalid document requeue schedule", zap.String("schedule", conf.Documents.RequeueSchedule), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler.Init(conf, provider, docWorker, sweeper)

	// Initialize Echo framework
	e := echo.New()

	// Apply middleware. CORS is permissive: the widget runs on customer
	// sites and posts to the converse endpoint cross-origin.
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(echomw.CORS())

	// Ops endpoints
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Public routes used by the embedded widget
	e.POST("/converse", handler.Converse)
	e.GET("/widgets/:id/embed", handler.WidgetEmbed)

	// Secured dashboard routes
	api := e.Group("")
	api.Use(middleware.JWTAuthMiddleware(jwt))

	api.POST("/organizations", handler.CreateOrganization)
	api.GET("/organizations/:id", handler.GetOrganization)
	api.GET("/organizations", handler.ListOrganizations)

	api.POST("/projects", handler.CreateProject)
	api.GET("/projects/:id", handler.GetProject)
	api.GET("/projects", handler.ListProjects)
	api.DELETE("/projects/:id", handler.DeleteProject)

	api.POST("/agents", handler.CreateAgent)
	api.GET("/agents/:id", handler.GetAgent)
	api.GET("/agents", handler.ListAgents)
	api.DELETE("/agents/:id", handler.DeleteAgent)
	api.POST("/agents/:id/documents", handler.UploadAgentDocuments)

	api.GET("/conversations/:id", handler.GetConversation)
	api.GET("/conversations", handler.ListConversations)

	api.POST("/documents", handler.CreateDocument)
	api.GET("/documents/:id", handler.GetDocument)
	api.GET("/documents", handler.ListDocuments)

	api.POST("/widgets", handler.CreateWidget)
	api.GET("/widgets/:id", handler.GetWidget)
	api.PUT("/widgets/:id", handler.UpdateWidget)

	api.POST("/leads", handler.CreateLead)
	api.GET("/leads/:id", handler.GetLead)
	api.GET("/leads", handler.ListLeads)

	api.POST("/admin/agents/cleanup", handler.CleanupAgents)

	// Start server
	log.Info("Starting agent-service on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
