package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/EcoCommute/service-planner/internal/ai"
	"github.com/EcoCommute/service-planner/internal/application"
	"github.com/EcoCommute/service-planner/internal/auth"
	"github.com/EcoCommute/service-planner/internal/config"
	"github.com/EcoCommute/service-planner/internal/database"
	"github.com/EcoCommute/service-planner/internal/events"
	"github.com/EcoCommute/service-planner/internal/geo"
	"github.com/EcoCommute/service-planner/internal/handler"
	"github.com/EcoCommute/service-planner/internal/health"
	"github.com/EcoCommute/service-planner/internal/kafka"
	"github.com/EcoCommute/service-planner/internal/logger"
	"github.com/EcoCommute/service-planner/internal/middleware"
	"github.com/EcoCommute/service-planner/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-planner")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-planner",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.PlanModel{}, &repository.PlaceModel{}, &repository.FeedbackModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize geocoder and route generator
	geocoder, err := geo.NewGoogleGeocoder(
		cfg.GeoConfig.APIKey,
		cfg.GeoConfig.Region,
		cfg.GeoConfig.CacheTTL,
		log,
	)
	if err != nil {
		log.Fatal("failed to create geocoder", zap.Error(err))
	}

	generator := ai.NewClient(
		cfg.AIConfig.BaseURL,
		cfg.AIConfig.APIKey,
		cfg.AIConfig.Model,
		cfg.AIConfig.Temperature,
		cfg.AIConfig.Timeout,
		log,
	)

	// Initialize repositories
	planRepo := repository.NewGormPlanRepository(db)
	placeRepo := repository.NewGormPlaceRepository(db)
	feedbackRepo := repository.NewGormFeedbackRepository(db)

	// Initialize application services
	plannerService := application.NewPlannerService(
		planRepo,
		generator,
		geocoder,
		kafkaProducer,
		cfg.DefaultCurrency,
		log,
	)
	placeService := application.NewPlaceService(placeRepo, geocoder, log)
	feedbackService := application.NewFeedbackService(feedbackRepo, planRepo, log)

	// Initialize and start trip event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "planner-service"
	tripConsumer := events.NewTripEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		plannerService,
		log,
	)
	defer func() { _ = tripConsumer.Close() }()

	go func() {
		log.Info("starting trip event consumer")
		if err := tripConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("trip event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	planHandler := handler.NewPlanHandler(plannerService)
	locationHandler := handler.NewLocationHandler(plannerService)
	placeHandler := handler.NewPlaceHandler(placeService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSConfig.AllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-planner")
	healthHandler.RegisterRoutes(router)

	// Register routes
	planHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	locationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	placeHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	feedbackHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Register admin handler routes
	adminPlanHandler := handler.NewAdminPlanHandler(plannerService)
	adminPlanHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-planner...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-planner stopped")
}
