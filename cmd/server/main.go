package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vikasavnish/mandacarubroker/internal/api"
	"github.com/vikasavnish/mandacarubroker/internal/config"
	"github.com/vikasavnish/mandacarubroker/internal/db"
	"github.com/vikasavnish/mandacarubroker/internal/events"
	"github.com/vikasavnish/mandacarubroker/internal/logger"
	"github.com/vikasavnish/mandacarubroker/internal/repository"
	"github.com/vikasavnish/mandacarubroker/internal/services"
	"github.com/vikasavnish/mandacarubroker/internal/validation"
	"github.com/vikasavnish/mandacarubroker/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Init(cfg.Logging, "mandacarubroker", config.Version); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	if envErr != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	validate, err := validation.Compile(cfg.Validation.Rules)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid stock validation rules")
	}

	// Initialize storage
	var (
		database *gorm.DB
		repo     services.StockRepository
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn().Msg("Using in-memory storage, stocks are lost on restart")
		repo = repository.NewMemoryStockRepository()
	default:
		database, err = db.Connect(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		repo = repository.NewStockRepository(database)
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stock events go through Redis when it is configured so that clients
	// of every instance see every change
	var (
		redisClient *redis.Client
		broadcaster services.Broadcaster = wsHub
	)
	if cfg.Redis.Enabled() {
		redisClient, err = db.ConnectRedis(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis, events stay on this instance")
		} else if sub, err := events.Subscribe(ctx, redisClient, cfg.Redis.EventsChannel); err != nil {
			log.Warn().Err(err).Msg("Failed to subscribe to stock events, events stay on this instance")
		} else {
			fallback := events.NewFallback(events.NewRedisPublisher(redisClient, cfg.Redis.EventsChannel), wsHub)
			broadcaster = fallback
			go func() {
				if err := sub.Relay(ctx, wsHub); err != nil {
					log.Error().Err(err).Msg("Stock event relay stopped, events stay on this instance")
					fallback.Degrade()
				}
			}()
		}
	}

	stockService := services.NewStockService(repo, validate, broadcaster)
	accessLogger := logger.NewAccessLogger(cfg.Logging)

	// Initialize router
	router := api.SetupRouter(api.Dependencies{
		DB:           database,
		Redis:        redisClient,
		Hub:          wsHub,
		StockService: stockService,
		AccessLogger: &accessLogger,
		Version:      config.Version,
	})

	// Set up CORS
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("storage", cfg.Database.Driver).
			Bool("redis", redisClient != nil).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	wsHub.Stop()
	if redisClient != nil {
		redisClient.Close()
	}
	if database != nil {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	}

	log.Info().Msg("Server stopped")
}
