package api

import (
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vikasavnish/mandacarubroker/internal/handlers"
	"github.com/vikasavnish/mandacarubroker/internal/middleware"
	"github.com/vikasavnish/mandacarubroker/internal/services"
	"github.com/vikasavnish/mandacarubroker/internal/websocket"
)

// HealthPath is left out of the access log
const HealthPath = "/api/health"

// Dependencies is everything the router hands out to handlers.
// DB and Redis may be nil.
type Dependencies struct {
	DB           *gorm.DB
	Redis        *redis.Client
	Hub          *websocket.Hub
	StockService *services.StockService
	AccessLogger *zerolog.Logger
	Version      string
}

// SetupRouter configures all routes and returns the router
func SetupRouter(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(
		middleware.RequestID,
		middleware.Logging(middleware.LoggingConfig{
			AccessLogger: deps.AccessLogger,
			SkipPaths:    []string{HealthPath},
		}),
		middleware.Recovery,
	)

	// Add health check endpoint
	router.Handle(HealthPath, NewHealthHandler(deps.DB, deps.Redis, deps.Version)).Methods("GET")

	// WebSocket route
	if deps.Hub != nil {
		router.HandleFunc("/ws", deps.Hub.HandleWebSocket)
	}

	stockHandler := handlers.NewStockHandler(deps.StockService)
	stockHandler.RegisterRoutes(router)

	return router
}
