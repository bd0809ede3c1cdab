package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vikasavnish/mandacarubroker/internal/db"
)

const healthTimeout = 2 * time.Second

// Dependency states reported by the health check
const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
	statusDisabled    = "disabled"
)

// HealthHandler reports the state of the service and its backing stores.
// A nil database means in-process storage; a nil redis client means events
// stay on this instance.
type HealthHandler struct {
	database *gorm.DB
	redis    *redis.Client
	version  string
}

func NewHealthHandler(database *gorm.DB, redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{database: database, redis: redisClient, version: version}
}

// ServeHTTP responds to health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{
		"status":   statusOK,
		"version":  h.version,
		"database": "memory",
		"redis":    statusDisabled,
	}

	if h.database != nil {
		body["database"] = statusOK
		if err := db.Ping(ctx, h.database); err != nil {
			log.Error().Err(err).Msg("Health check: database unavailable")
			body["database"] = statusUnavailable
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	if h.redis != nil {
		body["redis"] = statusOK
		if err := h.redis.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Health check: redis unavailable")
			body["redis"] = statusUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
