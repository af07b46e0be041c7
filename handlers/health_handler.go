package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports database and Redis connectivity.
type HealthHandler struct {
	db           pinger
	redis        redisPinger
	checkTimeout time.Duration
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{
		db:           db,
		checkTimeout: 2 * time.Second,
	}
}

// WithRedis adds the Redis check. Without it Redis reports "disabled".
func (h *HealthHandler) WithRedis(r redisPinger) *HealthHandler {
	h.redis = r
	return h
}

type ComponentStatus struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status     string                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components"`
}

// Health returns overall status and basic component statuses (DB and Redis).
// The database is required; a Redis outage only degrades rate limiting.
// @Summary Health check
// @Description Returns overall status with DB and Redis connectivity results
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"
	httpStatus := http.StatusOK

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
	} else if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
	}
	if dbStatus == "down" {
		overallStatus = "down"
		httpStatus = http.StatusServiceUnavailable
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "down"
			if overallStatus == "ok" {
				overallStatus = "degraded"
			}
		} else {
			redisStatus = "up"
		}
	}

	return c.JSON(httpStatus, HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Components: map[string]ComponentStatus{
			"database": {Status: dbStatus},
			"redis":    {Status: redisStatus},
		},
	})
}
