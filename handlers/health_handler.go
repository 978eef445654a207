package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/andersoncassiani/chatsuite/pkg/redis"
)

// HealthHandler handles health checks.
type HealthHandler struct {
	botDB        *sqlx.DB
	appDB        *sqlx.DB
	redis        *redis.Client
	checkTimeout time.Duration
}

func NewHealthHandler(botDB, appDB *sqlx.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		botDB:        botDB,
		appDB:        appDB,
		redis:        redisClient,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and basic component statuses (both DBs and Redis).
// @Summary Health check
// @Description Returns overall status with bot DB, app DB and Redis connectivity results
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	checkDB := func(db *sqlx.DB) string {
		if db == nil {
			overallStatus = "down"
			return "down"
		}
		if err := db.PingContext(ctx); err != nil {
			overallStatus = "down"
			return "down"
		}
		return "up"
	}

	botStatus := checkDB(h.botDB)
	appStatus := checkDB(h.appDB)

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

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"botDatabase": map[string]any{
				"status": botStatus,
			},
			"appDatabase": map[string]any{
				"status": appStatus,
			},
			"redis": map[string]any{
				"status": redisStatus,
			},
		},
	})
}
