package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/troupe/internal/metrics"
)

const healthTimeout = 800 * time.Millisecond

func (h *Handler) HandleIndex(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Theatre Server is running",
		"status":  "ok",
	})
}

// HandleHealth pings the database.
func (h *Handler) HandleHealth(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	start := time.Now()
	err := h.ping(pingCtx)
	metrics.ObserveDBPing(time.Since(start))
	if err != nil {
		h.app.Logger.Warn("health check failed", zap.Error(err))
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ping(ctx context.Context) error {
	sqlDB, err := h.app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
