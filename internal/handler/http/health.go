package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger 检查后端存储是否可达 (repository.Store 满足该接口)
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 提供存活和就绪检查
type HealthHandler struct {
	store   Pinger
	timeout time.Duration
}

// NewHealthHandler 创建 HealthHandler 实例
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, timeout: 2 * time.Second}
}

// Ping 是不依赖任何后端的存活检查
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Healthz 在存储不可达时返回 503
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("Health check failed: store unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
