package handlers

import (
	"net/http"

	"github.com/usercenter-next/internal/cache"

	"github.com/gin-gonic/gin"
)

// Health 健康检查：数据库与 Redis 连通性
func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"

	sqlDB, err := h.DB.DB()
	if err != nil {
		dbStatus = "error"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error"
	}
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	redisStatus := "disabled"
	if cache.Enabled() {
		redisStatus = "ok"
		if err := cache.Ping(c.Request.Context()); err != nil {
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status": overall,
		"db":     dbStatus,
		"redis":  redisStatus,
	})
}
