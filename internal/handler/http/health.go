package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"music-room/internal/version"
)

const statusHealthy = "healthy"

// HealthHandler 提供存活探测和健康报告，不检查任何外部依赖
type HealthHandler struct {
	serviceName string
	version     string
}

// NewHealthHandler 创建 HealthHandler 实例
func NewHealthHandler(serviceName, version string) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version}
}

type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Ping 处理 GET /api/ping
func (h *HealthHandler) Ping(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, PingResponse{
		Message:   "pong",
		Timestamp: timestamp(),
		Status:    statusHealthy,
	})
}

// Health 处理 GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, HealthResponse{
		Status:    statusHealthy,
		Service:   h.serviceName,
		Version:   h.version,
		Timestamp: timestamp(),
	})
}

// Version 处理 GET /api/version
func (h *HealthHandler) Version(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, version.Get())
}

func timestamp() string {
	return time.Now().Format(time.RFC3339Nano)
}
