package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AppInfo 是一个部署形态的静态元数据
type AppInfo struct {
	Title          string
	Description    string
	Tagline        string // 欢迎接口里的 description
	Version        string
	WelcomeMessage string
}

type WelcomeResponse struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Version     string `json:"version"`
}

// RootHandler 处理根路径的欢迎信息
type RootHandler struct {
	info AppInfo
}

func NewRootHandler(info AppInfo) *RootHandler {
	return &RootHandler{info: info}
}

// Welcome 处理 GET /
func (h *RootHandler) Welcome(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, WelcomeResponse{
		Message:     h.info.WelcomeMessage,
		Description: h.info.Tagline,
		Status:      "active",
		Version:     h.info.Version,
	})
}
