package websocket

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	httpHandler "music-room/internal/handler/http"
	"music-room/internal/hub"
	"music-room/internal/service"
)

// SnapshotMessage 是连接建立后发送的第一条消息
type SnapshotMessage struct {
	Type  string      `json:"type"` // 固定为 "snapshot"
	Rooms interface{} `json:"rooms,omitempty"`
	Room  interface{} `json:"room,omitempty"`
}

// WebSocketHandler 负责处理 WebSocket 升级请求和客户端注册
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	hub         *hub.Hub
	roomService *service.RoomService
}

// NewWebSocketHandler 创建 WebSocketHandler 实例。allowedOrigins 为空时接受任意来源。
func NewWebSocketHandler(h *hub.Hub, roomService *service.RoomService, allowedOrigins []string) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if roomService == nil {
		panic("RoomService cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			return lo.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}
	return &WebSocketHandler{upgrader: upgrader, hub: h, roomService: roomService}
}

// SubscribeAll 处理 GET /ws/rooms，推送所有房间的变化
func (h *WebSocketHandler) SubscribeAll(c *gin.Context) {
	rooms, err := h.roomService.ListRooms(c.Request.Context(), true)
	if err != nil {
		httpHandler.HandleServiceError(c, err)
		return
	}
	h.serve(c, hub.AllRooms, SnapshotMessage{Type: "snapshot", Rooms: rooms})
}

// SubscribeRoom 处理 GET /ws/rooms/:id，只推送该房间的变化
func (h *WebSocketHandler) SubscribeRoom(c *gin.Context) {
	roomID := c.Param("id")
	room, err := h.roomService.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		// 此时还未升级，可以返回普通的 HTTP 错误
		httpHandler.HandleServiceError(c, err)
		return
	}
	h.serve(c, roomID, SnapshotMessage{Type: "snapshot", Room: room})
}

func (h *WebSocketHandler) serve(c *gin.Context, topic string, snapshot SnapshotMessage) {
	logCtx := logrus.WithField("topic", topic)

	initial, err := json.Marshal(snapshot)
	if err != nil {
		logCtx.WithError(err).Error("WS Handler: Failed to marshal snapshot")
		httpHandler.ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写回了 HTTP 错误响应
		logCtx.WithError(err).Warn("WS Handler: Failed to upgrade connection")
		return
	}

	client := hub.NewClient(h.hub, conn, topic, initial)
	if err := h.hub.Register(client); err != nil {
		logCtx.WithError(err).Error("WS Handler: Failed to register client")
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"))
		conn.Close()
		return
	}
	client.Run()
	logCtx.Info("WS Handler: Client subscribed")
}
