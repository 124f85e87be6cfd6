package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"music-room/internal/domain"
	"music-room/internal/service"
)

// RoomHandler 封装了与房间管理相关的 HTTP 处理逻辑
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	if roomService == nil {
		panic("RoomService cannot be nil for RoomHandler")
	}
	return &RoomHandler{roomService: roomService}
}

// DeleteRoomResponse 定义删除房间成功的响应结构体
type DeleteRoomResponse struct {
	Message string `json:"message"`
	RoomID  string `json:"room_id"`
}

// ListRooms 处理 GET /api/rooms/?public_only=bool
func (h *RoomHandler) ListRooms(c *gin.Context) {
	raw := c.DefaultQuery("public_only", "true")
	publicOnly, err := parseBool(raw)
	if err != nil {
		logrus.WithField("public_only", raw).Warn("Handler.ListRooms: Invalid public_only")
		ValidationErrorResponse(c, domain.ValidationErrors{{Field: "public_only", Message: "must be a boolean"}})
		return
	}

	rooms, err := h.roomService.ListRooms(c.Request.Context(), publicOnly)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, rooms)
}

// GetRoom 处理 GET /api/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomService.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, room)
}

// CreateRoom 处理 POST /api/rooms/
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	// 1. 解析请求体，格式或类型错误同样视为校验失败
	var req domain.RoomCreate
	if err := decodeJSONBody(c, &req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateRoom: Invalid input format")
		ValidationErrorResponse(c, bindErrorDetails(err))
		return
	}

	// 2. 调用 Service 层创建房间 (包含字段校验)
	room, err := h.roomService.CreateRoom(c.Request.Context(), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	// 3. 成功响应
	SuccessResponse(c, http.StatusCreated, room)
}

// DeleteRoom 处理 DELETE /api/rooms/:id
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID := c.Param("id")
	if err := h.roomService.DeleteRoom(c.Request.Context(), roomID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, DeleteRoomResponse{
		Message: "Room deleted successfully",
		RoomID:  roomID,
	})
}

// parseBool 在 strconv.ParseBool 之外还接受 yes/no/on/off
func parseBool(raw string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// errTrailingData 表示 JSON 对象之后还有多余内容
var errTrailingData = errors.New("unexpected data after JSON value")

// decodeJSONBody 解码请求体中唯一的一个 JSON 值
func decodeJSONBody(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// 只允许空白跟在 JSON 值之后
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// bindErrorDetails 把 JSON 解码错误转换成字段级错误
func bindErrorDetails(err error) domain.ValidationErrors {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return domain.ValidationErrors{{Field: "body", Message: "request body is required"}}
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, errTrailingData):
		return domain.ValidationErrors{{Field: "body", Message: "invalid JSON"}}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return domain.ValidationErrors{{Field: field, Message: fmt.Sprintf("must be a %s", jsonKind(typeErr.Type))}}
	case errors.As(err, &syntaxErr):
		return domain.ValidationErrors{{Field: "body", Message: "invalid JSON"}}
	default:
		return domain.ValidationErrors{{Field: "body", Message: err.Error()}}
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Struct:
		return "JSON object"
	default:
		return t.Kind().String()
	}
}
