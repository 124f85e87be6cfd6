package domain

import "time"

// 房间事件类型
const (
	RoomEventCreated = "room.created"
	RoomEventDeleted = "room.deleted"
)

// RoomEvent 描述房间集合发生的一次变化，供订阅方刷新房间列表。
type RoomEvent struct {
	Type       string    `json:"type"`
	RoomID     string    `json:"room_id"`
	Room       *Room     `json:"room,omitempty"` // 删除事件不携带房间
	OccurredAt time.Time `json:"occurred_at"`
}
