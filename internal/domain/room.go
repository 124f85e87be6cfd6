package domain

import "time"

// Room 表示一个音乐房间。
type Room struct {
	ID          string    `json:"id"`           // 服务端生成，形如 room_1a2b3c4d，创建后不可变
	Name        string    `json:"name"`         // 房间名称 (1-100 字符)
	Description *string   `json:"description"`  // 可选描述，缺省时序列化为 null
	Genre       *string   `json:"genre"`        // 可选的主要音乐流派
	IsPublic    bool      `json:"is_public"`    // 是否公开
	CreatedAt   time.Time `json:"created_at"`   // 创建时间，之后不再修改
	MemberCount int       `json:"member_count"` // 成员数，创建时为 1
}

// RoomCreate 是客户端创建房间时可提交的字段子集。
type RoomCreate struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Genre       *string `json:"genre"`
	IsPublic    *bool   `json:"is_public"` // nil 视为 true
}

// Public 返回创建请求的可见性，未提供时默认公开。
func (in RoomCreate) Public() bool {
	if in.IsPublic == nil {
		return true
	}
	return *in.IsPublic
}
