package repository

import (
	"context"

	"music-room/internal/domain"
)

// RoomRepository 定义了房间数据的存储和检索操作。
// 实现必须可以被多个请求并发调用。
type RoomRepository interface {
	// Save 按 room.ID 插入或覆盖房间。
	Save(ctx context.Context, room *domain.Room) error

	// FindByID 根据房间 ID 查找房间。
	// 如果房间不存在，返回 ErrRoomNotFound。
	FindByID(ctx context.Context, id string) (*domain.Room, error)

	// FindAll 按插入顺序返回全部房间。
	FindAll(ctx context.Context) ([]domain.Room, error)

	// Delete 删除房间；不存在时返回 ErrRoomNotFound。
	Delete(ctx context.Context, id string) error

	// Exists 检查房间 ID 是否已被占用。
	Exists(ctx context.Context, id string) (bool, error)

	// Count 返回当前房间数量。
	Count(ctx context.Context) (int, error)
}
