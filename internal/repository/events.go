package repository

import (
	"context"
	"errors"

	"music-room/internal/domain"
)

// RoomEventPublisher 把房间变化广播给外部订阅方。
type RoomEventPublisher interface {
	PublishRoomEvent(ctx context.Context, event domain.RoomEvent) error
}

// NopRoomEventPublisher 丢弃所有事件，未配置 Redis 时使用。
type NopRoomEventPublisher struct{}

func (NopRoomEventPublisher) PublishRoomEvent(context.Context, domain.RoomEvent) error { return nil }

// RoomEventPublishers 依次把事件交给每个发布者，所有错误合并返回。
type RoomEventPublishers []RoomEventPublisher

func (ps RoomEventPublishers) PublishRoomEvent(ctx context.Context, event domain.RoomEvent) error {
	var errs []error
	for _, p := range ps {
		if err := p.PublishRoomEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
