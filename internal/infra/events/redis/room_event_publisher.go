package redisevents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"music-room/internal/domain"
	"music-room/internal/repository"
)

// RoomEventPublisher 是 RoomEventPublisher 接口的 Redis Pub/Sub 实现
type RoomEventPublisher struct {
	client    *redis.Client
	keyPrefix string
}

// NewRoomEventPublisher 创建 RoomEventPublisher 实例
func NewRoomEventPublisher(client *redis.Client, keyPrefix string) *RoomEventPublisher {
	if client == nil {
		panic("redis client cannot be nil for RoomEventPublisher")
	}
	if keyPrefix == "" {
		keyPrefix = "mr:" // 默认前缀 "mr:" (music room)
	}
	return &RoomEventPublisher{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

var _ repository.RoomEventPublisher = (*RoomEventPublisher)(nil)

// Channel 返回房间事件所在的频道名
func (p *RoomEventPublisher) Channel() string {
	return p.keyPrefix + "rooms:events"
}

// PublishRoomEvent 将事件序列化为 JSON 并发布到房间事件频道
func (p *RoomEventPublisher) PublishRoomEvent(ctx context.Context, event domain.RoomEvent) error {
	channel := p.Channel()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal room event %s for room %s: %w", event.Type, event.RoomID, err)
	}

	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"channel":      channel,
			"payload_size": len(payload),
			"room_id":      event.RoomID,
			"event_type":   event.Type,
		}).WithError(err).Error("Redis Publish failed")
		return fmt.Errorf("redis: failed to publish room event to channel %s: %w", channel, err)
	}
	return nil
}
