package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"music-room/internal/domain"
	"music-room/internal/repository"
)

const (
	roomIDPrefix  = "room_"
	roomIDLength  = 8 // 随机后缀的十六进制字符数
	maxIDAttempts = 10
)

// RoomService 负责房间管理相关的业务逻辑。
type RoomService struct {
	roomRepo  repository.RoomRepository
	publisher repository.RoomEventPublisher
}

// NewRoomService 创建 RoomService 实例。publisher 为 nil 时不广播事件。
func NewRoomService(roomRepo repository.RoomRepository, publisher repository.RoomEventPublisher) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	if publisher == nil {
		publisher = repository.NopRoomEventPublisher{}
	}
	return &RoomService{
		roomRepo:  roomRepo,
		publisher: publisher,
	}
}

// ListRooms 返回全部房间；publicOnly 为 true 时只返回公开房间。
func (s *RoomService) ListRooms(ctx context.Context, publicOnly bool) ([]domain.Room, error) {
	rooms, err := s.roomRepo.FindAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("ListRooms: Repository error")
		return nil, ErrInternalServer
	}
	if publicOnly {
		rooms = lo.Filter(rooms, func(r domain.Room, _ int) bool { return r.IsPublic })
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}

// GetRoom 根据 ID 获取房间。
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	logCtx := logrus.WithField("room_id", roomID)
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Debug("GetRoom: Room not found")
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("GetRoom: Repository error")
		return nil, ErrInternalServer
	}
	return room, nil
}

// CreateRoom 校验请求并创建一个新房间，创建者算作第一个成员。
func (s *RoomService) CreateRoom(ctx context.Context, in domain.RoomCreate) (*domain.Room, error) {
	logCtx := logrus.WithField("name", in.Name)

	// 1. 校验失败时不触碰存储
	if err := domain.ValidateRoomCreate(in); err != nil {
		logCtx.WithError(err).Debug("CreateRoom: Validation failed")
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	// 2. 生成唯一 ID
	roomID, err := s.generateUniqueRoomID(ctx)
	if err != nil {
		logCtx.WithError(err).Error("CreateRoom: Failed to generate room id")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("room_id", roomID)

	room := &domain.Room{
		ID:          roomID,
		Name:        in.Name,
		Description: in.Description,
		Genre:       in.Genre,
		IsPublic:    in.Public(),
		CreatedAt:   time.Now(),
		MemberCount: 1,
	}

	// 3. 保存
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("CreateRoom: Failed to save room")
		return nil, ErrInternalServer
	}

	s.publish(ctx, domain.RoomEvent{Type: domain.RoomEventCreated, RoomID: room.ID, Room: room, OccurredAt: room.CreatedAt})
	logCtx.Info("Room created successfully")
	return room, nil
}

// DeleteRoom 删除房间。
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) error {
	logCtx := logrus.WithField("room_id", roomID)
	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Debug("DeleteRoom: Room not found")
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("DeleteRoom: Repository error")
		return ErrInternalServer
	}

	s.publish(ctx, domain.RoomEvent{Type: domain.RoomEventDeleted, RoomID: roomID, OccurredAt: time.Now()})
	logCtx.Info("Room deleted successfully")
	return nil
}

// SeedRooms 按原样写入固定房间，零值的 CreatedAt 使用当前时间。
func (s *RoomService) SeedRooms(ctx context.Context, rooms []domain.Room) error {
	now := time.Now()
	for i := range rooms {
		room := rooms[i]
		if room.CreatedAt.IsZero() {
			room.CreatedAt = now
		}
		if err := s.roomRepo.Save(ctx, &room); err != nil {
			return fmt.Errorf("seed room %s: %w", room.ID, err)
		}
	}
	logrus.WithField("count", len(rooms)).Info("Sample rooms seeded")
	return nil
}

// --- 私有辅助函数 ---

// generateUniqueRoomID 生成 room_ 前缀加 8 位十六进制的 ID，冲突时重试
func (s *RoomService) generateUniqueRoomID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := roomIDPrefix + uuid.New().String()[:roomIDLength]

		exists, err := s.roomRepo.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check room id %s: %w", id, err)
		}
		if !exists {
			return id, nil
		}
		logrus.WithField("room_id", id).Warnf("Generated room id already exists, retrying (attempt %d)...", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique room id after %d attempts", maxIDAttempts)
}

// publish 广播失败只记录日志，不影响已经完成的写操作。
// 写操作已经生效，事件不随请求取消而丢失。
func (s *RoomService) publish(ctx context.Context, event domain.RoomEvent) {
	if err := s.publisher.PublishRoomEvent(context.WithoutCancel(ctx), event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"room_id":    event.RoomID,
			"event_type": event.Type,
		}).Warn("Failed to publish room event")
	}
}
