package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"music-room/internal/domain"
	"music-room/internal/repository"
	"music-room/internal/repository/mocks"
)

func TestRoomEventPublishers_FansOutAndJoinsErrors(t *testing.T) {
	event := domain.RoomEvent{Type: domain.RoomEventDeleted, RoomID: "room_a"}
	errA := errors.New("a down")
	errC := errors.New("c down")

	a := mocks.NewRoomEventPublisher(t)
	b := mocks.NewRoomEventPublisher(t)
	c := mocks.NewRoomEventPublisher(t)
	a.On("PublishRoomEvent", mock.Anything, event).Return(errA).Once()
	b.On("PublishRoomEvent", mock.Anything, event).Return(nil).Once()
	c.On("PublishRoomEvent", mock.Anything, event).Return(errC).Once()

	err := repository.RoomEventPublishers{a, b, c}.PublishRoomEvent(context.Background(), event)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)
}

func TestRoomEventPublishers_Empty(t *testing.T) {
	assert.NoError(t, repository.RoomEventPublishers{}.PublishRoomEvent(context.Background(), domain.RoomEvent{}))
	assert.NoError(t, repository.NopRoomEventPublisher{}.PublishRoomEvent(context.Background(), domain.RoomEvent{}))
}
