package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-room/internal/domain"
)

// newTestClient 创建不带连接的客户端，只使用 send 通道
func newTestClient(h *Hub, topic string, buffer int) *Client {
	return &Client{hub: h, topic: topic, send: make(chan []byte, buffer)}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(func() {
		h.Stop()
		<-h.Done()
	})
	return h
}

func receive(t *testing.T, c *Client) domain.RoomEvent {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var event domain.RoomEvent
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.RoomEvent{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected message: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_BroadcastRouting(t *testing.T) {
	h := startHub(t)
	all := newTestClient(h, AllRooms, 8)
	roomA := newTestClient(h, "room_a", 8)
	roomB := newTestClient(h, "room_b", 8)
	for _, c := range []*Client{all, roomA, roomB} {
		require.NoError(t, h.Register(c))
	}

	event := domain.RoomEvent{Type: domain.RoomEventCreated, RoomID: "room_a", OccurredAt: time.Now()}
	require.NoError(t, h.PublishRoomEvent(context.Background(), event))

	assert.Equal(t, "room_a", receive(t, all).RoomID)
	got := receive(t, roomA)
	assert.Equal(t, domain.RoomEventCreated, got.Type)
	assertNothing(t, roomB)

	assert.Equal(t, 1, h.ClientCount(AllRooms))
	assert.Equal(t, 1, h.ClientCount("room_a"))
}

func TestHub_Unregister(t *testing.T) {
	h := startHub(t)
	c := newTestClient(h, "room_a", 8)
	require.NoError(t, h.Register(c))
	require.NoError(t, h.QueueMessage(HubMessage{Type: msgUnregister, Client: c}))
	// 重复注销不会重复关闭通道
	require.NoError(t, h.QueueMessage(HubMessage{Type: msgUnregister, Client: c}))

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	assert.Eventually(t, func() bool { return h.ClientCount("room_a") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	h := startHub(t)
	slow := newTestClient(h, AllRooms, 1)
	require.NoError(t, h.Register(slow))

	for i := 0; i < 3; i++ {
		require.NoError(t, h.PublishRoomEvent(context.Background(),
			domain.RoomEvent{Type: domain.RoomEventDeleted, RoomID: "room_x", OccurredAt: time.Now()}))
	}

	assert.Eventually(t, func() bool { return h.ClientCount(AllRooms) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub()
	go h.Run()
	c := newTestClient(h, AllRooms, 8)
	require.NoError(t, h.Register(c))
	require.Eventually(t, func() bool { return h.ClientCount(AllRooms) == 1 }, time.Second, 10*time.Millisecond)

	h.Stop()
	h.Stop()
	<-h.Done()

	_, ok := <-c.send
	assert.False(t, ok)
	assert.ErrorIs(t, h.PublishRoomEvent(context.Background(), domain.RoomEvent{RoomID: "room_a"}), ErrHubStopped)
}

func TestHub_QueueFull(t *testing.T) {
	h := NewHub() // 不启动 Run，通道会被填满
	var err error
	for i := 0; i <= cap(h.messageChan); i++ {
		err = h.PublishRoomEvent(context.Background(), domain.RoomEvent{RoomID: "room_a"})
	}
	assert.ErrorIs(t, err, ErrHubBusy)
}

func TestHub_StopClosesPendingRegistrations(t *testing.T) {
	h := NewHub()
	// 注册消息在 Run 启动前就已入队
	clients := []*Client{newTestClient(h, AllRooms, 1), newTestClient(h, "room_a", 1), newTestClient(h, "room_b", 1)}
	for _, c := range clients {
		require.NoError(t, h.Register(c))
	}
	h.Stop()
	assert.ErrorIs(t, h.Register(newTestClient(h, AllRooms, 1)), ErrHubStopped)

	go h.Run()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	for _, c := range clients {
		_, ok := <-c.send
		assert.False(t, ok, "pending client %q should be closed", c.Topic())
	}
	assert.Empty(t, h.messageChan)
}
