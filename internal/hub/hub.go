package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"music-room/internal/domain"
	"music-room/internal/repository"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// 订阅端只发送控制帧，不需要很大的读缓冲
	maxMessageSize = 512

	sendBufferSize = 64
)

// AllRooms 是订阅全部房间事件时使用的主题
const AllRooms = ""

// ErrHubBusy 表示 Hub 的消息通道已满
var ErrHubBusy = errors.New("hub: message channel full")

// ErrHubStopped 表示 Hub 已经停止
var ErrHubStopped = errors.New("hub: stopped")

type messageType int

const (
	msgRegister messageType = iota
	msgUnregister
	msgBroadcast
)

// HubMessage 定义了在 Hub 内部通道传递的消息
type HubMessage struct {
	Type    messageType
	Client  *Client // 仅用于 register/unregister
	RoomID  string  // 仅用于 broadcast
	Payload []byte  // 仅用于 broadcast
}

// Hub 维护订阅房间事件的 WebSocket 客户端，并把房间事件推送给它们。
// 所有对 topics 的写操作都在 Run 的 goroutine 中完成。
type Hub struct {
	messageChan chan HubMessage
	// stopMu 让入队和关闭 quit 互斥，Stop 返回后不会再有消息进入 messageChan
	stopMu   sync.RWMutex
	quit     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// map[topic]map[*Client]bool，topic 为房间 ID 或 AllRooms
	topics   map[string]map[*Client]bool
	topicsMu sync.RWMutex
}

var _ repository.RoomEventPublisher = (*Hub)(nil)

// NewHub 创建并返回一个新的 Hub 实例
func NewHub() *Hub {
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		topics:      make(map[string]map[*Client]bool),
	}
}

// Run 启动 Hub 的主事件处理循环，应该在单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")
	defer close(h.done)

	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case msgRegister:
				h.registerClient(msg.Client)
			case msgUnregister:
				h.unregisterClient(msg.Client)
			case msgBroadcast:
				h.broadcast(msg.RoomID, msg.Payload)
			default:
				log.Warnf("Hub: Received unknown message type: %d", msg.Type)
			}
		case <-h.quit:
			h.closeAll()
			h.drainPending()
			log.Info("Hub is shutting down...")
			return
		}
	}
}

// Stop 关闭所有客户端并结束 Run 循环，可以重复调用
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.stopMu.Lock()
		close(h.quit)
		h.stopMu.Unlock()
	})
}

// Done 在 Run 退出后关闭
func (h *Hub) Done() <-chan struct{} { return h.done }

// QueueMessage 非阻塞地把消息放入 Hub 的处理通道
func (h *Hub) QueueMessage(msg HubMessage) error {
	h.stopMu.RLock()
	defer h.stopMu.RUnlock()
	select {
	case <-h.quit:
		return ErrHubStopped
	default:
	}
	select {
	case h.messageChan <- msg:
		return nil
	default:
		return ErrHubBusy
	}
}

// Register 请求 Hub 把客户端加入其主题
func (h *Hub) Register(client *Client) error {
	return h.QueueMessage(HubMessage{Type: msgRegister, Client: client})
}

// PublishRoomEvent 把房间事件推送给订阅了该房间或全部房间的客户端
func (h *Hub) PublishRoomEvent(_ context.Context, event domain.RoomEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("hub: failed to marshal room event %s for room %s: %w", event.Type, event.RoomID, err)
	}
	if err := h.QueueMessage(HubMessage{Type: msgBroadcast, RoomID: event.RoomID, Payload: payload}); err != nil {
		return fmt.Errorf("hub: failed to queue room event %s: %w", event.Type, err)
	}
	return nil
}

// ClientCount 返回某个主题当前的订阅者数量
func (h *Hub) ClientCount(topic string) int {
	h.topicsMu.RLock()
	defer h.topicsMu.RUnlock()
	return len(h.topics[topic])
}

// registerClient 处理客户端注册逻辑
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"topic": client.Topic(), "action": "registerClient"})

	h.topicsMu.Lock()
	if _, ok := h.topics[client.Topic()]; !ok {
		h.topics[client.Topic()] = make(map[*Client]bool)
	}
	h.topics[client.Topic()][client] = true
	h.topicsMu.Unlock()
	logCtx.Info("Client registered to Hub")
}

// unregisterClient 移除客户端并关闭其 send 通道，WritePump 随之退出
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"topic": client.Topic(), "action": "unregisterClient"})

	h.topicsMu.Lock()
	defer h.topicsMu.Unlock()
	clients, ok := h.topics[client.Topic()]
	if !ok || !clients[client] {
		logCtx.Debug("Client already unregistered")
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.topics, client.Topic())
	}
	logCtx.Info("Client unregistered from Hub")
}

// broadcast 发送给房间主题和 AllRooms 主题的订阅者，发送通道已满的客户端被断开
func (h *Hub) broadcast(roomID string, payload []byte) {
	var slow []*Client

	h.topicsMu.RLock()
	topics := []string{AllRooms}
	if roomID != AllRooms {
		topics = append(topics, roomID)
	}
	for _, topic := range topics {
		for client := range h.topics[topic] {
			select {
			case client.send <- payload:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.topicsMu.RUnlock()

	for _, client := range slow {
		logrus.WithField("topic", client.Topic()).Warn("Client send channel full, disconnecting")
		h.unregisterClient(client)
	}
}

// drainPending 处理停止前已入队但尚未处理的消息，未注册成功的客户端同样被关闭
func (h *Hub) drainPending() {
	for {
		select {
		case msg := <-h.messageChan:
			if msg.Type == msgRegister && msg.Client != nil {
				close(msg.Client.send)
			}
		default:
			return
		}
	}
}

func (h *Hub) closeAll() {
	h.topicsMu.Lock()
	defer h.topicsMu.Unlock()
	for topic, clients := range h.topics {
		for client := range clients {
			close(client.send)
		}
		delete(h.topics, topic)
	}
}
