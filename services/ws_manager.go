package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chirp-server/models"
)

const (
	pingInterval = 10 * time.Second // 发送 Ping 的间隔
	pongTimeout  = 15 * time.Second // 超过 15 秒未收到 Pong 断开连接
	dedupWindow  = 3 * time.Second  // 同一条消息的重复推送抑制窗口
)

// Client 代表一个 WebSocket 连接
type Client struct {
	Conn      *websocket.Conn
	Send      chan []byte
	UserID    string
	LastPing  time.Time
	rooms     map[string]bool // 已订阅的会话，由 Hub 的锁保护
	mu        sync.Mutex
	closeOnce sync.Once
}

// Hub 管理所有连接和按会话分组的广播
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool // conversation_id -> 订阅者
	register   chan *Client
	unregister chan *Client
	recent     map[string]time.Time // message_id 去重窗口
	presence   *PresenceRegistry
	mu         sync.Mutex
}

func NewHub(presence *PresenceRegistry) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		recent:     make(map[string]time.Time),
		presence:   presence,
	}
}

// Run 处理连接的注册/注销和去重窗口清理
func (h *Hub) Run() {
	sweep := time.NewTicker(dedupWindow)
	defer sweep.Stop()
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Println("New client connected:", client.UserID)
			if h.presence != nil {
				h.presence.Connected(client.UserID)
			}
			go client.StartHeartbeat()

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for conversationID := range client.rooms {
					if room, ok := h.rooms[conversationID]; ok {
						delete(room, client)
						if len(room) == 0 {
							delete(h.rooms, conversationID)
						}
					}
				}
				removed = true
			}
			h.mu.Unlock()
			if removed {
				client.CloseSendChannel()
				log.Println("Client disconnected:", client.UserID)
				if h.presence != nil {
					h.presence.Disconnected(client.UserID)
				}
			}

		case now := <-sweep.C:
			h.sweepRecent(now)
		}
	}
}

// Join 订阅一个会话的广播组，加入前的消息不会补发
func (h *Hub) Join(client *Client, conversationID string) {
	h.mu.Lock()
	room, ok := h.rooms[conversationID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[conversationID] = room
	}
	room[client] = true
	client.rooms[conversationID] = true
	h.mu.Unlock()
}

// PublishNewMessage 向会话的所有订阅者推送新消息，窗口期内同一条消息只推一次
func (h *Hub) PublishNewMessage(conversationID string, message *models.Message) {
	h.mu.Lock()
	if _, seen := h.recent[message.MessageID]; seen {
		h.mu.Unlock()
		return
	}
	h.recent[message.MessageID] = time.Now()
	h.mu.Unlock()

	h.publish(conversationID, "new_message", message.ToPayload())
}

// BroadcastAll 向全部在线连接广播，用于 presence 变化
func (h *Hub) BroadcastAll(event string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{"type": event, "data": data})
	if err != nil {
		log.Println("Error marshaling broadcast:", err)
		return
	}

	h.mu.Lock()
	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			log.Println("Skipping slow client:", client.UserID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) publish(conversationID, event string, data interface{}) {
	payload, err := json.Marshal(map[string]interface{}{"type": event, "data": data})
	if err != nil {
		log.Println("Error marshaling message:", err)
		return
	}

	h.mu.Lock()
	for client := range h.rooms[conversationID] {
		select {
		case client.Send <- payload:
		default:
			log.Println("Skipping slow client:", client.UserID)
		}
	}
	h.mu.Unlock()
}

// sweepRecent 清理去重窗口里过期的条目
func (h *Hub) sweepRecent(now time.Time) {
	h.mu.Lock()
	for messageID, at := range h.recent {
		if now.Sub(at) > dedupWindow {
			delete(h.recent, messageID)
		}
	}
	h.mu.Unlock()
}

// StartHeartbeat 定期发送 ping，Pong 超时就断开
func (c *Client) StartHeartbeat() {
	if c.Conn == nil {
		return
	}
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		if c.Conn == nil {
			c.mu.Unlock()
			return
		}
		if err := c.Conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
			c.mu.Unlock()
			c.Close()
			return
		}
		if time.Since(c.LastPing) > pongTimeout {
			c.mu.Unlock()
			log.Println("Client timeout, closing connection:", c.UserID)
			c.Close()
			return
		}
		c.mu.Unlock()
	}
}

// Close 关闭连接并从 Hub 注销
func (c *Client) Close() {
	c.mu.Lock()
	if c.Conn != nil {
		c.Conn.Close()
	}
	c.mu.Unlock()
}

// CloseSendChannel 幂等关闭发送通道
func (c *Client) CloseSendChannel() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}
