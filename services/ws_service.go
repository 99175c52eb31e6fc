package services

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chirp-server/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// 客户端发来的事件
type clientEvent struct {
	Type           string              `json:"type"` // "join_chat" 或 "send_message"
	ConversationID string              `json:"conversation_id"`
	MessageType    string              `json:"message_type"`
	Content        string              `json:"content"`
	File           *models.MessageFile `json:"file"`
	ClientID       string              `json:"client_id"`
}

// HandleWebSocket 建立 WebSocket 连接，token 在握手时校验
func HandleWebSocket(ctx *gin.Context) {
	userID, err := ParseToken(ctx.Query("token"))
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade 失败时 gorilla 已经写过响应，这里只记录
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	client := &Client{
		Conn:     conn,
		Send:     make(chan []byte, 16),
		UserID:   userID,
		LastPing: time.Now(),
		rooms:    make(map[string]bool),
	}

	Manager.register <- client

	go client.ReadMessages()
	go client.WriteMessages()
}

// ReadMessages 读取客户端事件，退出时注销连接
func (c *Client) ReadMessages() {
	defer func() {
		Manager.unregister <- c
		c.Close()
	}()
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		if string(raw) == "pong" {
			c.mu.Lock()
			c.LastPing = time.Now()
			c.mu.Unlock()
			continue
		}

		var event clientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Println("Invalid ws event:", string(raw))
			continue
		}

		switch event.Type {
		case "join_chat":
			// 订阅时重新校验会话成员身份
			conversation, err := Conversations.Get(event.ConversationID)
			if err != nil || !conversation.HasParticipant(c.UserID) {
				log.Println("Rejected join_chat from", c.UserID, "to", event.ConversationID)
				continue
			}
			Manager.Join(c, event.ConversationID)

		case "send_message":
			messageType := event.MessageType
			if messageType == "" {
				messageType = "text"
			}
			input := MessageInput{
				Type:     messageType,
				Content:  event.Content,
				File:     event.File,
				ClientID: event.ClientID,
			}
			if _, err := Ingest.Submit(c.UserID, event.ConversationID, input); err != nil {
				log.Println("Failed to submit ws message:", err)
			}

		default:
			log.Println("Unknown ws event type:", event.Type)
		}
	}
}

// WriteMessages 把发送通道里的内容写到连接上
func (c *Client) WriteMessages() {
	for payload := range c.Send {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			break
		}
	}
}
