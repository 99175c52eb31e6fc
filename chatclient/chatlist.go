package chatclient

import (
	"sort"
	"strings"
	"time"
)

// Conversation 会话列表里的一项
type Conversation struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
	LastMessage *Message
}

// lastActivity 排序依据：最后一条消息的时间，没有消息时用会话创建时间
func (c *Conversation) lastActivity() time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return c.CreatedAt
}

// ChatList 会话列表，始终按最近活跃降序
type ChatList struct {
	conversations []Conversation
}

func NewChatList() *ChatList {
	return &ChatList{}
}

// Upsert 新增或更新一个会话并重排
func (l *ChatList) Upsert(conversation Conversation) {
	for i := range l.conversations {
		if l.conversations[i].ID == conversation.ID {
			l.conversations[i] = conversation
			l.resort()
			return
		}
	}
	l.conversations = append(l.conversations, conversation)
	l.resort()
}

// ApplyMessage 收到新消息（推送或确认）后更新对应会话的预览并重排
func (l *ChatList) ApplyMessage(message Message) {
	for i := range l.conversations {
		if l.conversations[i].ID != message.ConversationID {
			continue
		}
		existing := l.conversations[i].LastMessage
		if existing == nil || !message.CreatedAt.Before(existing.CreatedAt) {
			messageCopy := message
			l.conversations[i].LastMessage = &messageCopy
			l.resort()
		}
		return
	}
}

// Conversations 返回排序后的列表
func (l *ChatList) Conversations() []Conversation {
	result := make([]Conversation, len(l.conversations))
	copy(result, l.conversations)
	return result
}

func (l *ChatList) resort() {
	sort.SliceStable(l.conversations, func(i, j int) bool {
		a, b := l.conversations[i].lastActivity(), l.conversations[j].lastActivity()
		if !a.Equal(b) {
			return a.After(b)
		}
		// 活跃时间相同时按名称排序，保证列表稳定
		return strings.ToLower(l.conversations[i].DisplayName) < strings.ToLower(l.conversations[j].DisplayName)
	})
}
