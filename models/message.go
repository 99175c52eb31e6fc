package models

import (
	"time"
)

// MessageFile 消息附件（file 类型消息使用）
type MessageFile struct {
	Name      string     `json:"name"`
	MimeType  string     `json:"mime_type"`
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // 到期后由后台任务硬删除
}

type Message struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	MessageID      string     `json:"message_id" gorm:"uniqueIndex;type:varchar(36)"`
	ConversationID string     `json:"conversation_id" gorm:"type:varchar(73);index:idx_conversation_created"`
	SenderID       string     `json:"sender_id" gorm:"type:varchar(36);index"`
	Type           string     `json:"type" gorm:"type:varchar(10)"` // text, image, video, audio, document
	Content        string     `json:"content"`                      // 文本内容，file 类型为空
	FileName       string     `json:"-" gorm:"type:varchar(255)"`
	FileMimeType   string     `json:"-" gorm:"type:varchar(127)"`
	FileURL        string     `json:"-"`
	FileExpiresAt  *time.Time `json:"-" gorm:"index"`
	ClientID       string     `json:"client_id,omitempty" gorm:"type:varchar(64);index"` // 客户端乐观 UI 关联 ID
	Deleted        bool       `json:"deleted" gorm:"default:false"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index:idx_conversation_created"`
	// 发送者信息
	Sender User `gorm:"foreignKey:SenderID;references:ID" json:"sender"`
}

// File 返回附件信息，没有附件时为 nil
func (m *Message) File() *MessageFile {
	if m.FileURL == "" && m.FileName == "" {
		return nil
	}
	return &MessageFile{
		Name:      m.FileName,
		MimeType:  m.FileMimeType,
		URL:       m.FileURL,
		ExpiresAt: m.FileExpiresAt,
	}
}

// SetFile 写入附件字段
func (m *Message) SetFile(f *MessageFile) {
	if f == nil {
		m.FileName = ""
		m.FileMimeType = ""
		m.FileURL = ""
		m.FileExpiresAt = nil
		return
	}
	m.FileName = f.Name
	m.FileMimeType = f.MimeType
	m.FileURL = f.URL
	m.FileExpiresAt = f.ExpiresAt
}

// ToPayload 构造接口返回和 ws 推送共用的消息结构
func (m *Message) ToPayload() map[string]interface{} {
	var file interface{}
	if f := m.File(); f != nil {
		file = f
	}
	return map[string]interface{}{
		"id":              m.MessageID,
		"conversation_id": m.ConversationID,
		"sender": map[string]interface{}{
			"id":           m.Sender.ID,
			"display_name": m.Sender.DisplayName,
			"avatar":       m.Sender.Avatar,
		},
		"type":       m.Type,
		"content":    m.Content,
		"file":       file,
		"client_id":  m.ClientID,
		"deleted":    m.Deleted,
		"created_at": m.CreatedAt,
	}
}
