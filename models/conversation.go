package models

import "time"

type Conversation struct {
	ConversationID string    `gorm:"primaryKey;type:varchar(73)" json:"conversation_id"`
	ParticipantA   string    `gorm:"type:varchar(36);index" json:"participant_a"`
	ParticipantB   string    `gorm:"type:varchar(36);index" json:"participant_b"` // 自聊时与 A 相同
	LastMessageID  *string   `gorm:"type:varchar(36)" json:"last_message_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	// 关联用户A和用户B
	ParticipantAUser User     `gorm:"foreignKey:ParticipantA;references:ID" json:"participant_a_user"`
	ParticipantBUser User     `gorm:"foreignKey:ParticipantB;references:ID" json:"participant_b_user"`
	LastMessage      *Message `gorm:"foreignKey:LastMessageID;references:MessageID" json:"last_message"`
}

// HasParticipant 判断用户是否属于该会话
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// IsSelf 单人会话（自己给自己发消息）
func (c *Conversation) IsSelf() bool {
	return c.ParticipantA == c.ParticipantB
}

// Counterpart 返回会话中对方的用户信息，自聊时返回自己
func (c *Conversation) Counterpart(userID string) *User {
	if c.ParticipantA == userID && !c.IsSelf() {
		return &c.ParticipantBUser
	}
	return &c.ParticipantAUser
}
