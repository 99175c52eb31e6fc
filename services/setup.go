package services

import (
	"gorm.io/gorm"

	"chirp-server/config"
)

// 服务单例，由 Setup 初始化
var (
	Conversations *ConversationService
	Messages      *MessageService
	Ingest        *IngestService
	Presence      *PresenceRegistry
	Manager       *Hub
)

// Setup 初始化服务层
func Setup(db *gorm.DB, cfg *config.Config) {
	InitToken(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	Conversations = NewConversationService(db)
	Messages = NewMessageService(db)
	Presence = NewPresenceRegistry(db)
	Manager = NewHub(Presence)
	Presence.AttachHub(Manager)
	Ingest = NewIngestService(Conversations, Messages, Manager)
}
