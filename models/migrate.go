package models

import (
	"gorm.io/gorm"
)

// Migrate 自动迁移所有表
func Migrate(db *gorm.DB) error {
	// Message 在 Conversation 之前建表：会话的 last_message 外键引用消息表
	return db.AutoMigrate(
		&User{},
		&Message{},
		&Conversation{},
		&StoredFile{},
	)
}
