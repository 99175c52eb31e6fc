package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chirp-server/models"
)

// MessageInput 新消息的提交内容
type MessageInput struct {
	Type     string
	Content  string
	File     *models.MessageFile
	ClientID string
}

var validMessageTypes = map[string]bool{
	"text":     true,
	"image":    true,
	"video":    true,
	"audio":    true,
	"document": true,
}

// MessageService 消息存取
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Append 校验并落库一条新消息
func (s *MessageService) Append(conversationID, senderID string, input MessageInput) (*models.Message, error) {
	if !validMessageTypes[input.Type] {
		return nil, ErrInvalidType
	}

	content := strings.TrimSpace(input.Content)
	if input.Type == "text" {
		if content == "" {
			return nil, ErrEmptyMessage
		}
	} else {
		if input.File == nil {
			return nil, ErrEmptyMessage
		}
		content = "" // file 类型消息不带文本内容
	}

	message := models.Message{
		MessageID:      uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Type:           input.Type,
		Content:        content,
		ClientID:       input.ClientID,
		CreatedAt:      time.Now(),
	}
	if input.Type != "text" {
		message.SetFile(input.File)
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	// 带出发送者信息
	if err := s.db.Where("id = ?", senderID).First(&message.Sender).Error; err != nil {
		log.Println("Failed to load sender for message:", err)
	}

	return &message, nil
}

// ListByConversation 返回会话的全部消息（含软删除的占位消息），按时间正序
func (s *MessageService) ListByConversation(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SoftDelete 软删除：清空内容和附件，保留 ID、时间和发送者用于占位展示
func (s *MessageService) SoftDelete(messageID, requesterID string) (*models.Message, error) {
	var message models.Message
	err := s.db.Preload("Sender").Where("message_id = ?", messageID).First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if message.SenderID != requesterID {
		return nil, ErrNotAuthorized
	}

	updates := map[string]interface{}{
		"deleted":         true,
		"content":         "",
		"file_name":       "",
		"file_mime_type":  "",
		"file_url":        "",
		"file_expires_at": nil,
	}
	if err := s.db.Model(&message).Updates(updates).Error; err != nil {
		return nil, err
	}

	message.Deleted = true
	message.Content = ""
	message.SetFile(nil)
	return &message, nil
}

// PurgeExpiredFiles 硬删除附件已过期的消息（仅限带 expires_at 的临时媒体），
// 连同入库的文件内容一起清掉
func (s *MessageService) PurgeExpiredFiles(now time.Time) (int64, error) {
	var purged int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var expired []struct {
			MessageID string
			FileURL   string
		}
		err := tx.Model(&models.Message{}).
			Select("message_id", "file_url").
			Where("file_expires_at IS NOT NULL AND file_expires_at <= ?", now).
			Scan(&expired).Error
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		messageIDs := make([]string, 0, len(expired))
		fileIDs := make([]string, 0, len(expired))
		for _, entry := range expired {
			messageIDs = append(messageIDs, entry.MessageID)
			if fileID := strings.TrimPrefix(entry.FileURL, "/files/"); fileID != entry.FileURL && fileID != "" {
				fileIDs = append(fileIDs, fileID)
			}
		}

		// 会话预览还指着过期消息时先摘掉指针，否则外键约束会挡住删除
		err = tx.Model(&models.Conversation{}).
			Where("last_message_id IN ?", messageIDs).
			UpdateColumn("last_message_id", nil).Error
		if err != nil {
			return err
		}

		result := tx.Where("message_id IN ?", messageIDs).Delete(&models.Message{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected

		if len(fileIDs) > 0 {
			if err := tx.Where("file_id IN ?", fileIDs).Delete(&models.StoredFile{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return purged, err
}

// StartFileTTLSweeper 启动后台清理任务
func (s *MessageService) StartFileTTLSweeper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		log.Printf("Starting file TTL sweeper with interval: %v", interval)
		for range ticker.C {
			purged, err := s.PurgeExpiredFiles(time.Now())
			if err != nil {
				log.Println("File TTL sweep failed:", err)
				continue
			}
			if purged > 0 {
				log.Printf("File TTL sweep purged %d expired messages", purged)
			}
		}
	}()
}
