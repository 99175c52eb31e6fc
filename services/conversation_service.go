package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"chirp-server/models"
)

// ConversationService 会话存取
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// ConversationIDFor 生成会话ID：参与者ID排序后拼接，保证 (A,B) 和 (B,A) 得到同一个会话
func ConversationIDFor(userID1, userID2 string) string {
	userIDs := []string{userID1, userID2}
	sort.Strings(userIDs)
	return fmt.Sprintf("%s_%s", userIDs[0], userIDs[1])
}

// GetOrCreate 获取或创建会话，requesterID == otherID 时为自聊会话
func (s *ConversationService) GetOrCreate(requesterID, otherID string) (*models.Conversation, error) {
	conversationID := ConversationIDFor(requesterID, otherID)

	conversation, err := s.Get(conversationID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	userIDs := []string{requesterID, otherID}
	sort.Strings(userIDs)
	newConversation := models.Conversation{
		ConversationID: conversationID,
		ParticipantA:   userIDs[0],
		ParticipantB:   userIDs[1],
	}
	if err := s.db.Create(&newConversation).Error; err != nil {
		// 并发创建时读取已有会话
		if existing, err2 := s.Get(conversationID); err2 == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return s.Get(conversationID)
}

// Get 按ID加载会话（带参与者信息）
func (s *ConversationService) Get(conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.
		Preload("ParticipantAUser").
		Preload("ParticipantBUser").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Where("conversation_id = ?", conversationID).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// ListForUser 返回用户的全部会话，按最近活跃排序，最后一条消息一并带出
func (s *ConversationService) ListForUser(userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.
		Preload("ParticipantAUser").
		Preload("ParticipantBUser").
		Preload("LastMessage").
		Preload("LastMessage.Sender").
		Where("participant_a = ? OR participant_b = ?", userID, userID).
		Order("updated_at DESC, conversation_id ASC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// Touch 更新会话的最后一条消息指针和活跃时间，仅由消息入口调用
func (s *ConversationService) Touch(conversationID, messageID string, at time.Time) error {
	return s.db.Model(&models.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"updated_at":      at,
		}).Error
}
