package services

import (
	"log"

	"chirp-server/models"
)

// IngestService 消息写入的唯一入口：鉴权、落库、更新会话预览、触发推送
type IngestService struct {
	conversations *ConversationService
	messages      *MessageService
	hub           *Hub
}

func NewIngestService(conversations *ConversationService, messages *MessageService, hub *Hub) *IngestService {
	return &IngestService{
		conversations: conversations,
		messages:      messages,
		hub:           hub,
	}
}

// Submit 提交一条新消息。消息落库成功即返回，向其他参与者的推送是异步的，
// 推送失败只记日志不影响结果，客户端重连后通过历史拉取补齐。
func (s *IngestService) Submit(actorID, conversationID string, input MessageInput) (*models.Message, error) {
	conversation, err := s.conversations.Get(conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(actorID) {
		return nil, ErrNotAuthorized
	}

	message, err := s.messages.Append(conversationID, actorID, input)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.Touch(conversationID, message.MessageID, message.CreatedAt); err != nil {
		// 消息已落库，会话预览等下一次写入自愈
		log.Println("Failed to update conversation preview:", err)
	}

	if s.hub != nil {
		go s.hub.PublishNewMessage(conversationID, message)
	}

	return message, nil
}
