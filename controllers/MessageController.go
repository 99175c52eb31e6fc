package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chirp-server/models"
	"chirp-server/services"
	"chirp-server/utils"
)

// GetMessagesByConversationID 获取会话的消息列表
func GetMessagesByConversationID(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID := c.Param("conversation_id")

	conversation, err := services.Conversations.Get(conversationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// 确保用户是该会话的成员
	if !conversation.HasParticipant(userInfo.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not part of this conversation"})
		return
	}

	messages, err := services.Messages.ListByConversation(conversationID)
	if err != nil {
		log.Println("Error fetching messages:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	payloads := make([]map[string]interface{}, 0, len(messages))
	for i := range messages {
		payloads = append(payloads, messages[i].ToPayload())
	}
	utils.RespondSuccess(c, payloads, nil)
}

// SendMessage 发送消息，落库后同步返回，推送给其他参与者走异步
func SendMessage(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID := c.Param("conversation_id")

	var input struct {
		Content  string              `json:"content"`
		Type     string              `json:"type"`
		File     *models.MessageFile `json:"file"`
		ClientID string              `json:"client_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Type == "" {
		input.Type = "text"
	}

	message, err := services.Ingest.Submit(userInfo.ID, conversationID, services.MessageInput{
		Type:     input.Type,
		Content:  input.Content,
		File:     input.File,
		ClientID: input.ClientID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondCreated(c, message.ToPayload())
}

// DeleteMessage 软删除消息，仅发送者可操作
func DeleteMessage(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}
	messageID := c.Param("message_id")

	message, err := services.Messages.SoftDelete(messageID, userInfo.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, message.ToPayload(), nil)
}
