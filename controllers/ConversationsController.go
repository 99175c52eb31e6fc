package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chirp-server/config"
	"chirp-server/models"
	"chirp-server/services"
	"chirp-server/utils"
)

// GetConversations 返回当前用户的会话列表，按最近活跃排序
func GetConversations(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}

	conversations, err := services.Conversations.ListForUser(userInfo.ID)
	if err != nil {
		log.Println("Error fetching conversations:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}

	// 仅返回对方用户信息和最后一条消息
	formattedConversations := make([]map[string]interface{}, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]
		counterpart := conv.Counterpart(userInfo.ID)

		var lastMessage interface{}
		if conv.LastMessage != nil {
			lastMessage = conv.LastMessage.ToPayload()
		}

		formattedConversations = append(formattedConversations, map[string]interface{}{
			"conversation_id": conv.ConversationID,
			"is_self":         conv.IsSelf(),
			"participant":     counterpart.Summary(),
			"last_message":    lastMessage,
			"created_at":      conv.CreatedAt,
			"updated_at":      conv.UpdatedAt,
		})
	}

	utils.RespondSuccess(c, formattedConversations, nil)
}

// CreateConversationHandler 创建会话（幂等：已存在时返回现有会话）
func CreateConversationHandler(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}

	var requestData struct {
		OtherUserID string `json:"other_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// 校验目标用户是否存在（自聊时就是自己）
	var otherUser models.User
	if err := config.DB.Where("id = ?", requestData.OtherUserID).First(&otherUser).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User does not exist"})
		return
	}

	conversation, err := services.Conversations.GetOrCreate(userInfo.ID, requestData.OtherUserID)
	if err != nil {
		log.Println("Error creating conversation:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	utils.RespondSuccess(c, map[string]interface{}{
		"conversation_id": conversation.ConversationID,
		"is_self":         conversation.IsSelf(),
		"participant":     conversation.Counterpart(userInfo.ID).Summary(),
	}, nil)
}
