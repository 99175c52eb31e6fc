package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chirp-server/config"
	"chirp-server/models"
	"chirp-server/services"
	"chirp-server/utils"
)

// 用户注册
func Register(c *gin.Context) {
	var userInput struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email"`
	}

	if err := c.ShouldBindJSON(&userInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 检查用户名是否已存在
	var existingUser models.User
	if err := config.DB.Where("username = ?", userInput.Username).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userInput.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	newUser := models.User{
		ID:          uuid.New().String(),
		Username:    userInput.Username,
		Password:    string(hashedPassword),
		Email:       userInput.Email,
		DisplayName: userInput.Username,
		Bio:         "Hi, I am on Chirp!",
	}

	if err := config.DB.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := services.GenerateToken(newUser)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	utils.RespondSuccess(c, gin.H{"token": token, "user": newUser.Summary()}, nil)
}

// 用户登录
func Login(c *gin.Context) {
	var loginInput struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("username = ?", loginInput.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginInput.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := services.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	utils.RespondSuccess(c, gin.H{"token": token, "user": user.Summary()}, nil)
}

func GetUserInfo(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}
	utils.RespondSuccess(c, userInfo, nil)
}

// CompleteProfile 完善个人资料
func CompleteProfile(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}

	var profileInput struct {
		Username    string `json:"username" binding:"required"`
		DisplayName string `json:"display_name" binding:"required"`
		Bio         string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&profileInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and display name are required"})
		return
	}

	// 用户名唯一性检查
	var existingUser models.User
	err := config.DB.Where("username = ?", profileInput.Username).First(&existingUser).Error
	if err == nil && existingUser.ID != userInfo.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		return
	}

	updates := map[string]interface{}{
		"username":            profileInput.Username,
		"display_name":        profileInput.DisplayName,
		"bio":                 profileInput.Bio,
		"is_profile_complete": true,
	}
	if err := config.DB.Model(userInfo).Updates(updates).Error; err != nil {
		log.Println("Failed to update profile:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	var updated models.User
	if err := config.DB.Where("id = ?", userInfo.ID).First(&updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	utils.RespondSuccess(c, updated, nil)
}

// SearchUsers 按用户名或昵称搜索用户（用于发起会话）
func SearchUsers(c *gin.Context) {
	userInfo, ok := currentUser(c)
	if !ok {
		return
	}

	search := c.Query("search")
	if search == "" {
		utils.RespondSuccess(c, []interface{}{}, nil)
		return
	}

	var users []models.User
	pattern := "%" + search + "%"
	err := config.DB.
		Where("(username LIKE ? OR display_name LIKE ?) AND id <> ?", pattern, pattern, userInfo.ID).
		Limit(20).
		Find(&users).Error
	if err != nil {
		log.Println("Error searching users:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	results := make([]map[string]interface{}, 0, len(users))
	for i := range users {
		results = append(results, users[i].Summary())
	}
	utils.RespondSuccess(c, results, nil)
}
