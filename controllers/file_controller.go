package controllers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chirp-server/config"
	"chirp-server/models"
	"chirp-server/utils"
)

const maxUploadSize = 350 << 20 // 350MB

// UploadFile 上传附件，内容直接入库，返回可引用的 URL
func UploadFile(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	storedFile := models.StoredFile{
		FileID:   uuid.New().String(),
		Name:     fileHeader.Filename,
		MimeType: mimeType,
		Data:     data,
	}
	if err := config.DB.Create(&storedFile).Error; err != nil {
		log.Println("Error storing file:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	utils.RespondCreated(c, map[string]interface{}{
		"file_id":   storedFile.FileID,
		"name":      storedFile.Name,
		"mime_type": storedFile.MimeType,
		"url":       "/files/" + storedFile.FileID,
	})
}

// GetFile 按ID返回文件内容，消息里直接引用 URL，不做鉴权
func GetFile(c *gin.Context) {
	fileID := c.Param("file_id")

	var storedFile models.StoredFile
	if err := config.DB.Where("file_id = ?", fileID).First(&storedFile).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	mimeType := storedFile.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Data(http.StatusOK, mimeType, storedFile.Data)
}
