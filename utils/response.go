package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondSuccess 统一成功返回格式
func RespondSuccess(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": data,
		"meta": meta,
	})
}

// RespondCreated 创建成功
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"code": 201,
		"data": data,
	})
}
