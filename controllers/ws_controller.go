package controllers

import (
	"chirp-server/services"

	"github.com/gin-gonic/gin"
)

func WSController(ctx *gin.Context) {
	services.HandleWebSocket(ctx)
}
