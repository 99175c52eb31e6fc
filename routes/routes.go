package routes

import (
	"chirp-server/controllers"
	"chirp-server/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes() *gin.Engine {

	r := gin.Default()
	// 配置跨域中间件
	corsConfig := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ws", controllers.WSController)
	// 文件内容由消息直接引用 URL，公开访问
	r.GET("/files/:file_id", controllers.GetFile)

	protected := r.Group("/api")

	protected.POST("/register", controllers.Register) // 绑定注册接口
	protected.POST("/login", controllers.Login)       // 绑定登录接口

	{
		protected.Use(middlewares.TokenAuthMiddleware())
		protected.GET("/userinfo", controllers.GetUserInfo)
		protected.PUT("/profile", controllers.CompleteProfile)
		protected.GET("/users", controllers.SearchUsers)
		protected.GET("/conversations", controllers.GetConversations)
		protected.POST("/conversations", controllers.CreateConversationHandler)
		protected.GET("/messages/:conversation_id", controllers.GetMessagesByConversationID)
		protected.POST("/messages/:conversation_id", controllers.SendMessage)
		protected.DELETE("/messages/:conversation_id/:message_id", controllers.DeleteMessage)
		protected.POST("/files", controllers.UploadFile)
	}

	return r
}
