package main

import (
	"log"
	"time"

	"chirp-server/config"
	"chirp-server/models"
	"chirp-server/routes"
	"chirp-server/services"
	"chirp-server/utils"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := utils.SetupLogger(cfg); err != nil {
		log.Printf("Failed to setup logger: %v", err)
	}

	// 初始化数据库
	if err := config.InitDB(cfg); err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	// 自动迁移
	if err := models.Migrate(config.DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化服务层并启动后台任务
	services.Setup(config.DB, cfg)
	go services.Manager.Run()
	services.Messages.StartFileTTLSweeper(time.Duration(cfg.Cleanup.SweepIntervalMinutes) * time.Minute)

	// 注册路由
	r := routes.RegisterRoutes()

	// 启动服务
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
