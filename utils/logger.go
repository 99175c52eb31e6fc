package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"chirp-server/config"
)

// SetupLogger 日志同时输出到 stdout 和按天命名的轮转文件
func SetupLogger(cfg *config.Config) error {
	logDir := cfg.Logger.Directory
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := filepath.Join(logDir, fmt.Sprintf("chirp-%s.log", time.Now().Format("2006-01-02")))
	rotatingLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
	}

	log.SetOutput(io.MultiWriter(os.Stdout, rotatingLogger))
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Printf("Logging initialized: writing to %s", logFilePath)
	return nil
}
