package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chirp-server/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// _foreign_keys=1 让 sqlite 像 MySQL 一样强制外键，测试才能暴露约束问题
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		ID:          uuid.New().String(),
		Username:    username,
		Password:    "secret",
		DisplayName: username,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newTestClient(userID string) *Client {
	return &Client{
		Send:   make(chan []byte, 16),
		UserID: userID,
		rooms:  make(map[string]bool),
	}
}
