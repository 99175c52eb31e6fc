package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleWebSocketRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	InitToken("test-secret", 1)

	router := gin.New()
	router.GET("/ws", HandleWebSocket)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandleWebSocketUpgradeFailureWritesSingleResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	InitToken("test-secret", 1)
	token, err := GenerateToken(alice)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/ws", HandleWebSocket)

	// 普通 HTTP 请求没有升级头，gorilla 自己回 400，服务端不能再写一次响应
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "Failed to upgrade connection")
}
