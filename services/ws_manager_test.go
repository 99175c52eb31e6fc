package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp-server/models"
)

func testMessage(id, conversationID, content string) *models.Message {
	return &models.Message{
		MessageID:      id,
		ConversationID: conversationID,
		Type:           "text",
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

func TestPublishDeliversOncePerWindow(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient("alice")
	hub.Join(client, "conv")

	message := testMessage("m1", "conv", "hello")
	hub.PublishNewMessage("conv", message)
	hub.PublishNewMessage("conv", message) // 窗口内重复发布被抑制

	assert.Len(t, client.Send, 1)
}

func TestPublishDeliversAgainAfterWindow(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient("alice")
	hub.Join(client, "conv")

	message := testMessage("m1", "conv", "hello")
	hub.PublishNewMessage("conv", message)
	hub.sweepRecent(time.Now().Add(dedupWindow + time.Second))
	hub.PublishNewMessage("conv", message)

	assert.Len(t, client.Send, 2)
}

func TestLateSubscriberReceivesNothing(t *testing.T) {
	hub := NewHub(nil)
	early := newTestClient("alice")
	hub.Join(early, "conv")

	hub.PublishNewMessage("conv", testMessage("m1", "conv", "hello"))

	late := newTestClient("bob")
	hub.Join(late, "conv")

	assert.Len(t, early.Send, 1)
	assert.Empty(t, late.Send) // 推送不补发，历史靠拉取
}

func TestPublishScopedToConversation(t *testing.T) {
	hub := NewHub(nil)
	inRoom := newTestClient("alice")
	otherRoom := newTestClient("bob")
	hub.Join(inRoom, "conv-a")
	hub.Join(otherRoom, "conv-b")

	hub.PublishNewMessage("conv-a", testMessage("m1", "conv-a", "hello"))

	assert.Len(t, inRoom.Send, 1)
	assert.Empty(t, otherRoom.Send)
}

func TestRegisterAndUnregisterThroughRunLoop(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := newTestClient("alice")
	hub.register <- client

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return hub.clients[client]
	}, time.Second, 10*time.Millisecond)

	hub.Join(client, "conv")
	hub.unregister <- client

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		_, registered := hub.clients[client]
		_, inRoom := hub.rooms["conv"]
		return !registered && !inRoom
	}, time.Second, 10*time.Millisecond)

	// 注销后发送通道被关闭
	select {
	case _, open := <-client.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}

func TestBroadcastAllReachesEveryClient(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	alice := newTestClient("alice")
	bob := newTestClient("bob")
	hub.register <- alice
	hub.register <- bob

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 2
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastAll("presence_update", map[string]interface{}{"user_id": "alice", "is_active": true})

	assert.Len(t, alice.Send, 1)
	assert.Len(t, bob.Send, 1)
}
