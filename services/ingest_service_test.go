package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitUnknownConversation(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	ingest := NewIngestService(NewConversationService(db), NewMessageService(db), nil)

	_, err := ingest.Submit(alice.ID, "missing_missing", MessageInput{Type: "text", Content: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitByNonParticipant(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	eve := createTestUser(t, db, "eve")

	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	conversation, err := conversations.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	ingest := NewIngestService(conversations, messages, nil)
	_, err = ingest.Submit(eve.ID, conversation.ConversationID, MessageInput{Type: "text", Content: "hi"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	stored, err := messages.ListByConversation(conversation.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSubmitPersistsAndReordersConversations(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	ingest := NewIngestService(conversations, messages, nil)

	withBob, err := conversations.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := conversations.GetOrCreate(alice.ID, carol.ID)
	require.NoError(t, err)

	message, err := ingest.Submit(alice.ID, withBob.ConversationID, MessageInput{Type: "text", Content: "hi"})
	require.NoError(t, err)

	stored, err := messages.ListByConversation(withBob.ConversationID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "hi", stored[0].Content)
	assert.False(t, stored[0].Deleted)

	// 会话预览指向新消息，列表排到最前
	listed, err := conversations.ListForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, withBob.ConversationID, listed[0].ConversationID)
	assert.Equal(t, withCarol.ConversationID, listed[1].ConversationID)
	require.NotNil(t, listed[0].LastMessageID)
	assert.Equal(t, message.MessageID, *listed[0].LastMessageID)
}

func TestSubmitPushesToSubscribers(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conversations := NewConversationService(db)
	messages := NewMessageService(db)
	hub := NewHub(nil)
	ingest := NewIngestService(conversations, messages, hub)

	conversation, err := conversations.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	aliceClient := newTestClient(alice.ID)
	bobClient := newTestClient(bob.ID)
	hub.Join(aliceClient, conversation.ConversationID)
	hub.Join(bobClient, conversation.ConversationID)

	message, err := ingest.Submit(alice.ID, conversation.ConversationID, MessageInput{Type: "text", Content: "hello"})
	require.NoError(t, err)

	// 发送者和对方都收到同一条推送
	for _, client := range []*Client{aliceClient, bobClient} {
		event := receiveEvent(t, client)
		assert.Equal(t, "new_message", event["type"])
		data := event["data"].(map[string]interface{})
		assert.Equal(t, message.MessageID, data["id"])
		assert.Equal(t, "hello", data["content"])
	}
}

func receiveEvent(t *testing.T, client *Client) map[string]interface{} {
	t.Helper()
	select {
	case payload := <-client.Send:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push")
		return nil
	}
}
