package chatclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func serverMessage(id, clientID, content string, offset time.Duration) Message {
	return Message{
		ID:             id,
		ConversationID: "conv",
		SenderID:       "alice",
		Type:           "text",
		Content:        content,
		ClientID:       clientID,
		CreatedAt:      base.Add(offset),
	}
}

func TestApplyPushIsIdempotent(t *testing.T) {
	timeline := NewTimeline()
	message := serverMessage("m1", "", "hello", 0)

	timeline.ApplyPush(message)
	timeline.ApplyPush(message)

	assert.Equal(t, 1, timeline.Len())
}

func TestApplyPushInsertsOutOfOrderMessages(t *testing.T) {
	timeline := NewTimeline()
	timeline.ApplyPush(serverMessage("m1", "", "first", 0))
	timeline.ApplyPush(serverMessage("m3", "", "third", 2*time.Minute))
	// 乱序到达的推送按 CreatedAt 插到正确位置
	timeline.ApplyPush(serverMessage("m2", "", "second", time.Minute))

	entries := timeline.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "m1", entries[0].ID)
	assert.Equal(t, "m2", entries[1].ID)
	assert.Equal(t, "m3", entries[2].ID)
}

func TestOptimisticThenConfirm(t *testing.T) {
	timeline := NewTimeline()
	timeline.AppendOptimistic(Message{ClientID: "x", Content: "hi", CreatedAt: base})

	entries := timeline.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Pending())

	timeline.Confirm("x", serverMessage("m1", "x", "hi", time.Second))

	entries = timeline.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].ID)
	assert.False(t, entries[0].Pending())
}

func TestPushBeforeConfirmDoesNotDuplicate(t *testing.T) {
	timeline := NewTimeline()
	timeline.AppendOptimistic(Message{ClientID: "x", Content: "hi", CreatedAt: base})

	server := serverMessage("m1", "x", "hi", time.Second)
	// 推送先于 HTTP 响应到达
	timeline.ApplyPush(server)
	timeline.Confirm("x", server)

	entries := timeline.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].ID)
	assert.False(t, entries[0].Pending())
}

func TestConfirmWithoutOptimisticEntryAppends(t *testing.T) {
	timeline := NewTimeline()
	timeline.Confirm("unknown", serverMessage("m1", "unknown", "hi", 0))

	entries := timeline.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].ID)
	assert.False(t, entries[0].Pending())
}

func TestLoadHistoryReplacesTimeline(t *testing.T) {
	timeline := NewTimeline()
	timeline.ApplyPush(serverMessage("stale", "", "old view", 0))

	history := []Message{
		serverMessage("m1", "", "first", 0),
		serverMessage("m2", "", "second", time.Minute),
	}
	timeline.LoadHistory(history)

	entries := timeline.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "m1", entries[0].ID)
	assert.Equal(t, "m2", entries[1].ID)
}

func TestLoadHistoryKeepsUnconfirmedOptimisticEntries(t *testing.T) {
	timeline := NewTimeline()
	timeline.AppendOptimistic(Message{ClientID: "x", Content: "in flight", CreatedAt: base.Add(2 * time.Minute)})

	timeline.LoadHistory([]Message{serverMessage("m1", "", "first", 0)})

	entries := timeline.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "m1", entries[0].ID)
	assert.True(t, entries[1].Pending())
	assert.Equal(t, "x", entries[1].ClientID)
}

func TestLoadHistoryAbsorbsConfirmedOptimisticEntries(t *testing.T) {
	timeline := NewTimeline()
	timeline.AppendOptimistic(Message{ClientID: "x", Content: "hi", CreatedAt: base})

	// 历史里已经包含这条消息（按 client_id 匹配），乐观条目被吸收
	timeline.LoadHistory([]Message{serverMessage("m1", "x", "hi", time.Second)})

	entries := timeline.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "m1", entries[0].ID)
	assert.False(t, entries[0].Pending())

	// 之后同一条消息的推送和确认都不再产生重复
	timeline.ApplyPush(serverMessage("m1", "x", "hi", time.Second))
	timeline.Confirm("x", serverMessage("m1", "x", "hi", time.Second))
	assert.Equal(t, 1, timeline.Len())
}

func TestAppendOptimisticRequiresClientID(t *testing.T) {
	timeline := NewTimeline()
	timeline.AppendOptimistic(Message{Content: "no client id", CreatedAt: base})
	assert.Equal(t, 0, timeline.Len())
}
