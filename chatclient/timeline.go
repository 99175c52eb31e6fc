// Package chatclient maintains the client-side view of a chat: one ordered,
// deduplicated timeline per conversation, merging optimistic local messages,
// server history and live pushes, plus the activity-sorted conversation list.
package chatclient

import (
	"sort"
	"time"
)

// EntryState 时间线条目的确认状态
type EntryState int

const (
	// StatePending 本地乐观消息，尚未得到服务端确认，以 ClientID 为键
	StatePending EntryState = iota
	// StateConfirmed 服务端已确认，以服务端 ID 为键
	StateConfirmed
)

// File 消息附件
type File struct {
	Name      string
	MimeType  string
	URL       string
	ExpiresAt *time.Time
}

// Message 服务端消息（历史拉取和推送共用的形状）
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Type           string
	Content        string
	File           *File
	ClientID       string
	Deleted        bool
	CreatedAt      time.Time
}

// Entry 时间线条目
type Entry struct {
	Message
	State EntryState
}

// Pending 条目是否还在等服务端确认
func (e Entry) Pending() bool {
	return e.State == StatePending
}

// Timeline 单个会话的时间线。非并发安全，调用方（UI 层）串行使用。
type Timeline struct {
	entries    []Entry
	known      map[string]bool // 已存在的服务端消息 ID
	pendingIDs map[string]bool // 等待确认的 client_id
}

func NewTimeline() *Timeline {
	return &Timeline{
		known:      make(map[string]bool),
		pendingIDs: make(map[string]bool),
	}
}

// Entries 返回当前时间线（升序）
func (t *Timeline) Entries() []Entry {
	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	return result
}

func (t *Timeline) Len() int {
	return len(t.entries)
}

// LoadHistory 用服务端历史整体替换时间线。
// 历史里尚未出现的本地乐观消息保留，已经出现的（按 client_id 匹配）视为已确认，
// 这样无论历史拉取和推送谁先完成，合并结果都一样。
func (t *Timeline) LoadHistory(history []Message) {
	var kept []Entry
	for _, entry := range t.entries {
		if entry.Pending() && !historyContainsClientID(history, entry.ClientID) {
			kept = append(kept, entry)
		}
	}

	t.entries = nil
	t.known = make(map[string]bool)
	t.pendingIDs = make(map[string]bool)

	for _, message := range history {
		t.insert(Entry{Message: message, State: StateConfirmed})
		t.known[message.ID] = true
	}
	for _, entry := range kept {
		t.insert(entry)
		t.pendingIDs[entry.ClientID] = true
	}
}

// AppendOptimistic 发送前先插入本地乐观消息，ClientID 必填
func (t *Timeline) AppendOptimistic(message Message) {
	if message.ClientID == "" || t.pendingIDs[message.ClientID] {
		return
	}
	t.insert(Entry{Message: message, State: StatePending})
	t.pendingIDs[message.ClientID] = true
}

// Confirm 用服务端确认的消息替换对应的乐观条目。
// 若推送先于 HTTP 响应到达（乐观条目已被顶替），按 ApplyPush 幂等处理，不会产生重复。
func (t *Timeline) Confirm(clientID string, server Message) {
	index := t.indexOfPending(clientID)
	if index < 0 {
		t.ApplyPush(server)
		return
	}

	t.removeAt(index)
	delete(t.pendingIDs, clientID)

	if t.known[server.ID] {
		// 同一条消息已经通过推送落进时间线
		return
	}
	t.insert(Entry{Message: server, State: StateConfirmed})
	t.known[server.ID] = true
}

// ApplyPush 合并一条推送消息：按服务端 ID 幂等，按 CreatedAt 有序插入，
// 若对应的乐观条目还在则顶替它。
func (t *Timeline) ApplyPush(message Message) {
	if t.known[message.ID] {
		return
	}
	if message.ClientID != "" {
		if index := t.indexOfPending(message.ClientID); index >= 0 {
			t.removeAt(index)
			delete(t.pendingIDs, message.ClientID)
		}
	}
	t.insert(Entry{Message: message, State: StateConfirmed})
	t.known[message.ID] = true
}

// insert 按 CreatedAt 有序插入，相同时间戳保持先到先后
func (t *Timeline) insert(entry Entry) {
	index := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].CreatedAt.After(entry.CreatedAt)
	})
	t.entries = append(t.entries, Entry{})
	copy(t.entries[index+1:], t.entries[index:])
	t.entries[index] = entry
}

func (t *Timeline) removeAt(index int) {
	t.entries = append(t.entries[:index], t.entries[index+1:]...)
}

func (t *Timeline) indexOfPending(clientID string) int {
	if clientID == "" || !t.pendingIDs[clientID] {
		return -1
	}
	for i := range t.entries {
		if t.entries[i].Pending() && t.entries[i].ClientID == clientID {
			return i
		}
	}
	return -1
}

func historyContainsClientID(history []Message, clientID string) bool {
	if clientID == "" {
		return false
	}
	for _, message := range history {
		if message.ClientID == clientID {
			return true
		}
	}
	return false
}
