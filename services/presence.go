package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"chirp-server/models"
)

// PresenceRegistry 按用户计数的在线状态登记表。
// 同一个用户开多个连接时，只有首个连接上线、最后一个连接下线会触发状态变化，
// 关掉一个标签页不会把还开着其他标签页的用户标成离线。
type PresenceRegistry struct {
	db     *gorm.DB
	hub    *Hub
	counts map[string]int
	mu     sync.Mutex
}

func NewPresenceRegistry(db *gorm.DB) *PresenceRegistry {
	return &PresenceRegistry{
		db:     db,
		counts: make(map[string]int),
	}
}

// AttachHub 绑定广播通道（Hub 和 Registry 互相引用，启动时再接上）
func (p *PresenceRegistry) AttachHub(hub *Hub) {
	p.hub = hub
}

// Connected 连接建立，首个连接时标记上线
func (p *PresenceRegistry) Connected(userID string) {
	p.mu.Lock()
	p.counts[userID]++
	first := p.counts[userID] == 1
	p.mu.Unlock()

	if first {
		p.setActive(userID, true)
	}
}

// Disconnected 连接断开，最后一个连接断开时标记离线。
// 没登记过的用户直接忽略，不能凭空广播一次离线
func (p *PresenceRegistry) Disconnected(userID string) {
	p.mu.Lock()
	count, ok := p.counts[userID]
	if !ok {
		p.mu.Unlock()
		return
	}
	count--
	last := count <= 0
	if last {
		delete(p.counts, userID)
	} else {
		p.counts[userID] = count
	}
	p.mu.Unlock()

	if last {
		p.setActive(userID, false)
	}
}

// IsOnline 用户是否至少有一个活跃连接
func (p *PresenceRegistry) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[userID] > 0
}

func (p *PresenceRegistry) setActive(userID string, active bool) {
	now := time.Now()
	if p.db != nil {
		err := p.db.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{"is_active": active, "last_seen": now}).Error
		if err != nil {
			log.Println("Failed to persist presence:", err)
		}
	}
	if p.hub != nil {
		// 任何用户的列表页都可能展示任何人的在线状态，全局广播
		p.hub.BroadcastAll("presence_update", map[string]interface{}{
			"user_id":   userID,
			"is_active": active,
			"last_seen": now,
		})
	}
}
