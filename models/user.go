package models

import (
	"time"
)

// User 用户模型
type User struct {
	ID                string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username          string     `json:"username" gorm:"uniqueIndex;type:varchar(64);not null"`
	Password          string     `json:"-" gorm:"not null"`
	Email             string     `json:"email" gorm:"type:varchar(255)"`
	DisplayName       string     `json:"display_name" gorm:"type:varchar(50)"`
	Avatar            string     `json:"avatar"`
	Bio               string     `json:"bio" gorm:"type:varchar(160)"`
	IsProfileComplete bool       `json:"is_profile_complete" gorm:"default:false"`
	IsActive          bool       `json:"is_active" gorm:"default:false"` // 是否有活跃连接
	LastSeen          *time.Time `json:"last_seen" gorm:"default:NULL"`  // 允许 NULL
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Summary 返回对外展示的用户信息
func (u *User) Summary() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"username":     u.Username,
		"display_name": u.DisplayName,
		"avatar":       u.Avatar,
		"is_active":    u.IsActive,
		"last_seen":    u.LastSeen,
	}
}
