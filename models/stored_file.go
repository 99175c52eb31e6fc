package models

import "time"

// StoredFile 上传的文件内容，直接存数据库，通过 /files/:file_id 访问
type StoredFile struct {
	FileID    string    `gorm:"primaryKey;type:varchar(36)" json:"file_id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	MimeType  string    `gorm:"type:varchar(127)" json:"mime_type"`
	Data      []byte    `gorm:"type:longblob" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
