package document

import "time"

type Document struct {
	ID                 int64     `gorm:"primaryKey"`
	UserID             int64     `gorm:"column:user_id;not null;index"`
	LeaveApplicationID *int64    `gorm:"column:leave_application_id;index"`
	FileName           string    `gorm:"column:file_name;not null"`
	ContentType        string    `gorm:"column:content_type;not null"`
	SizeBytes          int64     `gorm:"column:size_bytes;not null"`
	StorageKey         string    `gorm:"column:storage_key;uniqueIndex;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}
