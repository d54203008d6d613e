package notification

import "time"

type Notification struct {
	ID                 int64     `gorm:"primaryKey"`
	UserID             int64     `gorm:"column:user_id;not null;index"`
	Kind               string    `gorm:"column:kind;not null"`
	Message            string    `gorm:"column:message;not null"`
	LeaveApplicationID *int64    `gorm:"column:leave_application_id"`
	IsRead             bool      `gorm:"column:is_read;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
