package calendar

import "time"

type Holiday struct {
	ID          int64     `gorm:"primaryKey"`
	Date        time.Time `gorm:"column:date;type:date;uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	Type        string    `gorm:"column:type;not null"`
	IsRecurring bool      `gorm:"column:is_recurring;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Holiday) TableName() string {
	return "holidays"
}

type AcademicEvent struct {
	ID            int64     `gorm:"primaryKey"`
	Title         string    `gorm:"column:title;not null"`
	StartDate     time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate       time.Time `gorm:"column:end_date;type:date;not null"`
	RestrictLeave bool      `gorm:"column:restrict_leave;not null"`
	Description   string    `gorm:"column:description"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AcademicEvent) TableName() string {
	return "academic_events"
}
