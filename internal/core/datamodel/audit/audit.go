package audit

import "time"

type AuditLog struct {
	ID          int64     `gorm:"primaryKey"`
	ActorID     *int64    `gorm:"column:actor_id;index"`
	Action      string    `gorm:"column:action;not null"`
	EntityType  string    `gorm:"column:entity_type;not null;index:idx_audit_entity"`
	EntityID    int64     `gorm:"column:entity_id;index:idx_audit_entity"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
