package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/audit"
)

// Entry is one append-only audit record.
type Entry struct {
	ID          int64     `json:"id"`
	ActorID     *int64    `json:"actor_id,omitempty"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Filter struct {
	EntityType string
	EntityID   int64
	ActorID    int64
	Limit      int
	Offset     int
}

func FromDataModel(row *auditDatamodel.AuditLog) *Entry {
	return &Entry{
		ID:          row.ID,
		ActorID:     row.ActorID,
		Action:      row.Action,
		EntityType:  row.EntityType,
		EntityID:    row.EntityID,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}
