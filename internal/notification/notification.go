package notification

import (
	"time"

	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
)

const (
	KindLeaveSubmitted    = "leave_submitted"
	KindApprovalRequested = "approval_requested"
	KindStepApproved      = "step_approved"
	KindLeaveApproved     = "leave_approved"
	KindLeaveRejected     = "leave_rejected"
	KindLeaveCancelled    = "leave_cancelled"
)

type Notification struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Kind               string    `json:"kind"`
	Message            string    `json:"message"`
	LeaveApplicationID *int64    `json:"leave_application_id,omitempty"`
	IsRead             bool      `json:"is_read"`
	CreatedAt          time.Time `json:"created_at"`
}

func (n *Notification) ToDataModel() *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:                 n.ID,
		UserID:             n.UserID,
		Kind:               n.Kind,
		Message:            n.Message,
		LeaveApplicationID: n.LeaveApplicationID,
		IsRead:             n.IsRead,
		CreatedAt:          n.CreatedAt,
	}
}

func FromDataModel(row *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:                 row.ID,
		UserID:             row.UserID,
		Kind:               row.Kind,
		Message:            row.Message,
		LeaveApplicationID: row.LeaveApplicationID,
		IsRead:             row.IsRead,
		CreatedAt:          row.CreatedAt,
	}
}
