package leave

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is one step of an application's chain. A nil ApproverID marks a
// role-level step that any holder of ApproverRole may decide.
type Approval struct {
	ID            int64          `json:"id"`
	ApplicationID int64          `json:"leave_application_id"`
	Step          int            `json:"step"`
	ApproverRole  internal.Role  `json:"approver_role"`
	ApproverID    *int64         `json:"approver_id,omitempty"`
	Status        ApprovalStatus `json:"status"`
	Comments      string         `json:"comments,omitempty"`
	DecidedBy     *int64         `json:"decided_by,omitempty"`
	DecidedAt     *time.Time     `json:"decided_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CanDecide reports whether actor is the designated approver of the step.
// Nobody may decide a step of their own application.
func (a *Approval) CanDecide(actor internal.AuthContext, applicantID int64) bool {
	if actor.UserID == applicantID {
		return false
	}
	if a.ApproverID != nil {
		return *a.ApproverID == actor.UserID
	}
	return actor.Role == a.ApproverRole
}

func ApprovalFromDataModel(row *leaveDatamodel.LeaveApproval) *Approval {
	return &Approval{
		ID:            row.ID,
		ApplicationID: row.LeaveApplicationID,
		Step:          row.Step,
		ApproverRole:  internal.Role(row.ApproverRole),
		ApproverID:    row.ApproverID,
		Status:        ApprovalStatus(row.Status),
		Comments:      row.Comments,
		DecidedBy:     row.DecidedBy,
		DecidedAt:     row.DecidedAt,
		CreatedAt:     row.CreatedAt,
	}
}

func ApprovalToDataModel(a *Approval) *leaveDatamodel.LeaveApproval {
	return &leaveDatamodel.LeaveApproval{
		ID:                 a.ID,
		LeaveApplicationID: a.ApplicationID,
		Step:               a.Step,
		ApproverRole:       string(a.ApproverRole),
		ApproverID:         a.ApproverID,
		Status:             string(a.Status),
		Comments:           a.Comments,
		DecidedBy:          a.DecidedBy,
		DecidedAt:          a.DecidedAt,
		CreatedAt:          a.CreatedAt,
	}
}
