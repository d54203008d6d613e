package leave

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/calendar"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses never change again.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

type Application struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	ApplicantName string        `json:"applicant_name,omitempty"`
	LeaveTypeID   int64         `json:"leave_type_id"`
	LeaveTypeName string        `json:"leave_type_name,omitempty"`
	StartDate     calendar.Date `json:"start_date"`
	EndDate       calendar.Date `json:"end_date"`
	IsHalfDay     bool          `json:"is_half_day"`
	WorkingDays   float64       `json:"working_days"`
	Reason        string        `json:"reason"`
	ContactInfo   string        `json:"contact_info,omitempty"`
	Status        Status        `json:"status"`
	DecidedAt     *time.Time    `json:"decided_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Approvals     []*Approval   `json:"approvals,omitempty"`
}

// BalanceYear is the year whose balance the application is charged against.
func (a *Application) BalanceYear() int {
	return a.StartDate.Year()
}

func ToDataModel(a *Application) *leaveDatamodel.LeaveApplication {
	return &leaveDatamodel.LeaveApplication{
		ID:          a.ID,
		UserID:      a.UserID,
		LeaveTypeID: a.LeaveTypeID,
		StartDate:   a.StartDate.Time(),
		EndDate:     a.EndDate.Time(),
		IsHalfDay:   a.IsHalfDay,
		WorkingDays: a.WorkingDays,
		Reason:      a.Reason,
		ContactInfo: a.ContactInfo,
		Status:      string(a.Status),
		DecidedAt:   a.DecidedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModel(row *leaveDatamodel.LeaveApplication) *Application {
	return &Application{
		ID:          row.ID,
		UserID:      row.UserID,
		LeaveTypeID: row.LeaveTypeID,
		StartDate:   calendar.DateOf(row.StartDate),
		EndDate:     calendar.DateOf(row.EndDate),
		IsHalfDay:   row.IsHalfDay,
		WorkingDays: row.WorkingDays,
		Reason:      row.Reason,
		ContactInfo: row.ContactInfo,
		Status:      Status(row.Status),
		DecidedAt:   row.DecidedAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func FromDetail(row *leaveDatamodel.LeaveApplicationDetail) *Application {
	a := FromDataModel(&row.LeaveApplication)
	a.LeaveTypeName = row.LeaveTypeName
	a.ApplicantName = row.ApplicantName
	return a
}

// LeaveType is the subset of a leave type the workflow enforces.
type LeaveType struct {
	ID                 int64
	Name               string
	RequiresAttachment bool
	MaxDaysPerRequest  *float64
	MinNoticeDays      *int
	ApplicableTo       []internal.Role
	IsActive           bool
}

// AppliesTo reports whether a role may request this leave type. An empty
// filter admits everyone.
func (t *LeaveType) AppliesTo(role internal.Role) bool {
	if len(t.ApplicableTo) == 0 {
		return true
	}
	for _, r := range t.ApplicableTo {
		if r == role {
			return true
		}
	}
	return false
}

func LeaveTypeFromDataModel(row *leaveDatamodel.LeaveType) *LeaveType {
	return &LeaveType{
		ID:                 row.ID,
		Name:               row.Name,
		RequiresAttachment: row.RequiresAttachment,
		MaxDaysPerRequest:  row.MaxDaysPerRequest,
		MinNoticeDays:      row.MinNoticeDays,
		ApplicableTo:       internal.ParseRoleList(row.ApplicableTo),
		IsActive:           row.IsActive,
	}
}
