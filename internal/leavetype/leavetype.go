package leavetype

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type LeaveType struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	DefaultDays        float64         `json:"default_days"`
	RequiresAttachment bool            `json:"requires_attachment"`
	IsAcademic         bool            `json:"is_academic"`
	MaxDaysPerRequest  *float64        `json:"max_days_per_request,omitempty"`
	MinNoticeDays      *int            `json:"min_notice_days,omitempty"`
	ApplicableTo       []internal.Role `json:"applicable_to"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (t *LeaveType) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
}

func (t *LeaveType) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

func ToDataModel(t *LeaveType) *leaveDatamodel.LeaveType {
	return &leaveDatamodel.LeaveType{
		ID:                 t.ID,
		Name:               t.Name,
		Description:        t.Description,
		DefaultDays:        t.DefaultDays,
		RequiresAttachment: t.RequiresAttachment,
		IsAcademic:         t.IsAcademic,
		MaxDaysPerRequest:  t.MaxDaysPerRequest,
		MinNoticeDays:      t.MinNoticeDays,
		ApplicableTo:       internal.JoinRoles(t.ApplicableTo),
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func FromDataModel(row *leaveDatamodel.LeaveType) *LeaveType {
	roles := internal.ParseRoleList(row.ApplicableTo)
	if roles == nil {
		roles = []internal.Role{}
	}
	return &LeaveType{
		ID:                 row.ID,
		Name:               row.Name,
		Description:        row.Description,
		DefaultDays:        row.DefaultDays,
		RequiresAttachment: row.RequiresAttachment,
		IsAcademic:         row.IsAcademic,
		MaxDaysPerRequest:  row.MaxDaysPerRequest,
		MinNoticeDays:      row.MinNoticeDays,
		ApplicableTo:       roles,
		IsActive:           row.IsActive,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
