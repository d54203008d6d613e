package balance

import (
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

// Balance is the allocation of one leave type to one user for one year.
type Balance struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	LeaveTypeID   int64     `json:"leave_type_id"`
	LeaveTypeName string    `json:"leave_type_name,omitempty"`
	Year          int       `json:"year"`
	TotalDays     float64   `json:"total_days"`
	UsedDays      float64   `json:"used_days"`
	RemainingDays float64   `json:"remaining_days"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (b *Balance) Remaining() float64 {
	return b.TotalDays - b.UsedDays
}

func ToDataModel(b *Balance) *leaveDatamodel.LeaveBalance {
	return &leaveDatamodel.LeaveBalance{
		ID:          b.ID,
		UserID:      b.UserID,
		LeaveTypeID: b.LeaveTypeID,
		Year:        b.Year,
		TotalDays:   b.TotalDays,
		UsedDays:    b.UsedDays,
		UpdatedAt:   b.UpdatedAt,
	}
}

func FromDataModel(row *leaveDatamodel.LeaveBalance) *Balance {
	b := &Balance{
		ID:          row.ID,
		UserID:      row.UserID,
		LeaveTypeID: row.LeaveTypeID,
		Year:        row.Year,
		TotalDays:   row.TotalDays,
		UsedDays:    row.UsedDays,
		UpdatedAt:   row.UpdatedAt,
	}
	b.RemainingDays = b.Remaining()
	return b
}

func FromDetail(row *leaveDatamodel.LeaveBalanceDetail) *Balance {
	b := FromDataModel(&row.LeaveBalance)
	b.LeaveTypeName = row.LeaveTypeName
	return b
}

// Allocation seeds one leave type for a year.
type Allocation struct {
	LeaveTypeID int64
	Days        float64
}
