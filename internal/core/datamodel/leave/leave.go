package leave

import "time"

type LeaveType struct {
	ID                 int64     `gorm:"primaryKey"`
	Name               string    `gorm:"column:name;uniqueIndex;not null"`
	Description        string    `gorm:"column:description"`
	DefaultDays        float64   `gorm:"column:default_days;not null"`
	RequiresAttachment bool      `gorm:"column:requires_attachment;not null"`
	IsAcademic         bool      `gorm:"column:is_academic;not null"`
	MaxDaysPerRequest  *float64  `gorm:"column:max_days_per_request"`
	MinNoticeDays      *int      `gorm:"column:min_notice_days"`
	ApplicableTo       string    `gorm:"column:applicable_to"`
	IsActive           bool      `gorm:"column:is_active;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

type LeaveBalance struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null;uniqueIndex:idx_balance_owner"`
	LeaveTypeID int64     `gorm:"column:leave_type_id;not null;uniqueIndex:idx_balance_owner"`
	Year        int       `gorm:"column:year;not null;uniqueIndex:idx_balance_owner"`
	TotalDays   float64   `gorm:"column:total_days;not null"`
	UsedDays    float64   `gorm:"column:used_days;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// LeaveBalanceDetail is a balance row joined with its leave type name.
type LeaveBalanceDetail struct {
	LeaveBalance  `gorm:"embedded"`
	LeaveTypeName string `gorm:"column:leave_type_name"`
}

type LeaveApplication struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null;index"`
	LeaveTypeID int64      `gorm:"column:leave_type_id;not null"`
	StartDate   time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time  `gorm:"column:end_date;type:date;not null"`
	IsHalfDay   bool       `gorm:"column:is_half_day;not null"`
	WorkingDays float64    `gorm:"column:working_days;not null"`
	Reason      string     `gorm:"column:reason;not null"`
	ContactInfo string     `gorm:"column:contact_info"`
	Status      string     `gorm:"column:status;not null;index"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveApplication) TableName() string {
	return "leave_applications"
}

type LeaveApplicationDetail struct {
	LeaveApplication `gorm:"embedded"`
	LeaveTypeName    string `gorm:"column:leave_type_name"`
	ApplicantName    string `gorm:"column:applicant_name"`
}

type LeaveApproval struct {
	ID                 int64      `gorm:"primaryKey"`
	LeaveApplicationID int64      `gorm:"column:leave_application_id;not null;index"`
	Step               int        `gorm:"column:step;not null"`
	ApproverRole       string     `gorm:"column:approver_role;not null"`
	ApproverID         *int64     `gorm:"column:approver_id;index"`
	Status             string     `gorm:"column:status;not null"`
	Comments           string     `gorm:"column:comments"`
	DecidedBy          *int64     `gorm:"column:decided_by"`
	DecidedAt          *time.Time `gorm:"column:decided_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (LeaveApproval) TableName() string {
	return "leave_approvals"
}
