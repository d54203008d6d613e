package leavetype

type CreateDTO struct {
	Name               string   `json:"name" validate:"required,max=100"`
	Description        string   `json:"description" validate:"max=1000"`
	DefaultDays        float64  `json:"default_days" validate:"gte=0,lte=366"`
	RequiresAttachment bool     `json:"requires_attachment"`
	IsAcademic         bool     `json:"is_academic"`
	MaxDaysPerRequest  *float64 `json:"max_days_per_request" validate:"omitempty,gt=0"`
	MinNoticeDays      *int     `json:"min_notice_days" validate:"omitempty,gte=0,lte=365"`
	ApplicableTo       []string `json:"applicable_to"`
}

// UpdateDTO changes only the fields that are present.
type UpdateDTO struct {
	Name               *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description        *string   `json:"description" validate:"omitempty,max=1000"`
	DefaultDays        *float64  `json:"default_days" validate:"omitempty,gte=0,lte=366"`
	RequiresAttachment *bool     `json:"requires_attachment"`
	IsAcademic         *bool     `json:"is_academic"`
	MaxDaysPerRequest  *float64  `json:"max_days_per_request" validate:"omitempty,gte=0"`
	MinNoticeDays      *int      `json:"min_notice_days" validate:"omitempty,gte=0,lte=365"`
	ApplicableTo       *[]string `json:"applicable_to"`
	IsActive           *bool     `json:"is_active"`
}

type LeaveTypesResponse struct {
	LeaveTypes []*LeaveType `json:"leave_types"`
}
