package leave

type SubmitDTO struct {
	LeaveTypeID int64   `json:"leave_type_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	IsHalfDay   bool    `json:"is_half_day"`
	Reason      string  `json:"reason"`
	ContactInfo string  `json:"contact_info"`
	DocumentIDs []int64 `json:"document_ids"`
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type DecisionDTO struct {
	Action   Action `json:"action" validate:"required,oneof=approve reject"`
	Comments string `json:"comments" validate:"max=2000"`
}

type ListFilter struct {
	IDs    []int64
	UserID int64
	Status Status
	Limit  int
	Offset int
}

type ApplicationsResponse struct {
	Applications []*Application `json:"applications"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}

// PendingApproval is an open step together with the application it belongs to.
type PendingApproval struct {
	Approval    *Approval    `json:"approval"`
	Application *Application `json:"application"`
}

type PendingApprovalsResponse struct {
	Approvals []*PendingApproval `json:"approvals"`
}

type DecisionResponse struct {
	Application *Application `json:"application"`
	Completed   bool         `json:"completed"`
}
