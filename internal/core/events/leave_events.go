package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveSubmitted    = "leave.submitted"
	EventTypeLeaveStepApproved = "leave.step_approved"
	EventTypeLeaveApproved     = "leave.approved"
	EventTypeLeaveRejected     = "leave.rejected"
	EventTypeLeaveCancelled    = "leave.cancelled"
)

var LeaveEventTypes = []string{
	EventTypeLeaveSubmitted,
	EventTypeLeaveStepApproved,
	EventTypeLeaveApproved,
	EventTypeLeaveRejected,
	EventTypeLeaveCancelled,
}

// LeaveEvent describes a committed change of a leave application.
// NextApproverIDs lists every user who may decide the newly opened step.
type LeaveEvent struct {
	BaseEvent
	ApplicationID    int64     `json:"application_id"`
	ApplicantID      int64     `json:"applicant_id"`
	ActorID          int64     `json:"actor_id"`
	LeaveTypeName    string    `json:"leave_type_name"`
	StartDate        string    `json:"start_date"`
	EndDate          string    `json:"end_date"`
	WorkingDays      float64   `json:"working_days"`
	Step             int       `json:"step,omitempty"`
	NextApproverIDs  []int64   `json:"next_approver_ids,omitempty"`
	NextApproverRole string    `json:"next_approver_role,omitempty"`
	Comments         string    `json:"comments,omitempty"`
	At               time.Time `json:"at"`
}

func NewLeaveEvent(eventType string, e LeaveEvent) *LeaveEvent {
	now := time.Now()
	e.BaseEvent = BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: now,
	}
	if e.At.IsZero() {
		e.At = now
	}
	return &e
}
