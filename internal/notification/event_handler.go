package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
)

// People resolves recipients of leave notifications.
type People interface {
	GetUser(ctx context.Context, id int64) (*leave.Person, error)
}

// Sink is what the event handler delivers through.
type Sink interface {
	Notify(ctx context.Context, userID int64, kind, message string, applicationID *int64) error
	SendEmail(ctx context.Context, to, template string, payload EmailPayload) error
}

type EventHandler struct {
	sink   Sink
	people People
	logger *slog.Logger
}

func NewEventHandler(sink Sink, people People, logger *slog.Logger) *EventHandler {
	return &EventHandler{sink: sink, people: people, logger: logger}
}

func (h *EventHandler) Register(bus *events.EventBus) {
	for _, eventType := range events.LeaveEventTypes {
		bus.Subscribe(eventType, h.HandleLeaveEvent)
	}
}

// HandleLeaveEvent notifies the applicant and the next approvers of a
// committed transition. Delivery failures are logged per recipient.
func (h *EventHandler) HandleLeaveEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	applicant, err := h.people.GetUser(ctx, e.ApplicantID)
	if err != nil {
		return fmt.Errorf("load applicant %d: %w", e.ApplicantID, err)
	}
	if applicant == nil {
		h.logger.Warn("applicant not found, skipping notifications", "application_id", e.ApplicationID, "applicant_id", e.ApplicantID)
		return nil
	}
	payload := EmailPayload{
		ApplicantName:    applicant.Name,
		LeaveType:        e.LeaveTypeName,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		WorkingDays:      e.WorkingDays,
		Step:             e.Step,
		NextApproverRole: e.NextApproverRole,
		Comments:         e.Comments,
		ApplicationID:    e.ApplicationID,
	}
	period := fmt.Sprintf("%s leave from %s to %s", e.LeaveTypeName, e.StartDate, e.EndDate)

	switch e.EventType() {
	case events.EventTypeLeaveSubmitted:
		h.notify(ctx, e, applicant.ID, KindLeaveSubmitted,
			fmt.Sprintf("Your %s was submitted and awaits the %s.", period, e.NextApproverRole))
		h.requestApproval(ctx, e, applicant, payload, period)

	case events.EventTypeLeaveStepApproved:
		h.notify(ctx, e, applicant.ID, KindStepApproved,
			fmt.Sprintf("Step %d of your %s was approved and now awaits the %s.", e.Step, period, e.NextApproverRole))
		h.email(ctx, applicant, TemplateLeaveProgress, payload)
		payload.Step = e.Step + 1
		h.requestApproval(ctx, e, applicant, payload, period)

	case events.EventTypeLeaveApproved:
		h.notify(ctx, e, applicant.ID, KindLeaveApproved, fmt.Sprintf("Your %s was approved.", period))
		payload.Status = "approved"
		h.email(ctx, applicant, TemplateLeaveDecision, payload)

	case events.EventTypeLeaveRejected:
		msg := fmt.Sprintf("Your %s was rejected.", period)
		if e.Comments != "" {
			msg += " Reason: " + e.Comments
		}
		h.notify(ctx, e, applicant.ID, KindLeaveRejected, msg)
		payload.Status = "rejected"
		h.email(ctx, applicant, TemplateLeaveDecision, payload)

	case events.EventTypeLeaveCancelled:
		if e.ActorID != e.ApplicantID {
			h.notify(ctx, e, applicant.ID, KindLeaveCancelled, fmt.Sprintf("Your %s was cancelled by an administrator.", period))
		}
	}
	return nil
}

func (h *EventHandler) requestApproval(ctx context.Context, e *events.LeaveEvent, applicant *leave.Person, payload EmailPayload, period string) {
	msg := fmt.Sprintf("%s requested %.1f days of %s and awaits your decision.", applicant.Name, e.WorkingDays, period)
	for _, id := range e.NextApproverIDs {
		h.notify(ctx, e, id, KindApprovalRequested, msg)

		approver, err := h.people.GetUser(ctx, id)
		if err != nil {
			h.logger.Error("failed to load approver", "user_id", id, "error", err)
			continue
		}
		if approver != nil && approver.IsActive {
			h.email(ctx, approver, TemplateApprovalRequest, payload)
		}
	}
}

func (h *EventHandler) notify(ctx context.Context, e *events.LeaveEvent, userID int64, kind, message string) {
	appID := e.ApplicationID
	if err := h.sink.Notify(ctx, userID, kind, message, &appID); err != nil {
		h.logger.Error("notification failed", "user_id", userID, "kind", kind, "application_id", appID, "error", err)
	}
}

func (h *EventHandler) email(ctx context.Context, to *leave.Person, template string, payload EmailPayload) {
	payload.RecipientName = to.Name
	if err := h.sink.SendEmail(ctx, to.Email, template, payload); err != nil {
		h.logger.Warn("email not sent", "user_id", to.ID, "template", template, "error", err)
	}
}
