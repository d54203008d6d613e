package audit

import (
	"context"
	"fmt"

	"github.com/frahmantamala/leave-management/internal/core/events"
)

type EventHandler struct {
	service *Service
}

func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Register(bus *events.EventBus) {
	for _, eventType := range events.LeaveEventTypes {
		bus.Subscribe(eventType, h.HandleLeaveEvent)
	}
}

// HandleLeaveEvent writes one entry per committed leave transition.
func (h *EventHandler) HandleLeaveEvent(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	var description string
	switch e.EventType() {
	case events.EventTypeLeaveSubmitted:
		description = fmt.Sprintf("submitted %s leave %s to %s (%.1f days)", e.LeaveTypeName, e.StartDate, e.EndDate, e.WorkingDays)
	case events.EventTypeLeaveStepApproved:
		description = fmt.Sprintf("approved step %d, forwarded to %s", e.Step, e.NextApproverRole)
	case events.EventTypeLeaveApproved:
		description = fmt.Sprintf("final approval at step %d, %.1f days debited", e.Step, e.WorkingDays)
	case events.EventTypeLeaveRejected:
		description = fmt.Sprintf("rejected at step %d: %s", e.Step, e.Comments)
	case events.EventTypeLeaveCancelled:
		description = "cancelled while pending"
	}

	h.service.Record(ctx, e.ActorID, e.EventType(), "leave_application", e.ApplicationID, description)
	return nil
}
