package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/notification"
)

type fakePeople map[int64]*leave.Person

func (f fakePeople) GetUser(_ context.Context, id int64) (*leave.Person, error) {
	return f[id], nil
}

type sent struct {
	userID   int64
	kind     string
	to       string
	template string
	payload  notification.EmailPayload
}

type MockSink struct {
	notified   []sent
	emailed    []sent
	shouldFail bool
}

func (m *MockSink) Notify(_ context.Context, userID int64, kind, _ string, _ *int64) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	m.notified = append(m.notified, sent{userID: userID, kind: kind})
	return nil
}

func (m *MockSink) SendEmail(_ context.Context, to, template string, payload notification.EmailPayload) error {
	m.emailed = append(m.emailed, sent{to: to, template: template, payload: payload})
	return nil
}

var _ = Describe("EventHandler", func() {
	var (
		ctx     context.Context
		sink    *MockSink
		handler *notification.EventHandler
		base    events.LeaveEvent
	)

	BeforeEach(func() {
		ctx = context.Background()
		sink = &MockSink{}
		people := fakePeople{
			1: {ID: 1, Name: "Sam", Email: "sam@example.edu", Role: internal.RoleStaff, IsActive: true},
			2: {ID: 2, Name: "Hana", Email: "hana@example.edu", Role: internal.RoleDepartmentHead, IsActive: true},
			3: {ID: 3, Name: "Omar", Email: "omar@example.edu", Role: internal.RoleHRAdmin, IsActive: true},
			4: {ID: 4, Name: "Lee", Email: "lee@example.edu", Role: internal.RoleHRAdmin, IsActive: false},
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = notification.NewEventHandler(sink, people, logger)
		base = events.LeaveEvent{
			ApplicationID: 12,
			ApplicantID:   1,
			ActorID:       1,
			LeaveTypeName: "Annual",
			StartDate:     "2026-11-02",
			EndDate:       "2026-11-06",
			WorkingDays:   4,
		}
	})

	It("tells the applicant and the first approver about a submission", func() {
		e := base
		e.Step = 1
		e.NextApproverIDs = []int64{2}
		e.NextApproverRole = string(internal.RoleDepartmentHead)

		Expect(handler.HandleLeaveEvent(ctx, events.NewLeaveEvent(events.EventTypeLeaveSubmitted, e))).To(Succeed())

		Expect(sink.notified).To(Equal([]sent{
			{userID: 1, kind: notification.KindLeaveSubmitted},
			{userID: 2, kind: notification.KindApprovalRequested},
		}))
		Expect(sink.emailed).To(HaveLen(1))
		Expect(sink.emailed[0].to).To(Equal("hana@example.edu"))
		Expect(sink.emailed[0].template).To(Equal(notification.TemplateApprovalRequest))
		Expect(sink.emailed[0].payload.RecipientName).To(Equal("Hana"))
		Expect(sink.emailed[0].payload.ApplicantName).To(Equal("Sam"))
	})

	It("emails only active candidates of a role-level step", func() {
		e := base
		e.ActorID = 2
		e.Step = 1
		e.NextApproverIDs = []int64{3, 4}
		e.NextApproverRole = string(internal.RoleHRAdmin)

		Expect(handler.HandleLeaveEvent(ctx, events.NewLeaveEvent(events.EventTypeLeaveStepApproved, e))).To(Succeed())

		Expect(sink.notified).To(HaveLen(3))
		Expect(sink.emailed).To(HaveLen(2))
		Expect(sink.emailed[0].template).To(Equal(notification.TemplateLeaveProgress))
		Expect(sink.emailed[0].payload.Step).To(Equal(1))
		Expect(sink.emailed[1].to).To(Equal("omar@example.edu"))
		Expect(sink.emailed[1].payload.Step).To(Equal(2))
	})

	DescribeTable("final decisions reach the applicant",
		func(eventType, kind, status string) {
			e := base
			e.ActorID = 3
			e.Comments = "noted"
			Expect(handler.HandleLeaveEvent(ctx, events.NewLeaveEvent(eventType, e))).To(Succeed())

			Expect(sink.notified).To(Equal([]sent{{userID: 1, kind: kind}}))
			Expect(sink.emailed).To(HaveLen(1))
			Expect(sink.emailed[0].to).To(Equal("sam@example.edu"))
			Expect(sink.emailed[0].payload.Status).To(Equal(status))
		},
		Entry("approved", events.EventTypeLeaveApproved, notification.KindLeaveApproved, "approved"),
		Entry("rejected", events.EventTypeLeaveRejected, notification.KindLeaveRejected, "rejected"),
	)

	It("stays quiet when applicants cancel their own request", func() {
		Expect(handler.HandleLeaveEvent(ctx, events.NewLeaveEvent(events.EventTypeLeaveCancelled, base))).To(Succeed())
		Expect(sink.notified).To(BeEmpty())
	})

	It("notifies the applicant when an administrator cancels", func() {
		e := base
		e.ActorID = 3
		Expect(handler.HandleLeaveEvent(ctx, events.NewLeaveEvent(events.EventTypeLeaveCancelled, e))).To(Succeed())
		Expect(sink.notified).To(Equal([]sent{{userID: 1, kind: notification.KindLeaveCancelled}}))
		Expect(sink.emailed).To(BeEmpty())
	})

	It("keeps going when a notification cannot be stored", func() {
		sink.shouldFail = true
		e := base
		e.NextApproverIDs = []int64{2}
		Expect(handler.HandleLeaveEvent(ctx, events.NewLeaveEvent(events.EventTypeLeaveSubmitted, e))).To(Succeed())
		Expect(sink.emailed).To(HaveLen(1))
	})

	It("rejects foreign payloads", func() {
		err := handler.HandleLeaveEvent(ctx, events.BaseEvent{Type: events.EventTypeLeaveApproved})
		Expect(err).To(HaveOccurred())
	})
})
