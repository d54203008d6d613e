package calendar_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/calendar"
	calendarDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/calendar"
)

func TestCalendar(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Calendar Suite")
}

// MockRepository keeps holidays and events in memory.
type MockRepository struct {
	holidays   []*calendarDatamodel.Holiday
	events     []*calendarDatamodel.AcademicEvent
	nextID     int64
	shouldFail bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{nextID: 1}
}

func (m *MockRepository) ListHolidays(_ context.Context, from, to time.Time) ([]*calendarDatamodel.Holiday, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	var out []*calendarDatamodel.Holiday
	for _, h := range m.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *MockRepository) ListRecurringHolidays(_ context.Context) ([]*calendarDatamodel.Holiday, error) {
	var out []*calendarDatamodel.Holiday
	for _, h := range m.holidays {
		if h.IsRecurring {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *MockRepository) GetHolidayByDate(_ context.Context, date time.Time) (*calendarDatamodel.Holiday, error) {
	for _, h := range m.holidays {
		if h.Date.Equal(date) {
			return h, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) CreateHoliday(_ context.Context, holiday *calendarDatamodel.Holiday) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	holiday.ID = m.nextID
	m.nextID++
	m.holidays = append(m.holidays, holiday)
	return nil
}

func (m *MockRepository) DeleteHoliday(_ context.Context, id int64) (bool, error) {
	for i, h := range m.holidays {
		if h.ID == id {
			m.holidays = append(m.holidays[:i], m.holidays[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) ListEvents(_ context.Context, from, to time.Time, restrictedOnly bool) ([]*calendarDatamodel.AcademicEvent, error) {
	var out []*calendarDatamodel.AcademicEvent
	for _, e := range m.events {
		if restrictedOnly && !e.RestrictLeave {
			continue
		}
		if !e.StartDate.After(to) && !e.EndDate.Before(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) CreateEvent(_ context.Context, event *calendarDatamodel.AcademicEvent) error {
	event.ID = m.nextID
	m.nextID++
	m.events = append(m.events, event)
	return nil
}

func (m *MockRepository) DeleteEvent(_ context.Context, id int64) (bool, error) {
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) addHoliday(date calendar.Date, name string, recurring bool) {
	_ = m.CreateHoliday(context.Background(), calendar.HolidayToDataModel(&calendar.Holiday{
		Date: date, Name: name, Type: calendar.HolidayTypePublic, IsRecurring: recurring,
	}))
}

type recordedAudit struct {
	action   string
	entityID int64
}

type MockAudit struct {
	entries []recordedAudit
}

func (m *MockAudit) Record(_ context.Context, _ int64, action, _ string, entityID int64, _ string) {
	m.entries = append(m.entries, recordedAudit{action: action, entityID: entityID})
}

var _ = Describe("Calendar Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		audit    *MockAudit
		service  *calendar.Service
		admin    internal.AuthContext
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		audit = &MockAudit{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = calendar.NewService(mockRepo, audit, logger)
		admin = internal.AuthContext{UserID: 1, Role: internal.RoleHRAdmin}
	})

	Describe("CreateHoliday", func() {
		It("stores the holiday and records an audit entry", func() {
			holiday, err := service.CreateHoliday(ctx, admin, calendar.CreateHolidayDTO{
				Date: "2026-12-25", Name: "Christmas", Type: "religious", IsRecurring: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(holiday.ID).To(BeNumerically(">", 0))
			Expect(holiday.Date.String()).To(Equal("2026-12-25"))
			Expect(audit.entries).To(ContainElement(recordedAudit{action: "holiday.created", entityID: holiday.ID}))
		})

		It("collects every field error", func() {
			_, err := service.CreateHoliday(ctx, admin, calendar.CreateHolidayDTO{Date: "25-12-2026", Type: "bank"})
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

			details := appErr.Details.(internal.ValidationErrors)
			var fields []string
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
			}
			Expect(fields).To(ContainElements("name", "type", "date"))
		})

		It("refuses a second holiday on the same date", func() {
			mockRepo.addHoliday(calendar.NewDate(2026, time.December, 25), "Christmas", false)

			_, err := service.CreateHoliday(ctx, admin, calendar.CreateHolidayDTO{
				Date: "2026-12-25", Name: "Other", Type: "public",
			})
			Expect(errors.Is(err, calendar.ErrHolidayExists)).To(BeTrue())
		})
	})

	Describe("DeleteHoliday", func() {
		It("returns not found for an unknown id", func() {
			err := service.DeleteHoliday(ctx, admin, 99)
			Expect(errors.Is(err, calendar.ErrHolidayNotFound)).To(BeTrue())
		})
	})

	Describe("ImportRecurring", func() {
		BeforeEach(func() {
			mockRepo.addHoliday(calendar.NewDate(2025, time.January, 1), "New Year", true)
			mockRepo.addHoliday(calendar.NewDate(2024, time.February, 29), "Leap Day", true)
			mockRepo.addHoliday(calendar.NewDate(2025, time.August, 17), "Independence Day", true)
			mockRepo.addHoliday(calendar.NewDate(2025, time.March, 31), "One-off", false)
			mockRepo.addHoliday(calendar.NewDate(2026, time.August, 17), "Independence Day", true)
		})

		It("copies recurring holidays into the target year and skips existing dates", func() {
			imported, err := service.ImportRecurring(ctx, admin, 2026)
			Expect(err).NotTo(HaveOccurred())

			var dates []string
			for _, h := range imported {
				dates = append(dates, h.Date.String())
			}
			Expect(dates).To(ConsistOf("2026-01-01"))
		})

		It("is idempotent", func() {
			_, err := service.ImportRecurring(ctx, admin, 2028)
			Expect(err).NotTo(HaveOccurred())

			again, err := service.ImportRecurring(ctx, admin, 2028)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(BeEmpty())
		})

		It("keeps 29 February in a leap year", func() {
			imported, err := service.ImportRecurring(ctx, admin, 2028)
			Expect(err).NotTo(HaveOccurred())

			var dates []string
			for _, h := range imported {
				dates = append(dates, h.Date.String())
			}
			Expect(dates).To(ContainElement("2028-02-29"))
		})
	})

	Describe("HolidayDates", func() {
		It("feeds the working day calculator", func() {
			mockRepo.addHoliday(calendar.NewDate(2026, time.October, 21), "Founders Day", false)
			calc := calendar.NewCalculator(service)

			count, err := calc.WorkingDays(ctx, calendar.NewDate(2026, time.October, 19), calendar.NewDate(2026, time.October, 23))
			Expect(err).NotTo(HaveOccurred())
			Expect(count.WorkingDays).To(Equal(4.0))
		})
	})

	Describe("CreateEvent", func() {
		It("rejects an end date before the start date", func() {
			_, err := service.CreateEvent(ctx, admin, calendar.CreateEventDTO{
				Title: "Exams", StartDate: "2026-12-10", EndDate: "2026-12-01",
			})
			Expect(internal.IsErrorType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("lists restricted events overlapping a range", func() {
			_, err := service.CreateEvent(ctx, admin, calendar.CreateEventDTO{
				Title: "Final exams", StartDate: "2026-12-01", EndDate: "2026-12-12", RestrictLeave: true,
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateEvent(ctx, admin, calendar.CreateEventDTO{
				Title: "Open day", StartDate: "2026-12-05", EndDate: "2026-12-05",
			})
			Expect(err).NotTo(HaveOccurred())

			restricted, err := service.ListRestrictedEvents(ctx,
				calendar.NewDate(2026, time.December, 12), calendar.NewDate(2026, time.December, 14))
			Expect(err).NotTo(HaveOccurred())
			Expect(restricted).To(HaveLen(1))
			Expect(restricted[0].Title).To(Equal("Final exams"))
		})
	})

	Describe("Preview", func() {
		It("reports invalid dates as validation errors", func() {
			calc := calendar.NewCalculator(service)
			_, err := service.Preview(ctx, calc, "2026-10-19", "tomorrow", false)
			Expect(internal.IsErrorType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("reports inverted ranges as validation errors", func() {
			calc := calendar.NewCalculator(service)
			_, err := service.Preview(ctx, calc, "2026-10-23", "2026-10-19", false)
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})
})
