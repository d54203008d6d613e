package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal/calendar"
	calendarPostgres "github.com/frahmantamala/leave-management/internal/calendar/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/core/database/dbtest"
	calendarDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/calendar"
)

func TestCalendarPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Calendar Postgres Suite")
}

var _ = Describe("Calendar Repository", func() {
	var (
		ctx  context.Context
		db   *gorm.DB
		repo calendar.RepositoryAPI
		day  func(month time.Month, d int) time.Time
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		repo = calendarPostgres.NewCalendarRepository(db)
		day = func(month time.Month, d int) time.Time { return calendar.NewDate(2026, month, d).Time() }
	})

	Describe("holidays", func() {
		BeforeEach(func() {
			for _, h := range []*calendarDatamodel.Holiday{
				{Date: day(time.January, 1), Name: "New Year", Type: "public", IsRecurring: true},
				{Date: day(time.October, 21), Name: "Founders Day", Type: "institutional"},
				{Date: day(time.December, 25), Name: "Christmas", Type: "religious", IsRecurring: true},
			} {
				Expect(repo.CreateHoliday(ctx, h)).To(Succeed())
			}
		})

		It("lists holidays inside an inclusive range", func() {
			holidays, err := repo.ListHolidays(ctx, day(time.October, 21), day(time.December, 25))
			Expect(err).NotTo(HaveOccurred())
			Expect(holidays).To(HaveLen(2))
			Expect(holidays[0].Name).To(Equal("Founders Day"))
			Expect(calendar.DateOf(holidays[0].Date).String()).To(Equal("2026-10-21"))
		})

		It("lists only recurring holidays", func() {
			holidays, err := repo.ListRecurringHolidays(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(holidays).To(HaveLen(2))
		})

		It("finds a holiday by date", func() {
			found, err := repo.GetHolidayByDate(ctx, day(time.December, 25))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.Name).To(Equal("Christmas"))

			missing, err := repo.GetHolidayByDate(ctx, day(time.December, 26))
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(BeNil())
		})

		It("enforces one holiday per date", func() {
			err := repo.CreateHoliday(ctx, &calendarDatamodel.Holiday{Date: day(time.January, 1), Name: "Dup", Type: "public"})
			Expect(err).To(HaveOccurred())
		})

		It("reports whether a delete removed a row", func() {
			holidays, err := repo.ListRecurringHolidays(ctx)
			Expect(err).NotTo(HaveOccurred())

			deleted, err := repo.DeleteHoliday(ctx, holidays[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeTrue())

			deleted, err = repo.DeleteHoliday(ctx, holidays[0].ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(deleted).To(BeFalse())
		})

		It("joins a transaction carried by the context", func() {
			tx := database.NewTransactor(db)
			err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
				if err := repo.CreateHoliday(ctx, &calendarDatamodel.Holiday{Date: day(time.May, 1), Name: "Labour Day", Type: "public"}); err != nil {
					return err
				}
				return gorm.ErrInvalidTransaction
			})
			Expect(err).To(HaveOccurred())

			found, err := repo.GetHolidayByDate(ctx, day(time.May, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("academic events", func() {
		BeforeEach(func() {
			Expect(repo.CreateEvent(ctx, &calendarDatamodel.AcademicEvent{
				Title: "Final exams", StartDate: day(time.December, 1), EndDate: day(time.December, 12), RestrictLeave: true,
			})).To(Succeed())
			Expect(repo.CreateEvent(ctx, &calendarDatamodel.AcademicEvent{
				Title: "Orientation", StartDate: day(time.December, 10), EndDate: day(time.December, 10),
			})).To(Succeed())
		})

		It("returns events overlapping the range", func() {
			events, err := repo.ListEvents(ctx, day(time.December, 10), day(time.December, 20), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(2))
		})

		It("filters to restricting events", func() {
			events, err := repo.ListEvents(ctx, day(time.December, 12), day(time.December, 20), true)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Title).To(Equal("Final exams"))

			events, err = repo.ListEvents(ctx, day(time.December, 13), day(time.December, 20), true)
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(BeEmpty())
		})
	})
})
