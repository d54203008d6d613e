package calendar_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/calendar"
)

type stubHolidays struct {
	dates []calendar.Date
	err   error
}

func (s *stubHolidays) HolidayDates(_ context.Context, from, to calendar.Date) ([]calendar.Date, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []calendar.Date
	for _, d := range s.dates {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

var _ = Describe("Calculator", func() {
	var (
		ctx      context.Context
		holidays *stubHolidays
		calc     *calendar.Calculator
		oct      func(day int) calendar.Date
	)

	BeforeEach(func() {
		ctx = context.Background()
		holidays = &stubHolidays{}
		calc = calendar.NewCalculator(holidays)
		oct = func(day int) calendar.Date { return calendar.NewDate(2026, time.October, day) }
	})

	It("excludes a midweek holiday", func() {
		holidays.dates = []calendar.Date{oct(21)}

		count, err := calc.WorkingDays(ctx, oct(19), oct(23))
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(calendar.DayCount{Total: 5, WeekendCount: 0, HolidayCount: 1, WorkingDays: 4}))
	})

	It("counts a weekend holiday only as weekend", func() {
		holidays.dates = []calendar.Date{oct(24)}

		count, err := calc.WorkingDays(ctx, oct(19), oct(25))
		Expect(err).NotTo(HaveOccurred())
		Expect(count.Total).To(Equal(7))
		Expect(count.WeekendCount).To(Equal(2))
		Expect(count.HolidayCount).To(Equal(0))
		Expect(count.WorkingDays).To(Equal(5.0))
	})

	It("returns zero working days for a weekend-only range", func() {
		count, err := calc.WorkingDays(ctx, oct(24), oct(25))
		Expect(err).NotTo(HaveOccurred())
		Expect(count.WorkingDays).To(BeZero())
	})

	It("keeps total equal to the inclusive day span", func() {
		count, err := calc.WorkingDays(ctx, oct(1), oct(31))
		Expect(err).NotTo(HaveOccurred())
		Expect(count.Total).To(Equal(31))
		Expect(float64(count.Total - count.WeekendCount - count.HolidayCount)).To(Equal(count.WorkingDays))
	})

	It("rejects an inverted range", func() {
		_, err := calc.WorkingDays(ctx, oct(23), oct(19))
		Expect(err).To(MatchError(calendar.ErrInvalidRange))
	})

	It("propagates holiday lookup failures", func() {
		holidays.err = errors.New("db down")
		_, err := calc.WorkingDays(ctx, oct(19), oct(23))
		Expect(err).To(HaveOccurred())
	})

	Describe("Count", func() {
		It("charges half a day regardless of the range", func() {
			count, err := calc.Count(ctx, oct(19), oct(20), true)
			Expect(err).NotTo(HaveOccurred())
			Expect(count.WorkingDays).To(Equal(calendar.HalfDay))
			Expect(count.Total).To(Equal(2))
		})

		It("leaves full days untouched", func() {
			count, err := calc.Count(ctx, oct(19), oct(20), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(count.WorkingDays).To(Equal(2.0))
		})
	})
})
