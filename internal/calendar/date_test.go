package calendar_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/calendar"
)

var _ = Describe("Date", func() {
	Describe("ParseDate", func() {
		It("accepts a well formed date", func() {
			d, err := calendar.ParseDate("2026-10-19")
			Expect(err).NotTo(HaveOccurred())
			Expect(d.String()).To(Equal("2026-10-19"))
			Expect(d.Year()).To(Equal(2026))
		})

		DescribeTable("rejects malformed input",
			func(raw string) {
				_, err := calendar.ParseDate(raw)
				Expect(err).To(MatchError(calendar.ErrInvalidDate))
			},
			Entry("empty", ""),
			Entry("day out of range", "2026-02-30"),
			Entry("missing zero padding", "2026-1-05"),
			Entry("slashes", "2026/10/19"),
			Entry("timestamp", "2026-10-19T00:00:00Z"),
		)
	})

	It("numbers weekdays Monday through Sunday", func() {
		monday := calendar.NewDate(2026, time.October, 19)
		Expect(monday.ISOWeekday()).To(Equal(1))
		Expect(monday.IsWeekend()).To(BeFalse())
		Expect(monday.AddDays(5).ISOWeekday()).To(Equal(6))
		Expect(monday.AddDays(6).IsWeekend()).To(BeTrue())
	})

	It("counts days between dates", func() {
		a := calendar.NewDate(2026, time.October, 16)
		b := calendar.NewDate(2026, time.November, 2)
		Expect(a.DaysUntil(b)).To(Equal(17))
		Expect(b.DaysUntil(a)).To(Equal(-17))
	})

	It("detects inclusive overlaps", func() {
		d := func(day int) calendar.Date { return calendar.NewDate(2026, time.October, day) }
		Expect(calendar.Overlaps(d(1), d(5), d(5), d(9))).To(BeTrue())
		Expect(calendar.Overlaps(d(1), d(5), d(6), d(9))).To(BeFalse())
		Expect(calendar.Overlaps(d(3), d(3), d(1), d(9))).To(BeTrue())
	})

	It("marshals as a plain date string", func() {
		payload, err := json.Marshal(struct {
			On calendar.Date `json:"on"`
		}{On: calendar.NewDate(2026, time.March, 4)})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).To(Equal(`{"on":"2026-03-04"}`))

		var decoded struct {
			On calendar.Date `json:"on"`
		}
		Expect(json.Unmarshal([]byte(`{"on":"2026-13-01"}`), &decoded)).To(MatchError(calendar.ErrInvalidDate))
	})
})
