package calendar

import (
	"context"
	"errors"
	"fmt"
)

// HalfDay is the fixed length of a half-day request.
const HalfDay = 0.5

var ErrInvalidRange = errors.New("end date must not be before start date")

// DayCount is the breakdown of a date range.
type DayCount struct {
	Total        int     `json:"total"`
	WeekendCount int     `json:"weekend_count"`
	HolidayCount int     `json:"holiday_count"`
	WorkingDays  float64 `json:"working_days"`
}

// HolidayProvider returns the holiday dates falling inside [from, to].
type HolidayProvider interface {
	HolidayDates(ctx context.Context, from, to Date) ([]Date, error)
}

type Calculator struct {
	holidays HolidayProvider
}

func NewCalculator(holidays HolidayProvider) *Calculator {
	return &Calculator{holidays: holidays}
}

// WorkingDays walks every day of [start, end]. Saturdays and Sundays count as
// weekend; any other day listed as a holiday counts as holiday.
func (c *Calculator) WorkingDays(ctx context.Context, start, end Date) (DayCount, error) {
	if start.IsZero() || end.IsZero() {
		return DayCount{}, ErrInvalidDate
	}
	if end.Before(start) {
		return DayCount{}, ErrInvalidRange
	}

	dates, err := c.holidays.HolidayDates(ctx, start, end)
	if err != nil {
		return DayCount{}, fmt.Errorf("load holidays: %w", err)
	}
	holidaySet := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		holidaySet[d.String()] = struct{}{}
	}

	var count DayCount
	for d := start; !d.After(end); d = d.AddDays(1) {
		count.Total++
		if d.IsWeekend() {
			count.WeekendCount++
			continue
		}
		if _, ok := holidaySet[d.String()]; ok {
			count.HolidayCount++
		}
	}
	count.WorkingDays = float64(count.Total - count.WeekendCount - count.HolidayCount)
	return count, nil
}

// Count is WorkingDays with the half-day rule applied.
func (c *Calculator) Count(ctx context.Context, start, end Date, halfDay bool) (DayCount, error) {
	count, err := c.WorkingDays(ctx, start, end)
	if err != nil {
		return DayCount{}, err
	}
	if halfDay {
		count.WorkingDays = HalfDay
	}
	return count, nil
}
