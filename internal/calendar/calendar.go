package calendar

import (
	"time"

	calendarDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/calendar"
)

type HolidayType string

const (
	HolidayTypePublic        HolidayType = "public"
	HolidayTypeReligious     HolidayType = "religious"
	HolidayTypeInstitutional HolidayType = "institutional"
)

func (t HolidayType) Valid() bool {
	switch t {
	case HolidayTypePublic, HolidayTypeReligious, HolidayTypeInstitutional:
		return true
	}
	return false
}

type Holiday struct {
	ID          int64       `json:"id"`
	Date        Date        `json:"date"`
	Name        string      `json:"name"`
	Type        HolidayType `json:"type"`
	IsRecurring bool        `json:"is_recurring"`
	CreatedAt   time.Time   `json:"created_at"`
}

// InYear moves a recurring holiday to the same month and day of year.
// ok is false when that day does not exist (29 February in a common year).
func (h *Holiday) InYear(year int) (Date, bool) {
	t := h.Date.Time()
	moved := NewDate(year, t.Month(), t.Day())
	if moved.Time().Month() != t.Month() {
		return Date{}, false
	}
	return moved, true
}

// AcademicEvent is a range on the academic calendar. RestrictLeave events block leave.
type AcademicEvent struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	StartDate     Date      `json:"start_date"`
	EndDate       Date      `json:"end_date"`
	RestrictLeave bool      `json:"restrict_leave"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (e *AcademicEvent) Overlaps(start, end Date) bool {
	return Overlaps(e.StartDate, e.EndDate, start, end)
}

func HolidayToDataModel(h *Holiday) *calendarDatamodel.Holiday {
	return &calendarDatamodel.Holiday{
		ID:          h.ID,
		Date:        h.Date.Time(),
		Name:        h.Name,
		Type:        string(h.Type),
		IsRecurring: h.IsRecurring,
		CreatedAt:   h.CreatedAt,
	}
}

func HolidayFromDataModel(h *calendarDatamodel.Holiday) *Holiday {
	return &Holiday{
		ID:          h.ID,
		Date:        DateOf(h.Date),
		Name:        h.Name,
		Type:        HolidayType(h.Type),
		IsRecurring: h.IsRecurring,
		CreatedAt:   h.CreatedAt,
	}
}

func EventToDataModel(e *AcademicEvent) *calendarDatamodel.AcademicEvent {
	return &calendarDatamodel.AcademicEvent{
		ID:            e.ID,
		Title:         e.Title,
		StartDate:     e.StartDate.Time(),
		EndDate:       e.EndDate.Time(),
		RestrictLeave: e.RestrictLeave,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}

func EventFromDataModel(e *calendarDatamodel.AcademicEvent) *AcademicEvent {
	return &AcademicEvent{
		ID:            e.ID,
		Title:         e.Title,
		StartDate:     DateOf(e.StartDate),
		EndDate:       DateOf(e.EndDate),
		RestrictLeave: e.RestrictLeave,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}
