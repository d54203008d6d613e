package calendar

type CreateHolidayDTO struct {
	Date        string `json:"date" validate:"required"`
	Name        string `json:"name" validate:"required,max=150"`
	Type        string `json:"type" validate:"required,oneof=public religious institutional"`
	IsRecurring bool   `json:"is_recurring"`
}

type ImportHolidaysDTO struct {
	Year int `json:"year" validate:"required,min=1970,max=9999"`
}

type ImportHolidaysResponse struct {
	Year     int        `json:"year"`
	Imported []*Holiday `json:"imported"`
}

type CreateEventDTO struct {
	Title         string `json:"title" validate:"required,max=200"`
	StartDate     string `json:"start_date" validate:"required"`
	EndDate       string `json:"end_date" validate:"required"`
	RestrictLeave bool   `json:"restrict_leave"`
	Description   string `json:"description" validate:"max=1000"`
}

type HolidaysResponse struct {
	Holidays []*Holiday `json:"holidays"`
}

type EventsResponse struct {
	Events []*AcademicEvent `json:"events"`
}

type WorkingDaysResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	HalfDay   bool   `json:"half_day"`
	DayCount
}
