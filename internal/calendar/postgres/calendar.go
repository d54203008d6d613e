package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/leave-management/internal/calendar"
	"github.com/frahmantamala/leave-management/internal/core/database"
	calendarDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/calendar"
)

type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) calendar.RepositoryAPI {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) ListHolidays(ctx context.Context, from, to time.Time) ([]*calendarDatamodel.Holiday, error) {
	var holidays []*calendarDatamodel.Holiday
	err := database.Conn(ctx, r.db).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *CalendarRepository) ListRecurringHolidays(ctx context.Context) ([]*calendarDatamodel.Holiday, error) {
	var holidays []*calendarDatamodel.Holiday
	err := database.Conn(ctx, r.db).
		Where("is_recurring = ?", true).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *CalendarRepository) GetHolidayByDate(ctx context.Context, date time.Time) (*calendarDatamodel.Holiday, error) {
	var holiday calendarDatamodel.Holiday
	err := database.Conn(ctx, r.db).Where("date = ?", date).First(&holiday).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &holiday, nil
}

func (r *CalendarRepository) CreateHoliday(ctx context.Context, holiday *calendarDatamodel.Holiday) error {
	return database.Conn(ctx, r.db).Create(holiday).Error
}

func (r *CalendarRepository) DeleteHoliday(ctx context.Context, id int64) (bool, error) {
	res := database.Conn(ctx, r.db).Delete(&calendarDatamodel.Holiday{}, id)
	return res.RowsAffected > 0, res.Error
}

// ListEvents returns events overlapping [from, to].
func (r *CalendarRepository) ListEvents(ctx context.Context, from, to time.Time, restrictedOnly bool) ([]*calendarDatamodel.AcademicEvent, error) {
	var events []*calendarDatamodel.AcademicEvent
	q := database.Conn(ctx, r.db).Where("start_date <= ? AND end_date >= ?", to, from)
	if restrictedOnly {
		q = q.Where("restrict_leave = ?", true)
	}
	err := q.Order("start_date ASC").Find(&events).Error
	return events, err
}

func (r *CalendarRepository) CreateEvent(ctx context.Context, event *calendarDatamodel.AcademicEvent) error {
	return database.Conn(ctx, r.db).Create(event).Error
}

func (r *CalendarRepository) DeleteEvent(ctx context.Context, id int64) (bool, error) {
	res := database.Conn(ctx, r.db).Delete(&calendarDatamodel.AcademicEvent{}, id)
	return res.RowsAffected > 0, res.Error
}
