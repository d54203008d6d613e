package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	calendarDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/calendar"
)

type RepositoryAPI interface {
	ListHolidays(ctx context.Context, from, to time.Time) ([]*calendarDatamodel.Holiday, error)
	ListRecurringHolidays(ctx context.Context) ([]*calendarDatamodel.Holiday, error)
	GetHolidayByDate(ctx context.Context, date time.Time) (*calendarDatamodel.Holiday, error)
	CreateHoliday(ctx context.Context, holiday *calendarDatamodel.Holiday) error
	DeleteHoliday(ctx context.Context, id int64) (bool, error)
	ListEvents(ctx context.Context, from, to time.Time, restrictedOnly bool) ([]*calendarDatamodel.AcademicEvent, error)
	CreateEvent(ctx context.Context, event *calendarDatamodel.AcademicEvent) error
	DeleteEvent(ctx context.Context, id int64) (bool, error)
}

// AuditRecorder is the best-effort audit sink.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, description string)
}

var (
	ErrHolidayNotFound = internal.NewNotFoundError("holiday not found", internal.ErrCodeHolidayNotFound)
	ErrEventNotFound   = internal.NewNotFoundError("academic event not found", internal.ErrCodeEventNotFound)
	ErrHolidayExists   = internal.NewConflictError("a holiday already exists on that date", internal.ErrCodeDuplicate)
)

type Service struct {
	repo   RepositoryAPI
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  audit,
		logger: logger,
	}
}

// HolidayDates implements HolidayProvider.
func (s *Service) HolidayDates(ctx context.Context, from, to Date) ([]Date, error) {
	rows, err := s.repo.ListHolidays(ctx, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	dates := make([]Date, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, DateOf(row.Date))
	}
	return dates, nil
}

// ListHolidays returns holidays dated in [fromYear, toYear].
func (s *Service) ListHolidays(ctx context.Context, fromYear, toYear int) ([]*Holiday, error) {
	if toYear < fromYear {
		fromYear, toYear = toYear, fromYear
	}
	rows, err := s.repo.ListHolidays(ctx,
		NewDate(fromYear, time.January, 1).Time(),
		NewDate(toYear, time.December, 31).Time())
	if err != nil {
		s.logger.Error("failed to list holidays", "error", err, "from_year", fromYear, "to_year", toYear)
		return nil, internal.NewInternalError("failed to list holidays", err)
	}
	out := make([]*Holiday, 0, len(rows))
	for _, row := range rows {
		out = append(out, HolidayFromDataModel(row))
	}
	return out, nil
}

func (s *Service) CreateHoliday(ctx context.Context, actor internal.AuthContext, dto CreateHolidayDTO) (*Holiday, error) {
	errs := validation.Struct(dto)
	date, err := ParseDate(dto.Date)
	if dto.Date != "" && err != nil {
		errs.Add("date", err.Error(), internal.ErrCodeInvalidDate)
	}
	if errs.HasErrors() {
		return nil, internal.NewValidationErrors(errs)
	}

	existing, err := s.repo.GetHolidayByDate(ctx, date.Time())
	if err != nil {
		return nil, internal.NewInternalError("failed to check holiday", err)
	}
	if existing != nil {
		return nil, ErrHolidayExists
	}

	holiday := &Holiday{
		Date:        date,
		Name:        dto.Name,
		Type:        HolidayType(dto.Type),
		IsRecurring: dto.IsRecurring,
	}
	row := HolidayToDataModel(holiday)
	if err := s.repo.CreateHoliday(ctx, row); err != nil {
		s.logger.Error("failed to create holiday", "error", err, "date", dto.Date)
		return nil, internal.NewInternalError("failed to create holiday", err)
	}

	s.audit.Record(ctx, actor.UserID, "holiday.created", "holiday", row.ID, fmt.Sprintf("%s on %s", row.Name, date))
	return HolidayFromDataModel(row), nil
}

func (s *Service) DeleteHoliday(ctx context.Context, actor internal.AuthContext, id int64) error {
	deleted, err := s.repo.DeleteHoliday(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete holiday", err)
	}
	if !deleted {
		return ErrHolidayNotFound
	}
	s.audit.Record(ctx, actor.UserID, "holiday.deleted", "holiday", id, "")
	return nil
}

// ImportRecurring copies every recurring holiday into targetYear. Dates that
// already carry a holiday, and 29 February in common years, are skipped.
func (s *Service) ImportRecurring(ctx context.Context, actor internal.AuthContext, targetYear int) ([]*Holiday, error) {
	if targetYear < 1970 || targetYear > 9999 {
		return nil, internal.NewValidationFieldError("year", "year is out of range", internal.ErrCodeValidationFailed)
	}

	recurring, err := s.repo.ListRecurringHolidays(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list recurring holidays", err)
	}

	seen := make(map[string]bool)
	var imported []*Holiday
	for _, row := range recurring {
		source := HolidayFromDataModel(row)
		if source.Date.Year() == targetYear {
			continue
		}
		date, ok := source.InYear(targetYear)
		if !ok || seen[date.String()] {
			continue
		}
		seen[date.String()] = true

		existing, err := s.repo.GetHolidayByDate(ctx, date.Time())
		if err != nil {
			return imported, internal.NewInternalError("failed to check holiday", err)
		}
		if existing != nil {
			continue
		}

		copied := &Holiday{Date: date, Name: source.Name, Type: source.Type, IsRecurring: true}
		copiedRow := HolidayToDataModel(copied)
		if err := s.repo.CreateHoliday(ctx, copiedRow); err != nil {
			return imported, internal.NewInternalError("failed to import holiday", err)
		}
		imported = append(imported, HolidayFromDataModel(copiedRow))
	}

	s.logger.Info("recurring holidays imported", "year", targetYear, "count", len(imported))
	s.audit.Record(ctx, actor.UserID, "holiday.imported", "holiday", 0,
		fmt.Sprintf("imported %d recurring holidays into %d", len(imported), targetYear))
	return imported, nil
}

func (s *Service) ListEvents(ctx context.Context, from, to Date) ([]*AcademicEvent, error) {
	rows, err := s.repo.ListEvents(ctx, from.Time(), to.Time(), false)
	if err != nil {
		return nil, internal.NewInternalError("failed to list academic events", err)
	}
	return eventsFromRows(rows), nil
}

// ListRestrictedEvents returns restrict_leave events overlapping [from, to].
func (s *Service) ListRestrictedEvents(ctx context.Context, from, to Date) ([]*AcademicEvent, error) {
	rows, err := s.repo.ListEvents(ctx, from.Time(), to.Time(), true)
	if err != nil {
		return nil, err
	}
	return eventsFromRows(rows), nil
}

func (s *Service) CreateEvent(ctx context.Context, actor internal.AuthContext, dto CreateEventDTO) (*AcademicEvent, error) {
	errs := validation.Struct(dto)
	start, startErr := ParseDate(dto.StartDate)
	if dto.StartDate != "" && startErr != nil {
		errs.Add("start_date", startErr.Error(), internal.ErrCodeInvalidDate)
	}
	end, endErr := ParseDate(dto.EndDate)
	if dto.EndDate != "" && endErr != nil {
		errs.Add("end_date", endErr.Error(), internal.ErrCodeInvalidDate)
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errs.Add("end_date", ErrInvalidRange.Error(), internal.ErrCodeInvalidRange)
	}
	if errs.HasErrors() {
		return nil, internal.NewValidationErrors(errs)
	}

	row := EventToDataModel(&AcademicEvent{
		Title:         dto.Title,
		StartDate:     start,
		EndDate:       end,
		RestrictLeave: dto.RestrictLeave,
		Description:   dto.Description,
	})
	if err := s.repo.CreateEvent(ctx, row); err != nil {
		s.logger.Error("failed to create academic event", "error", err)
		return nil, internal.NewInternalError("failed to create academic event", err)
	}

	s.audit.Record(ctx, actor.UserID, "academic_event.created", "academic_event", row.ID, row.Title)
	return EventFromDataModel(row), nil
}

func (s *Service) DeleteEvent(ctx context.Context, actor internal.AuthContext, id int64) error {
	deleted, err := s.repo.DeleteEvent(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to delete academic event", err)
	}
	if !deleted {
		return ErrEventNotFound
	}
	s.audit.Record(ctx, actor.UserID, "academic_event.deleted", "academic_event", id, "")
	return nil
}

// Preview computes the day breakdown for a prospective request.
func (s *Service) Preview(ctx context.Context, calc *Calculator, startRaw, endRaw string, halfDay bool) (DayCount, error) {
	var errs internal.ValidationErrors
	start, err := ParseDate(startRaw)
	if err != nil {
		errs.Add("start", err.Error(), internal.ErrCodeInvalidDate)
	}
	end, err := ParseDate(endRaw)
	if err != nil {
		errs.Add("end", err.Error(), internal.ErrCodeInvalidDate)
	}
	if errs.HasErrors() {
		return DayCount{}, internal.NewValidationErrors(errs)
	}

	count, err := calc.Count(ctx, start, end, halfDay)
	if errors.Is(err, ErrInvalidRange) {
		return DayCount{}, internal.NewValidationFieldError("end", err.Error(), internal.ErrCodeInvalidRange)
	}
	if err != nil {
		return DayCount{}, internal.NewInternalError("failed to count working days", err)
	}
	return count, nil
}

func eventsFromRows(rows []*calendarDatamodel.AcademicEvent) []*AcademicEvent {
	out := make([]*AcademicEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, EventFromDataModel(row))
	}
	return out
}
