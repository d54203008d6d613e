package calendar

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	ListHolidays(ctx context.Context, fromYear, toYear int) ([]*Holiday, error)
	CreateHoliday(ctx context.Context, actor internal.AuthContext, dto CreateHolidayDTO) (*Holiday, error)
	DeleteHoliday(ctx context.Context, actor internal.AuthContext, id int64) error
	ImportRecurring(ctx context.Context, actor internal.AuthContext, targetYear int) ([]*Holiday, error)
	ListEvents(ctx context.Context, from, to Date) ([]*AcademicEvent, error)
	CreateEvent(ctx context.Context, actor internal.AuthContext, dto CreateEventDTO) (*AcademicEvent, error)
	DeleteEvent(ctx context.Context, actor internal.AuthContext, id int64) error
	Preview(ctx context.Context, calc *Calculator, start, end string, halfDay bool) (DayCount, error)
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	Calculator *Calculator
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, calculator *Calculator) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Calculator:  calculator,
	}
}

// GetHolidays serves GET /holidays?year=2026
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.QueryInt(r, "year", time.Now().Year())
	holidays, err := h.Service.ListHolidays(r.Context(), year, year)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, HolidaysResponse{Holidays: holidays})
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var dto CreateHolidayDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	holiday, err := h.Service.CreateHoliday(r.Context(), actor, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, holiday)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := h.Service.DeleteHoliday(r.Context(), actor, id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ImportHolidays(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var dto ImportHolidaysDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	imported, err := h.Service.ImportRecurring(r.Context(), actor, dto.Year)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if imported == nil {
		imported = []*Holiday{}
	}
	h.WriteJSON(w, http.StatusOK, ImportHolidaysResponse{Year: dto.Year, Imported: imported})
}

// GetEvents serves GET /academic-events?from=&to=, defaulting to the current year.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	from := NewDate(year, time.January, 1)
	to := NewDate(year, time.December, 31)

	var errs internal.ValidationErrors
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			errs.Add("from", err.Error(), internal.ErrCodeInvalidDate)
		}
		from = d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			errs.Add("to", err.Error(), internal.ErrCodeInvalidDate)
		}
		to = d
	}
	if errs.HasErrors() {
		h.WriteAppError(w, r, internal.NewValidationErrors(errs))
		return
	}

	events, err := h.Service.ListEvents(r.Context(), from, to)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EventsResponse{Events: events})
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var dto CreateEventDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	event, err := h.Service.CreateEvent(r.Context(), actor, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := h.Service.DeleteEvent(r.Context(), actor, id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWorkingDays serves GET /calendar/working-days?start=&end=&half_day=
func (h *Handler) GetWorkingDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	halfDay, _ := strconv.ParseBool(q.Get("half_day"))

	count, err := h.Service.Preview(r.Context(), h.Calculator, q.Get("start"), q.Get("end"), halfDay)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, WorkingDaysResponse{
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
		HalfDay:   halfDay,
		DayCount:  count,
	})
}
