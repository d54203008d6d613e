package report

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	LeaveReport(ctx context.Context, actor internal.AuthContext, filter Filter) (*LeaveReport, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (*LeaveReport, bool) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return nil, false
	}
	filter := Filter{Faculty: strings.TrimSpace(r.URL.Query().Get("faculty"))}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			h.WriteAppError(w, r, internal.NewValidationFieldError("year", "year must be a number", internal.ErrCodeValidationFailed))
			return nil, false
		}
		filter.Year = year
	}

	rep, err := h.Service.LeaveReport(r.Context(), actor, filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return nil, false
	}
	return rep, true
}

// GetLeaveReport serves GET /reports/leave?year=&faculty=
func (h *Handler) GetLeaveReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	h.WriteJSON(w, http.StatusOK, rep)
}

// ExportLeaveReport serves the same report as a CSV download.
func (h *Handler) ExportLeaveReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rep); err != nil {
		h.WriteAppError(w, r, internal.NewInternalError("failed to write report", err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="leave-report-%d.csv"`, rep.Year))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Logger.Error("failed to write report response", "error", err)
	}
}
