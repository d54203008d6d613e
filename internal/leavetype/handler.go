package leavetype

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, includeInactive bool) ([]*LeaveType, error)
	Get(ctx context.Context, id int64) (*LeaveType, error)
	Create(ctx context.Context, actor internal.AuthContext, dto CreateDTO) (*LeaveType, error)
	Update(ctx context.Context, actor internal.AuthContext, id int64, dto UpdateDTO) (*LeaveType, error)
	Deactivate(ctx context.Context, actor internal.AuthContext, id int64) (*LeaveType, error)
	Delete(ctx context.Context, actor internal.AuthContext, id int64) error
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

// GetLeaveTypes serves GET /leave-types. Only HR admins see inactive types.
func (h *Handler) GetLeaveTypes(w http.ResponseWriter, r *http.Request) {
	includeInactive := false
	if r.URL.Query().Get("include_inactive") == "true" {
		if actor, err := h.Auth(r); err == nil && actor.IsHRAdmin() {
			includeInactive = true
		}
	}
	types, err := h.Service.List(r.Context(), includeInactive)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, LeaveTypesResponse{LeaveTypes: types})
}

func (h *Handler) GetLeaveType(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	lt, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, lt)
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var dto CreateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	lt, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, lt)
}

// UpdateLeaveType serves PATCH /leave-types/{id}
func (h *Handler) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
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
	var dto UpdateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	lt, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, lt)
}

func (h *Handler) DeactivateLeaveType(w http.ResponseWriter, r *http.Request) {
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
	lt, err := h.Service.Deactivate(r.Context(), actor, id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, lt)
}

func (h *Handler) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
