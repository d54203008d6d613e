package notification

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor internal.AuthContext, filter ListFilter) (*NotificationsResponse, error)
	MarkRead(ctx context.Context, actor internal.AuthContext, id int64) error
	MarkAllRead(ctx context.Context, actor internal.AuthContext) (int64, error)
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

// GetNotifications serves GET /notifications?unread=true&limit=&offset=
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	filter := ListFilter{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      h.QueryInt(r, "limit", 20),
		Offset:     h.QueryInt(r, "offset", 0),
	}
	resp, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Service.MarkRead(r.Context(), actor, id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	n, err := h.Service.MarkAllRead(r.Context(), actor)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MarkAllReadResponse{Updated: n})
}
