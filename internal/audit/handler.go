package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter Filter) ([]*Entry, error)
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

// GetAuditLogs serves GET /audit-logs?entity_type=&entity_id=&actor_id=&limit=&offset=
func (h *Handler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		EntityType: q.Get("entity_type"),
		Limit:      h.QueryInt(r, "limit", 50),
		Offset:     h.QueryInt(r, "offset", 0),
	}
	var err error
	if filter.EntityID, err = optionalID(q.Get("entity_id"), "entity_id"); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if filter.ActorID, err = optionalID(q.Get("actor_id"), "actor_id"); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	entries, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// optionalID parses an id filter; empty means no filter.
func optionalID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive number", internal.ErrCodeValidationFailed)
	}
	return id, nil
}
