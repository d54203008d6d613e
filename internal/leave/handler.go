package leave

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type WorkflowAPI interface {
	Submit(ctx context.Context, actor internal.AuthContext, dto SubmitDTO) (*Application, error)
	Decide(ctx context.Context, actor internal.AuthContext, approvalID int64, dto DecisionDTO) (*DecisionResponse, error)
	Cancel(ctx context.Context, actor internal.AuthContext, applicationID int64) (*Application, error)
	Get(ctx context.Context, actor internal.AuthContext, id int64) (*Application, error)
	ListMine(ctx context.Context, actor internal.AuthContext, filter ListFilter) ([]*Application, error)
	ListAll(ctx context.Context, actor internal.AuthContext, filter ListFilter) ([]*Application, error)
	PendingApprovals(ctx context.Context, actor internal.AuthContext) ([]*PendingApproval, error)
}

type Handler struct {
	*transport.BaseHandler
	Workflow WorkflowAPI
}

func NewHandler(baseHandler *transport.BaseHandler, workflow WorkflowAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Workflow:    workflow,
	}
}

func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var dto SubmitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	app, err := h.Workflow.Submit(r.Context(), actor, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, app)
}

// GetMyApplications serves GET /leave-applications?status=&limit=&offset=
func (h *Handler) GetMyApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	filter := h.filter(r)
	apps, err := h.Workflow.ListMine(r.Context(), actor, filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ApplicationsResponse{Applications: apps, Limit: filter.Limit, Offset: filter.Offset})
}

// GetAllApplications serves GET /admin/leave-applications?status=&user_id=
func (h *Handler) GetAllApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	filter := h.filter(r)
	filter.UserID = int64(h.QueryInt(r, "user_id", 0))
	apps, err := h.Workflow.ListAll(r.Context(), actor, filter)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ApplicationsResponse{Applications: apps, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
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
	app, err := h.Workflow.Get(r.Context(), actor, id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
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
	app, err := h.Workflow.Cancel(r.Context(), actor, id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) GetPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	pending, err := h.Workflow.PendingApprovals(r.Context(), actor)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PendingApprovalsResponse{Approvals: pending})
}

// DecideApproval serves POST /approvals/{id}/decision
func (h *Handler) DecideApproval(w http.ResponseWriter, r *http.Request) {
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
	var dto DecisionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	result, err := h.Workflow.Decide(r.Context(), actor, id, dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) filter(r *http.Request) ListFilter {
	return ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		Limit:  h.QueryInt(r, "limit", 50),
		Offset: h.QueryInt(r, "offset", 0),
	}
}
