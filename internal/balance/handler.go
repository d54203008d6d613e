package balance

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/leave-management/internal/transport"
)

type ServiceAPI interface {
	ListForUser(ctx context.Context, userID int64, year int) ([]*Balance, error)
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

type BalancesResponse struct {
	UserID   int64      `json:"user_id"`
	Year     int        `json:"year"`
	Balances []*Balance `json:"balances"`
}

// GetMyBalances serves GET /balances?year=
func (h *Handler) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Auth(r)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.writeBalances(w, r, actor.UserID)
}

// GetUserBalances serves GET /users/{id}/balances?year=
func (h *Handler) GetUserBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := h.PathID(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.writeBalances(w, r, userID)
}

func (h *Handler) writeBalances(w http.ResponseWriter, r *http.Request, userID int64) {
	year := h.QueryInt(r, "year", time.Now().Year())
	balances, err := h.Service.ListForUser(r.Context(), userID, year)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, BalancesResponse{UserID: userID, Year: year, Balances: balances})
}
