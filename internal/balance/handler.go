package balance

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthway/hearthway/pkg/response"
)

// Handler handles HTTP requests for balance operations
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/group/{groupId}", h.GetGroupStatement)

	return r
}

// GetGroupStatement handles GET /balances/group/{groupId}
// @Summary      Get a group's balance statement
// @Description  Aggregate every member's cost share, paid total and net balance, formatted for display. Net balances only cover expenses with at least one payment.
// @Tags         balances
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=Statement}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GetGroupStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := h.service.GetGroupStatement(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNegativeExpenseAmount) || errors.Is(err, ErrNegativePaymentAmount) {
			response.UnprocessableEntity(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to compute group balances")
		return
	}

	response.JSON(w, http.StatusOK, statement)
}
