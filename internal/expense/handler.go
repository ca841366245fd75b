package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hearthway/hearthway/internal/expense/split"
	"github.com/hearthway/hearthway/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	// Group-based listing
	r.Get("/group/{groupId}", h.ListByGroup)

	// Payment operations
	r.Post("/{id}/payments", h.AddPayment)
	r.Put("/{id}/payments/{paymentId}", h.UpdatePayment)
	r.Delete("/{id}/payments/{paymentId}", h.DeletePayment)

	return r
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Create an expense with a declared EVEN, PERCENT or SHARES split; splits are validated strictly at creation time
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	validTypes := map[string]bool{"EVEN": true, "PERCENT": true, "SHARES": true}
	if !validTypes[req.SplitType] {
		response.BadRequest(w, "Invalid split type. Must be EVEN, PERCENT, or SHARES")
		return
	}

	e, err := h.service.CreateExpense(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with its participants, resolved participant costs, line items and payments
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.GetExpenseByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses by group
// @Description  Get a paginated list of expenses for a group
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	expenses, total, err := h.service.ListExpensesByGroupID(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	responses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = e.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, responses, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// Update handles PUT /expenses/{id}
// @Summary      Update an expense
// @Description  Apply a partial update; changing the amount, split type or participants re-validates the split
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Expense update request"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	e, err := h.service.UpdateExpense(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Tags         expenses
// @Param        id path string true "Expense ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// paymentResponse mirrors the original API's payment envelope: the refreshed
// expense, the affected payment and the outstanding remainder.
type paymentResponse struct {
	Expense     *ExpenseResponse `json:"expense"`
	Payment     *PaymentResponse `json:"payment,omitempty"`
	Outstanding string           `json:"outstanding"`
}

// AddPayment handles POST /expenses/{id}/payments
// @Summary      Record a payment toward an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body CreatePaymentRequest true "Payment request"
// @Success      201 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses/{id}/payments [post]
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	e, p, err := h.service.AddPayment(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, &paymentResponse{
		Expense:     e.ToResponse(),
		Payment:     p.ToResponse(),
		Outstanding: AmountText(e.Outstanding()),
	})
}

// UpdatePayment handles PUT /expenses/{id}/payments/{paymentId}
// @Summary      Update a recorded payment
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        paymentId path string true "Payment ID"
// @Param        request body UpdatePaymentRequest true "Payment update request"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id}/payments/{paymentId} [put]
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	e, err := h.service.UpdatePayment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "paymentId"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &paymentResponse{
		Expense:     e.ToResponse(),
		Outstanding: AmountText(e.Outstanding()),
	})
}

// DeletePayment handles DELETE /expenses/{id}/payments/{paymentId}
// @Summary      Delete a recorded payment
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        paymentId path string true "Payment ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id}/payments/{paymentId} [delete]
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.DeletePayment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "paymentId"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &paymentResponse{
		Expense:     e.ToResponse(),
		Outstanding: AmountText(e.Outstanding()),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound),
		errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrUnknownMember),
		errors.Is(err, ErrDuplicateMember),
		errors.Is(err, ErrUnknownPayer),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidTimestamp):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrNonPositivePayment),
		errors.Is(err, split.ErrNoParticipants),
		errors.Is(err, split.ErrNegativeAmount),
		errors.Is(err, split.ErrMissingShareValue),
		errors.Is(err, split.ErrNegativeShareValue),
		errors.Is(err, split.ErrNonPositiveShare),
		errors.Is(err, split.ErrPercentOutOfRange),
		errors.Is(err, split.ErrPercentSumMismatch),
		errors.Is(err, split.ErrZeroShareTotal):
		response.UnprocessableEntity(w, err.Error())
	default:
		response.InternalError(w, "Failed to process expense")
	}
}
