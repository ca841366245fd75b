package group

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthway/hearthway/internal/expense"
	"github.com/hearthway/hearthway/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service  *Service
	expenses *expense.Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service, expenses *expense.Service) *Handler {
	return &Handler{service: service, expenses: expenses}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	// Member operations
	r.Post("/{id}/members", h.AddMember)
	r.Delete("/{id}/members/{memberId}", h.RemoveMember)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group; the creator is auto-added as its first member
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, members, err := h.service.CreateGroup(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, toGroupResponse(g, members))
}

// List handles GET /groups
// @Summary      List groups
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	responses := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		responses[i] = g.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}

// GetByID handles GET /groups/{id}
// @Summary      Get a group snapshot
// @Description  Get a group with its members and the full expense history, including resolved participant costs
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	g, members, err := h.service.GetGroupByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	expenses, err := h.expenses.ListAllExpensesByGroupID(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to load group expenses")
		return
	}

	resp := toGroupResponse(g, members)
	resp.Expenses = make([]*expense.ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp.Expenses[i] = e.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

// Update handles PUT /groups/{id}
// @Summary      Update a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	g, err := h.service.UpdateGroup(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}

// Delete handles DELETE /groups/{id}
// @Summary      Delete a group
// @Tags         groups
// @Param        id path string true "Group ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add a member to a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body AddMemberRequest true "Member request"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	m, err := h.service.AddMember(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, m.ToResponse())
}

// RemoveMember handles DELETE /groups/{id}/members/{memberId}
// @Summary      Remove a member from a group
// @Description  Fails with 409 when expenses or payments still reference the member
// @Tags         groups
// @Param        id path string true "Group ID"
// @Param        memberId path string true "Member ID"
// @Success      204 "No Content"
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "memberId"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toGroupResponse(g *Group, members []*Member) *GroupResponse {
	resp := g.ToResponse()
	for _, m := range members {
		resp.Members = append(resp.Members, m.ToResponse())
	}
	return resp
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrMemberNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrMemberReferenced):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrInvalidGroupType),
		errors.Is(err, ErrInvalidDate):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Failed to process group")
	}
}
