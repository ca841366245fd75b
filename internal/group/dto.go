package group

import "github.com/hearthway/hearthway/internal/expense"

// CreateGroupRequest represents the request to create a new group.
// The creator is auto-added as the group's first member.
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Type        Type    `json:"type"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	Location    *string `json:"location,omitempty"`
	CreatorName string  `json:"creatorName,omitempty"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	Location  *string `json:"location,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	DisplayName string  `json:"displayName" validate:"required,min=1,max=100"`
	Email       *string `json:"email,omitempty"`
	UserID      *string `json:"userId,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Type            Type              `json:"type"`
	StartDate       *string           `json:"startDate"`
	EndDate         *string           `json:"endDate"`
	PrimaryLocation *string           `json:"primaryLocation"`
	Members         []*MemberResponse `json:"members"`
	// Expenses is populated only on the single-group snapshot endpoint.
	Expenses  []*expense.ExpenseResponse `json:"expenses,omitempty"`
	CreatedAt string                     `json:"createdAt"`
	UpdatedAt string                     `json:"updatedAt"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID          string  `json:"id"`
	UserID      *string `json:"userId"`
	DisplayName string  `json:"displayName"`
	Email       *string `json:"email,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

const timestampFormat = "2006-01-02T15:04:05Z"
const dateFormat = "2006-01-02"

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	resp := &GroupResponse{
		ID:              g.ID,
		Name:            g.Name,
		Type:            g.Type,
		PrimaryLocation: g.PrimaryLocation,
		Members:         []*MemberResponse{},
		CreatedAt:       g.CreatedAt.Format(timestampFormat),
		UpdatedAt:       g.UpdatedAt.Format(timestampFormat),
	}
	if g.StartDate != nil {
		s := g.StartDate.Format(dateFormat)
		resp.StartDate = &s
	}
	if g.EndDate != nil {
		s := g.EndDate.Format(dateFormat)
		resp.EndDate = &s
	}
	return resp
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		CreatedAt:   m.CreatedAt.Format(timestampFormat),
	}
}
