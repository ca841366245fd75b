package group

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrGroupNotFound    = errors.New("group not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrMemberReferenced = errors.New("member is referenced by expenses or payments")
	ErrNameRequired     = errors.New("group name is required")
	ErrInvalidGroupType = errors.New("group type must be PROJECT or TRIP")
	ErrInvalidDate      = errors.New("dates must use the YYYY-MM-DD format")
)

// Service handles group business logic
type Service struct {
	repo *Repository
}

// NewService creates a new group service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateGroup creates a group and auto-adds the creator as its first member
func (s *Service) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*Group, []*Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, ErrNameRequired
	}

	groupType := req.Type
	if groupType == "" {
		groupType = TypeProject
	}
	if groupType != TypeProject && groupType != TypeTrip {
		return nil, nil, ErrInvalidGroupType
	}

	g := &Group{
		ID:              uuid.NewString(),
		Name:            name,
		Type:            groupType,
		PrimaryLocation: req.Location,
	}

	var err error
	if g.StartDate, err = parseDate(req.StartDate); err != nil {
		return nil, nil, err
	}
	if g.EndDate, err = parseDate(req.EndDate); err != nil {
		return nil, nil, err
	}

	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, nil, err
	}

	creatorName := strings.TrimSpace(req.CreatorName)
	if creatorName == "" {
		creatorName = "Owner"
	}
	creator := &Member{
		ID:          uuid.NewString(),
		GroupID:     g.ID,
		DisplayName: creatorName,
	}
	if err := s.repo.CreateMember(ctx, creator); err != nil {
		return nil, nil, err
	}

	return g, []*Member{creator}, nil
}

// GetGroupByID retrieves a group and its members
func (s *Service) GetGroupByID(ctx context.Context, id string) (*Group, []*Member, error) {
	g, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, ErrGroupNotFound
	}

	members, err := s.repo.ListMembersByGroupID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return g, members, nil
}

// ListGroups retrieves all groups
func (s *Service) ListGroups(ctx context.Context) ([]*Group, error) {
	return s.repo.ListGroups(ctx)
}

// UpdateGroup applies partial updates to a group
func (s *Service) UpdateGroup(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error) {
	g, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		g.Name = name
	}
	if req.StartDate != nil {
		if g.StartDate, err = parseDate(req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if g.EndDate, err = parseDate(req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.Location != nil {
		g.PrimaryLocation = req.Location
	}

	if err := s.repo.UpdateGroup(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

// DeleteGroup deletes a group
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	g, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGroupNotFound
	}

	return s.repo.DeleteGroup(ctx, id)
}

// AddMember adds a member to a group
func (s *Service) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*Member, error) {
	g, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, ErrNameRequired
	}

	m := &Member{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		UserID:      req.UserID,
		DisplayName: displayName,
		Email:       req.Email,
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// RemoveMember removes a member unless expenses or payments reference it
func (s *Service) RemoveMember(ctx context.Context, groupID, memberID string) error {
	m, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	if m == nil || m.GroupID != groupID {
		return ErrMemberNotFound
	}

	refs, err := s.repo.CountMemberReferences(ctx, memberID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrMemberReferenced
	}

	return s.repo.DeleteMember(ctx, memberID)
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*value))
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
