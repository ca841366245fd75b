package balance

import (
	"context"
	"errors"

	"github.com/hearthway/hearthway/internal/expense"
	"github.com/hearthway/hearthway/internal/group"
)

// ErrGroupNotFound indicates the requested group does not exist
var ErrGroupNotFound = errors.New("group not found")

// Service computes group balance statements
type Service struct {
	groups   *group.Repository
	expenses *expense.Repository
}

// NewService creates a new balance service with repository dependencies injected
func NewService(groups *group.Repository, expenses *expense.Repository) *Service {
	return &Service{groups: groups, expenses: expenses}
}

// GetGroupSummary aggregates the balance position of every member of a group
func (s *Service) GetGroupSummary(ctx context.Context, groupID string) (*Summary, error) {
	g, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	members, err := s.groups.ListMembersByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.ListAllExpensesByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return Aggregate(members, expenses)
}

// GetGroupStatement aggregates a group's balances and renders them for display
func (s *Service) GetGroupStatement(ctx context.Context, groupID string) (*Statement, error) {
	summary, err := s.GetGroupSummary(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return FormatStatement(summary), nil
}
