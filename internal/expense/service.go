package expense

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/strongo/decimal"

	"github.com/hearthway/hearthway/internal/expense/split"
)

// Common errors
var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrUnknownMember      = errors.New("participant is not a member of the group")
	ErrDuplicateMember    = errors.New("participant list contains the same member twice")
	ErrUnknownPayer       = errors.New("payer is not a member of the group")
	ErrInvalidAmount      = errors.New("amount must be valid decimal text")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrNonPositivePayment = errors.New("payment amount must be greater than zero")
	ErrInvalidTimestamp   = errors.New("timestamps must use RFC 3339 format")
)

// Service handles expense business logic
type Service struct {
	repo         *Repository
	splitFactory *split.Factory
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, splitFactory *split.Factory) *Service {
	return &Service{
		repo:         repo,
		splitFactory: splitFactory,
	}
}

// CreateExpense validates the declared split strictly (creation is the one
// place policy violations are hard errors) and persists the expense. When no
// participants are given, an EVEN expense is split among all group members.
func (s *Service) CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*Expense, error) {
	exists, err := s.repo.GroupExists(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	memberIDs, err := s.repo.ListGroupMemberIDs(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	e := &Expense{
		ID:          uuid.NewString(),
		GroupID:     req.GroupID,
		Name:        strings.TrimSpace(req.Name),
		Vendor:      req.Vendor,
		Description: req.Description,
		Amount:      amount,
		Currency:    currencyOrDefault(req.Currency),
		SplitType:   split.Type(req.SplitType),
		Status:      StatusPending,
	}
	if req.Status != nil {
		e.Status = *req.Status
	}

	e.Date = time.Now().UTC()
	if req.Date != nil {
		if e.Date, err = parseTimestamp(*req.Date); err != nil {
			return nil, err
		}
	}

	inputs := req.Participants
	if len(inputs) == 0 && e.SplitType == split.TypeEven {
		inputs = make([]ParticipantInput, len(memberIDs))
		for i, id := range memberIDs {
			inputs[i] = ParticipantInput{MemberID: id}
		}
	}
	if e.Participants, err = buildParticipants(e.ID, inputs, memberIDs); err != nil {
		return nil, err
	}

	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, err
	}
	if err := strategy.Validate(e.Amount, e.SplitParticipants()); err != nil {
		return nil, err
	}

	for _, li := range req.LineItems {
		item := &LineItem{
			ID:          uuid.NewString(),
			ExpenseID:   e.ID,
			Description: li.Description,
			Category:    li.Category,
		}
		if item.TotalAmount, err = parseAmountText(li.TotalAmount); err != nil {
			return nil, err
		}
		if li.Quantity != nil {
			if item.Quantity, err = parseAmountText(*li.Quantity); err != nil {
				return nil, err
			}
		} else {
			item.Quantity = decimal.NewDecimal64p2(1, 0)
		}
		if li.UnitAmount != nil {
			if item.UnitAmount, err = parseAmountText(*li.UnitAmount); err != nil {
				return nil, err
			}
		} else {
			item.UnitAmount = item.TotalAmount
		}
		e.LineItems = append(e.LineItems, item)
	}

	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetExpenseByID retrieves an expense with all its children
func (s *Service) GetExpenseByID(ctx context.Context, id string) (*Expense, error) {
	e, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// ListExpensesByGroupID retrieves a page of a group's expenses
func (s *Service) ListExpensesByGroupID(ctx context.Context, groupID string, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListExpensesByGroupID(ctx, groupID, perPage, offset)
}

// ListAllExpensesByGroupID retrieves a group's full expense snapshot
func (s *Service) ListAllExpensesByGroupID(ctx context.Context, groupID string) ([]*Expense, error) {
	return s.repo.ListAllExpensesByGroupID(ctx, groupID)
}

// UpdateExpense applies a partial update, re-running strict split validation
// whenever the amount, split type or participant list changes.
func (s *Service) UpdateExpense(ctx context.Context, id string, req *UpdateExpenseRequest) (*Expense, error) {
	e, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Vendor != nil {
		e.Vendor = req.Vendor
	}
	if req.Description != nil {
		e.Description = req.Description
	}
	if req.Currency != nil {
		e.Currency = currencyOrDefault(*req.Currency)
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.Date != nil {
		if e.Date, err = parseTimestamp(*req.Date); err != nil {
			return nil, err
		}
	}

	splitChanged := false
	if req.Amount != nil {
		if e.Amount, err = parsePositiveAmount(*req.Amount); err != nil {
			return nil, err
		}
		splitChanged = true
	}
	if req.SplitType != nil {
		e.SplitType = split.Type(*req.SplitType)
		splitChanged = true
	}

	replaceParticipants := req.Participants != nil
	if replaceParticipants {
		memberIDs, err := s.repo.ListGroupMemberIDs(ctx, e.GroupID)
		if err != nil {
			return nil, err
		}
		if e.Participants, err = buildParticipants(e.ID, req.Participants, memberIDs); err != nil {
			return nil, err
		}
		splitChanged = true
	}

	if splitChanged {
		strategy, err := s.splitFactory.Create(e.SplitType)
		if err != nil {
			return nil, err
		}
		if err := strategy.Validate(e.Amount, e.SplitParticipants()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateExpense(ctx, e, replaceParticipants); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExpense deletes an expense and everything recorded against it
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	e, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrExpenseNotFound
	}
	return s.repo.DeleteExpense(ctx, id)
}

// AddPayment records a payment toward an expense and returns the refreshed
// expense along with the new payment.
func (s *Service) AddPayment(ctx context.Context, expenseID string, req *CreatePaymentRequest) (*Expense, *Payment, error) {
	e, err := s.repo.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		return nil, nil, ErrExpenseNotFound
	}

	amount, err := parseAmountText(req.Amount)
	if err != nil {
		return nil, nil, err
	}
	if amount <= 0 {
		return nil, nil, ErrNonPositivePayment
	}

	if err := s.checkPayer(ctx, e.GroupID, req.PayerMemberID); err != nil {
		return nil, nil, err
	}

	p := &Payment{
		ID:         uuid.NewString(),
		ExpenseID:  e.ID,
		PayerID:    req.PayerMemberID,
		Amount:     amount,
		Currency:   e.Currency,
		Notes:      req.Notes,
		ReceiptURL: req.ReceiptURL,
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		if paidAt, err = parseTimestamp(*req.PaidAt); err != nil {
			return nil, nil, err
		}
	}
	p.PaidAt = &paidAt

	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, nil, err
	}

	e, err = s.repo.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	return e, p, nil
}

// UpdatePayment applies a partial update to a payment and returns the
// refreshed expense.
func (s *Service) UpdatePayment(ctx context.Context, expenseID, paymentID string, req *UpdatePaymentRequest) (*Expense, error) {
	p, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.ExpenseID != expenseID {
		return nil, ErrPaymentNotFound
	}

	e, err := s.repo.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	if req.Amount != nil {
		amount, err := parseAmountText(*req.Amount)
		if err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, ErrNonPositivePayment
		}
		p.Amount = amount
	}
	if req.PayerMemberID != nil {
		if err := s.checkPayer(ctx, e.GroupID, *req.PayerMemberID); err != nil {
			return nil, err
		}
		p.PayerID = *req.PayerMemberID
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}
	if req.ReceiptURL != nil {
		p.ReceiptURL = req.ReceiptURL
	}
	if req.PaidAt != nil {
		paidAt, err := parseTimestamp(*req.PaidAt)
		if err != nil {
			return nil, err
		}
		p.PaidAt = &paidAt
	}

	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}

	return s.repo.GetExpenseByID(ctx, expenseID)
}

// DeletePayment removes a payment and returns the refreshed expense
func (s *Service) DeletePayment(ctx context.Context, expenseID, paymentID string) (*Expense, error) {
	p, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.ExpenseID != expenseID {
		return nil, ErrPaymentNotFound
	}

	if err := s.repo.DeletePayment(ctx, paymentID); err != nil {
		return nil, err
	}

	e, err := s.repo.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

func (s *Service) checkPayer(ctx context.Context, groupID, payerID string) error {
	memberIDs, err := s.repo.ListGroupMemberIDs(ctx, groupID)
	if err != nil {
		return err
	}
	for _, id := range memberIDs {
		if id == payerID {
			return nil
		}
	}
	return ErrUnknownPayer
}

// buildParticipants converts participant inputs to models, enforcing
// creation-time referential integrity against the group's member set.
func buildParticipants(expenseID string, inputs []ParticipantInput, memberIDs []string) ([]*Participant, error) {
	members := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		members[id] = true
	}

	participants := make([]*Participant, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if !members[in.MemberID] {
			return nil, ErrUnknownMember
		}
		if seen[in.MemberID] {
			return nil, ErrDuplicateMember
		}
		seen[in.MemberID] = true
		p := &Participant{
			ID:        uuid.NewString(),
			ExpenseID: expenseID,
			MemberID:  in.MemberID,
		}
		if in.ShareAmount != nil {
			v, err := decimal.ParseDecimal64p2(*in.ShareAmount)
			if err != nil {
				return nil, ErrInvalidAmount
			}
			p.ShareAmount = &v
		}
		participants = append(participants, p)
	}
	return participants, nil
}

func parseAmountText(s string) (decimal.Decimal64p2, error) {
	v, err := decimal.ParseDecimal64p2(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func parsePositiveAmount(s string) (decimal.Decimal64p2, error) {
	v, err := parseAmountText(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrNegativeAmount
	}
	return v, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

func currencyOrDefault(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD"
	}
	return code
}
