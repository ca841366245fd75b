package expense

import (
	"fmt"

	"github.com/strongo/decimal"
)

// ParticipantInput declares one member's inclusion in a split. ShareAmount
// is decimal text; its meaning depends on the split type.
type ParticipantInput struct {
	MemberID    string  `json:"memberId" validate:"required"`
	ShareAmount *string `json:"shareAmount,omitempty"`
}

// LineItemInput is one receipt line on expense creation
type LineItemInput struct {
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Quantity    *string `json:"quantity,omitempty"`
	UnitAmount  *string `json:"unitAmount,omitempty"`
	TotalAmount string  `json:"totalAmount" validate:"required"`
}

// CreateExpenseRequest represents the request to create an expense.
// Monetary amounts travel as decimal text to avoid floating-point drift.
type CreateExpenseRequest struct {
	GroupID      string             `json:"groupId" validate:"required"`
	Name         string             `json:"name" validate:"required,min=1,max=255"`
	Vendor       *string            `json:"vendor,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Amount       string             `json:"amount" validate:"required"`
	Currency     string             `json:"currency,omitempty"`
	Date         *string            `json:"date,omitempty"`
	SplitType    string             `json:"splitType" validate:"required,oneof=EVEN PERCENT SHARES"`
	Status       *Status            `json:"status,omitempty"`
	Participants []ParticipantInput `json:"participants,omitempty"`
	LineItems    []LineItemInput    `json:"lineItems,omitempty"`
}

// UpdateExpenseRequest represents a partial update to an expense. A non-nil
// Participants list replaces the existing split.
type UpdateExpenseRequest struct {
	Name         *string            `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Vendor       *string            `json:"vendor,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Amount       *string            `json:"amount,omitempty"`
	Currency     *string            `json:"currency,omitempty"`
	Date         *string            `json:"date,omitempty"`
	SplitType    *string            `json:"splitType,omitempty"`
	Status       *Status            `json:"status,omitempty"`
	Participants []ParticipantInput `json:"participants,omitempty"`
}

// CreatePaymentRequest records a contribution toward an expense
type CreatePaymentRequest struct {
	PayerMemberID string  `json:"payerMemberId" validate:"required"`
	Amount        string  `json:"amount" validate:"required"`
	Notes         *string `json:"notes,omitempty"`
	ReceiptURL    *string `json:"receiptUrl,omitempty"`
	PaidAt        *string `json:"paidAt,omitempty"`
}

// UpdatePaymentRequest represents a partial update to a payment
type UpdatePaymentRequest struct {
	PayerMemberID *string `json:"payerMemberId,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	ReceiptURL    *string `json:"receiptUrl,omitempty"`
	PaidAt        *string `json:"paidAt,omitempty"`
}

// ExpenseResponse represents the response for an expense. ParticipantCosts
// carries the resolved share per member so every client renders the same
// split.
type ExpenseResponse struct {
	ID               string                 `json:"id"`
	GroupID          string                 `json:"groupId"`
	Name             string                 `json:"name"`
	Vendor           *string                `json:"vendor,omitempty"`
	Description      *string                `json:"description,omitempty"`
	Amount           string                 `json:"amount"`
	Currency         string                 `json:"currency"`
	Date             string                 `json:"date"`
	SplitType        string                 `json:"splitType"`
	Status           Status                 `json:"status"`
	Participants     []*ParticipantResponse `json:"participants"`
	ParticipantCosts map[string]string      `json:"participantCosts,omitempty"`
	LineItems        []*LineItemResponse    `json:"lineItems"`
	Payments         []*PaymentResponse     `json:"payments"`
	CreatedAt        string                 `json:"createdAt"`
}

// ParticipantResponse represents an expense participant
type ParticipantResponse struct {
	ID          string  `json:"id"`
	ExpenseID   string  `json:"expenseId"`
	MemberID    string  `json:"memberId"`
	ShareAmount *string `json:"shareAmount,omitempty"`
}

// LineItemResponse represents a receipt line
type LineItemResponse struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Quantity    string  `json:"quantity"`
	UnitAmount  string  `json:"unitAmount"`
	TotalAmount string  `json:"totalAmount"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID         string  `json:"id"`
	ExpenseID  string  `json:"expenseId"`
	PayerID    string  `json:"payerId"`
	Amount     string  `json:"amount"`
	Currency   string  `json:"currency"`
	Notes      *string `json:"notes,omitempty"`
	ReceiptURL *string `json:"receiptUrl,omitempty"`
	PaidAt     *string `json:"paidAt"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

const timestampFormat = "2006-01-02T15:04:05Z"

// AmountText renders a fixed-point amount as decimal text with exactly two
// fraction digits, the representation the API contract uses everywhere.
func AmountText(v decimal.Decimal64p2) string {
	units := int64(v)
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return fmt.Sprintf("%s%d.%02d", sign, units/100, units%100)
}

// ToResponse converts an Expense model to an ExpenseResponse DTO, resolving
// the participant costs so callers never re-derive splits themselves.
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Name:         e.Name,
		Vendor:       e.Vendor,
		Description:  e.Description,
		Amount:       AmountText(e.Amount),
		Currency:     e.Currency,
		Date:         e.Date.Format(timestampFormat),
		SplitType:    string(e.SplitType),
		Status:       e.DerivedStatus(),
		Participants: make([]*ParticipantResponse, len(e.Participants)),
		LineItems:    make([]*LineItemResponse, len(e.LineItems)),
		Payments:     make([]*PaymentResponse, len(e.Payments)),
		CreatedAt:    e.CreatedAt.Format(timestampFormat),
	}

	for i, p := range e.Participants {
		resp.Participants[i] = p.ToResponse()
	}
	for i, li := range e.LineItems {
		resp.LineItems[i] = li.ToResponse()
	}
	for i, pay := range e.Payments {
		resp.Payments[i] = pay.ToResponse()
	}

	// Unresolvable splits (bad historical data) leave the costs out rather
	// than failing the whole response.
	if result, err := e.ResolveShares(); err == nil {
		costs := make(map[string]string, len(result.Shares))
		for memberID, share := range result.Shares {
			costs[memberID] = AmountText(share)
		}
		resp.ParticipantCosts = costs
	}

	return resp
}

// ToResponse converts a Participant model to a ParticipantResponse DTO
func (p *Participant) ToResponse() *ParticipantResponse {
	resp := &ParticipantResponse{
		ID:        p.ID,
		ExpenseID: p.ExpenseID,
		MemberID:  p.MemberID,
	}
	if p.ShareAmount != nil {
		s := p.ShareAmount.String()
		resp.ShareAmount = &s
	}
	return resp
}

// ToResponse converts a LineItem model to a LineItemResponse DTO
func (li *LineItem) ToResponse() *LineItemResponse {
	return &LineItemResponse{
		ID:          li.ID,
		Description: li.Description,
		Category:    li.Category,
		Quantity:    AmountText(li.Quantity),
		UnitAmount:  AmountText(li.UnitAmount),
		TotalAmount: AmountText(li.TotalAmount),
	}
}

// ToResponse converts a Payment model to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	resp := &PaymentResponse{
		ID:         p.ID,
		ExpenseID:  p.ExpenseID,
		PayerID:    p.PayerID,
		Amount:     AmountText(p.Amount),
		Currency:   p.Currency,
		Notes:      p.Notes,
		ReceiptURL: p.ReceiptURL,
		CreatedAt:  p.CreatedAt.Format(timestampFormat),
		UpdatedAt:  p.UpdatedAt.Format(timestampFormat),
	}
	if p.PaidAt != nil {
		s := p.PaidAt.Format(timestampFormat)
		resp.PaidAt = &s
	}
	return resp
}
