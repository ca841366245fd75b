package expense

import (
	"time"

	"github.com/strongo/decimal"

	"github.com/hearthway/hearthway/internal/expense/split"
)

// Status describes how settled an expense is. It is display-only: balance
// computation derives paid and owed amounts from the payment records and
// never trusts this flag.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPaid          Status = "PAID"
	StatusReimbursed    Status = "REIMBURSED"
	StatusPartiallyPaid Status = "PARTIALLY_PAID"
)

// Expense represents a single cost event within a group
type Expense struct {
	ID          string              `json:"id"`
	GroupID     string              `json:"groupId"`
	Name        string              `json:"name"`
	Vendor      *string             `json:"vendor,omitempty"`
	Description *string             `json:"description,omitempty"`
	Amount      decimal.Decimal64p2 `json:"amount"`
	Currency    string              `json:"currency"`
	Date        time.Time           `json:"date"`
	SplitType   split.Type          `json:"splitType"`
	Status      Status              `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`

	Participants []*Participant `json:"participants"`
	LineItems    []*LineItem    `json:"lineItems"`
	Payments     []*Payment     `json:"payments"`
}

// Participant links an expense to one group member. The meaning of
// ShareAmount depends on the expense's split type.
type Participant struct {
	ID          string               `json:"id"`
	ExpenseID   string               `json:"expenseId"`
	MemberID    string               `json:"memberId"`
	ShareAmount *decimal.Decimal64p2 `json:"shareAmount,omitempty"`
}

// ToSplitParticipant converts to the split package's input type
func (p *Participant) ToSplitParticipant() split.Participant {
	return split.Participant{
		MemberID:    p.MemberID,
		ShareAmount: p.ShareAmount,
	}
}

// LineItem is one parsed receipt line on an expense
type LineItem struct {
	ID          string              `json:"id"`
	ExpenseID   string              `json:"expenseId"`
	Description *string             `json:"description,omitempty"`
	Category    *string             `json:"category,omitempty"`
	Quantity    decimal.Decimal64p2 `json:"quantity"`
	UnitAmount  decimal.Decimal64p2 `json:"unitAmount"`
	TotalAmount decimal.Decimal64p2 `json:"totalAmount"`
}

// Payment records a member's contribution toward settling an expense.
// Multiple payments per expense allow partial settlement.
type Payment struct {
	ID         string              `json:"id"`
	ExpenseID  string              `json:"expenseId"`
	PayerID    string              `json:"payerId"`
	Amount     decimal.Decimal64p2 `json:"amount"`
	Currency   string              `json:"currency"`
	Notes      *string             `json:"notes,omitempty"`
	ReceiptURL *string             `json:"receiptUrl,omitempty"`
	PaidAt     *time.Time          `json:"paidAt"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// SplitParticipants returns the participants as split resolver inputs,
// preserving list order.
func (e *Expense) SplitParticipants() []split.Participant {
	participants := make([]split.Participant, len(e.Participants))
	for i, p := range e.Participants {
		participants[i] = p.ToSplitParticipant()
	}
	return participants
}

// ResolveShares computes the cost per participant under the expense's split
// policy. Shares always sum exactly to the expense amount.
func (e *Expense) ResolveShares() (*split.Result, error) {
	return split.Resolve(e.Amount, e.SplitType, e.SplitParticipants())
}

// PaymentsTotal sums all recorded payment amounts
func (e *Expense) PaymentsTotal() decimal.Decimal64p2 {
	var total decimal.Decimal64p2
	for _, p := range e.Payments {
		total += p.Amount
	}
	return total
}

// Outstanding returns the unpaid remainder, clamped at zero so over-payment
// never yields a negative value.
func (e *Expense) Outstanding() decimal.Decimal64p2 {
	remaining := e.Amount - e.PaymentsTotal()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DerivedStatus recomputes the display status from the payment records.
// An explicit REIMBURSED marker is preserved.
func (e *Expense) DerivedStatus() Status {
	if e.Status == StatusReimbursed {
		return StatusReimbursed
	}
	paid := e.PaymentsTotal()
	switch {
	case paid == 0:
		return StatusPending
	case paid < e.Amount:
		return StatusPartiallyPaid
	default:
		return StatusPaid
	}
}
