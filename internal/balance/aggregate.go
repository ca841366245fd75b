package balance

import (
	"errors"
	"fmt"

	"github.com/crediterra/money"
	"github.com/strongo/decimal"

	"github.com/hearthway/hearthway/internal/expense"
	"github.com/hearthway/hearthway/internal/expense/split"
	"github.com/hearthway/hearthway/internal/group"
)

// Common errors
var (
	ErrNegativeExpenseAmount = errors.New("expense amount cannot be negative")
	ErrNegativePaymentAmount = errors.New("payment amount cannot be negative")
)

// Warning codes emitted during aggregation, alongside any codes carried
// over from the split resolver.
const (
	WarnCodeCurrencyMismatch = "CURRENCY_MISMATCH"
	WarnCodeUnknownMember    = "UNKNOWN_MEMBER"
)

// MemberTotals holds the aggregated position of one group member.
// Net is AmountPaid minus OwedPortion: positive means the group owes the
// member, negative means the member owes the group.
type MemberTotals struct {
	MemberID    string
	DisplayName string
	CostShare   decimal.Decimal64p2
	AmountPaid  decimal.Decimal64p2
	OwedPortion decimal.Decimal64p2
	Net         decimal.Decimal64p2
}

// CurrencyTotals holds per-currency sub-totals. Unlike the flat Summary
// totals these never mix currencies.
type CurrencyTotals struct {
	TotalCost   decimal.Decimal64p2
	TotalPaid   decimal.Decimal64p2
	UnpaidTotal decimal.Decimal64p2
}

// Summary is the aggregated balance picture of one group.
//
// The flat totals label everything with the first expense's currency; when
// later expenses use a different currency the numbers still sum and a
// CURRENCY_MISMATCH warning is attached. ByCurrency carries the honest
// per-currency breakdown.
type Summary struct {
	Currency    money.Currency
	TotalCost   decimal.Decimal64p2
	TotalPaid   decimal.Decimal64p2
	UnpaidTotal decimal.Decimal64p2

	Members    []*MemberTotals
	ByCurrency map[money.Currency]*CurrencyTotals
	Warnings   []split.Warning

	byID map[string]*MemberTotals
}

// Member returns the totals for a member ID, or nil when unknown
func (s *Summary) Member(id string) *MemberTotals {
	return s.byID[id]
}

// Aggregate computes the balance summary for a group.
//
// Cost shares are attributed for every expense. Paid and owed portions are
// attributed only for expenses with at least one payment: for those, each
// participant owes the paid total pro-rated by their cost share, so that
// member nets sum to zero and unpaid expenses never move anyone's balance.
// References to members outside the group are reported as warnings and
// skipped rather than failing the whole summary.
func Aggregate(members []*group.Member, expenses []*expense.Expense) (*Summary, error) {
	s := &Summary{
		Members:    make([]*MemberTotals, 0, len(members)),
		ByCurrency: make(map[money.Currency]*CurrencyTotals),
		byID:       make(map[string]*MemberTotals, len(members)),
	}
	for _, m := range members {
		mt := &MemberTotals{MemberID: m.ID, DisplayName: m.DisplayName}
		s.Members = append(s.Members, mt)
		s.byID[m.ID] = mt
	}

	warnedCurrencies := make(map[money.Currency]bool)

	for _, e := range expenses {
		if e.Amount < 0 {
			return nil, fmt.Errorf("expense %s: %w", e.ID, ErrNegativeExpenseAmount)
		}

		currency := money.Currency(e.Currency)
		if s.Currency == "" {
			s.Currency = currency
		} else if currency != s.Currency && !warnedCurrencies[currency] {
			warnedCurrencies[currency] = true
			s.Warnings = append(s.Warnings, split.Warning{
				Code:    WarnCodeCurrencyMismatch,
				Message: fmt.Sprintf("expenses mix currencies %s and %s; flat totals are labeled %s", s.Currency, currency, s.Currency),
			})
		}

		var paid decimal.Decimal64p2
		for _, p := range e.Payments {
			if p.Amount < 0 {
				return nil, fmt.Errorf("payment %s: %w", p.ID, ErrNegativePaymentAmount)
			}
			paid += p.Amount
		}

		s.TotalCost += e.Amount
		s.TotalPaid += paid
		ct := s.ByCurrency[currency]
		if ct == nil {
			ct = &CurrencyTotals{}
			s.ByCurrency[currency] = ct
		}
		ct.TotalCost += e.Amount
		ct.TotalPaid += paid
		if unpaid := e.Amount - paid; unpaid > 0 {
			s.UnpaidTotal += unpaid
			ct.UnpaidTotal += unpaid
		}

		s.attribute(e, paid)
	}

	for _, mt := range s.Members {
		mt.Net = mt.AmountPaid - mt.OwedPortion
	}

	return s, nil
}

// attribute applies one expense's cost shares, paid amounts and owed
// portions to the member totals.
func (s *Summary) attribute(e *expense.Expense, paid decimal.Decimal64p2) {
	result, err := e.ResolveShares()
	if err != nil {
		s.Warnings = append(s.Warnings, split.Warning{
			Code:    split.WarnCodeSplitPolicy,
			Message: fmt.Sprintf("expense %q: split could not be resolved: %s", e.Name, err),
		})
		return
	}
	for _, w := range result.Warnings {
		s.Warnings = append(s.Warnings, split.Warning{
			Code:    w.Code,
			Message: fmt.Sprintf("expense %q: %s", e.Name, w.Message),
		})
	}

	// skipped flags a reference to a member outside the group; when set,
	// the per-expense owed total can no longer be reconciled to the paid
	// total, so the adjustment below is suppressed.
	skipped := false

	// result.Shares already holds each member's combined share, so a member
	// appearing on several participant rows must be attributed exactly once.
	// attributed keeps first-occurrence order for the drift adjustment below.
	seen := make(map[string]bool, len(e.Participants))
	attributed := make([]*MemberTotals, 0, len(e.Participants))

	for _, p := range e.Participants {
		if seen[p.MemberID] {
			continue
		}
		seen[p.MemberID] = true
		mt := s.byID[p.MemberID]
		if mt == nil {
			skipped = true
			s.Warnings = append(s.Warnings, split.Warning{
				Code:    WarnCodeUnknownMember,
				Message: fmt.Sprintf("expense %q references unknown member %s", e.Name, p.MemberID),
			})
			continue
		}
		mt.CostShare += result.Shares[p.MemberID]
		attributed = append(attributed, mt)
	}

	if len(e.Payments) == 0 {
		return
	}

	for _, p := range e.Payments {
		mt := s.byID[p.PayerID]
		if mt == nil {
			skipped = true
			s.Warnings = append(s.Warnings, split.Warning{
				Code:    WarnCodeUnknownMember,
				Message: fmt.Sprintf("payment on expense %q references unknown payer %s", e.Name, p.PayerID),
			})
			continue
		}
		mt.AmountPaid += p.Amount
	}

	// Each member owes the paid total pro-rated by their resolved share.
	// The last attributed member absorbs the rounding drift so owed
	// portions sum exactly to the paid total.
	var owedSum decimal.Decimal64p2
	var last *MemberTotals
	for _, mt := range attributed {
		owed := split.ProRata(paid, result.Shares[mt.MemberID], e.Amount)
		mt.OwedPortion += owed
		owedSum += owed
		last = mt
	}

	// A zero-amount expense has nothing to pro-rate, so its payments are
	// credited to the payers without creating owed portions.
	if !skipped && last != nil && e.Amount != 0 {
		last.OwedPortion += paid - owedSum
	}
}
