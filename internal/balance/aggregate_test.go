package balance

import (
	"errors"
	"reflect"
	"testing"

	"github.com/crediterra/money"
	"github.com/matryer/is"
	"github.com/strongo/decimal"

	"github.com/hearthway/hearthway/internal/expense"
	"github.com/hearthway/hearthway/internal/expense/split"
	"github.com/hearthway/hearthway/internal/group"
)

func amt(t *testing.T, s string) decimal.Decimal64p2 {
	t.Helper()
	v, err := decimal.ParseDecimal64p2(s)
	if err != nil {
		t.Fatalf("bad amount %q: %v", s, err)
	}
	return v
}

func share(t *testing.T, s string) *decimal.Decimal64p2 {
	t.Helper()
	v := amt(t, s)
	return &v
}

func members(names ...string) []*group.Member {
	out := make([]*group.Member, len(names))
	for i, n := range names {
		out[i] = &group.Member{ID: n, GroupID: "g1", DisplayName: n}
	}
	return out
}

func evenExpense(t *testing.T, id, amount string, participants ...string) *expense.Expense {
	t.Helper()
	e := &expense.Expense{
		ID:        id,
		GroupID:   "g1",
		Name:      id,
		Amount:    amt(t, amount),
		Currency:  "USD",
		SplitType: split.TypeEven,
	}
	for _, p := range participants {
		e.Participants = append(e.Participants, &expense.Participant{MemberID: p, ExpenseID: id})
	}
	return e
}

func pay(t *testing.T, payer, amount string) *expense.Payment {
	t.Helper()
	return &expense.Payment{ID: payer + "-pay", PayerID: payer, Amount: amt(t, amount), Currency: "USD"}
}

func netSum(s *Summary) decimal.Decimal64p2 {
	var sum decimal.Decimal64p2
	for _, m := range s.Members {
		sum += m.Net
	}
	return sum
}

func TestAggregateFullyPaidExpense(t *testing.T) {
	is := is.New(t)

	e := evenExpense(t, "groceries", "90.00", "alice", "bob", "carol")
	e.Payments = []*expense.Payment{pay(t, "alice", "90.00")}

	s, err := Aggregate(members("alice", "bob", "carol"), []*expense.Expense{e})
	is.NoErr(err)

	is.Equal(s.TotalCost, amt(t, "90.00"))
	is.Equal(s.TotalPaid, amt(t, "90.00"))
	is.Equal(s.UnpaidTotal, decimal.Decimal64p2(0))

	is.Equal(s.Member("alice").AmountPaid, amt(t, "90.00"))
	is.Equal(s.Member("alice").Net, amt(t, "60.00"))
	is.Equal(s.Member("bob").Net, amt(t, "-30.00"))
	is.Equal(s.Member("carol").Net, amt(t, "-30.00"))
	is.Equal(netSum(s), decimal.Decimal64p2(0))
}

func TestAggregateUnpaidExpenseMovesNoBalances(t *testing.T) {
	is := is.New(t)

	e := evenExpense(t, "rent", "50.00", "alice", "bob")

	s, err := Aggregate(members("alice", "bob"), []*expense.Expense{e})
	is.NoErr(err)

	is.Equal(s.UnpaidTotal, amt(t, "50.00"))
	is.Equal(s.TotalPaid, decimal.Decimal64p2(0))

	// Cost shares are attributed, but nothing is owed until someone pays.
	is.Equal(s.Member("alice").CostShare, amt(t, "25.00"))
	is.Equal(s.Member("alice").OwedPortion, decimal.Decimal64p2(0))
	is.Equal(s.Member("alice").Net, decimal.Decimal64p2(0))
	is.Equal(s.Member("bob").Net, decimal.Decimal64p2(0))
}

func TestAggregatePartialPayment(t *testing.T) {
	is := is.New(t)

	e := evenExpense(t, "hotel", "100.00", "alice", "bob")
	e.Payments = []*expense.Payment{pay(t, "alice", "40.00")}

	s, err := Aggregate(members("alice", "bob"), []*expense.Expense{e})
	is.NoErr(err)

	is.Equal(s.UnpaidTotal, amt(t, "60.00"))

	// Only the 40.00 actually paid is distributed, pro-rated by the 50/50
	// cost shares.
	is.Equal(s.Member("alice").OwedPortion, amt(t, "20.00"))
	is.Equal(s.Member("bob").OwedPortion, amt(t, "20.00"))
	is.Equal(s.Member("alice").Net, amt(t, "20.00"))
	is.Equal(s.Member("bob").Net, amt(t, "-20.00"))
	is.Equal(netSum(s), decimal.Decimal64p2(0))
}

func TestAggregateRoundingDriftReconciled(t *testing.T) {
	is := is.New(t)

	e := evenExpense(t, "dinner", "100.00", "alice", "bob", "carol")
	e.Payments = []*expense.Payment{pay(t, "alice", "50.00")}

	s, err := Aggregate(members("alice", "bob", "carol"), []*expense.Expense{e})
	is.NoErr(err)

	// Shares are 33.34/33.33/33.33; pro-rating 50.00 rounds each portion
	// half up and the last participant absorbs the drift.
	is.Equal(s.Member("alice").OwedPortion, amt(t, "16.67"))
	is.Equal(s.Member("bob").OwedPortion, amt(t, "16.67"))
	is.Equal(s.Member("carol").OwedPortion, amt(t, "16.66"))
	is.Equal(netSum(s), decimal.Decimal64p2(0))
}

func TestAggregateMultipleExpenses(t *testing.T) {
	is := is.New(t)

	paid := evenExpense(t, "taxi", "30.00", "alice", "bob")
	paid.Payments = []*expense.Payment{pay(t, "bob", "30.00")}
	unpaid := evenExpense(t, "museum", "24.00", "alice", "bob")

	s, err := Aggregate(members("alice", "bob"), []*expense.Expense{paid, unpaid})
	is.NoErr(err)

	is.Equal(s.TotalCost, amt(t, "54.00"))
	is.Equal(s.TotalPaid, amt(t, "30.00"))
	is.Equal(s.UnpaidTotal, amt(t, "24.00"))

	// Cost shares cover both expenses; nets cover only the paid one.
	is.Equal(s.Member("alice").CostShare, amt(t, "27.00"))
	is.Equal(s.Member("alice").Net, amt(t, "-15.00"))
	is.Equal(s.Member("bob").Net, amt(t, "15.00"))
}

func TestAggregatePercentWarningPropagates(t *testing.T) {
	is := is.New(t)

	e := &expense.Expense{
		ID:        "supplies",
		GroupID:   "g1",
		Name:      "supplies",
		Amount:    amt(t, "60.00"),
		Currency:  "USD",
		SplitType: split.TypePercent,
		Participants: []*expense.Participant{
			{MemberID: "alice", ShareAmount: share(t, "60.00")},
			{MemberID: "bob", ShareAmount: share(t, "30.00")},
		},
		Payments: []*expense.Payment{pay(t, "alice", "60.00")},
	}

	s, err := Aggregate(members("alice", "bob"), []*expense.Expense{e})
	is.NoErr(err)

	found := false
	for _, w := range s.Warnings {
		if w.Code == split.WarnCodeSplitPolicy {
			found = true
		}
	}
	is.True(found)

	// Declared percentages sum to 90, so the cost splits 60:30.
	is.Equal(s.Member("alice").CostShare, amt(t, "40.00"))
	is.Equal(s.Member("bob").CostShare, amt(t, "20.00"))
	is.Equal(netSum(s), decimal.Decimal64p2(0))
}

func TestAggregateCurrencyMismatch(t *testing.T) {
	is := is.New(t)

	usd := evenExpense(t, "flights", "100.00", "alice")
	eur := evenExpense(t, "lunch", "20.00", "alice")
	eur.Currency = "EUR"

	s, err := Aggregate(members("alice"), []*expense.Expense{usd, eur})
	is.NoErr(err)

	// Flat totals keep the first expense's currency and still sum both.
	is.Equal(s.Currency, money.Currency("USD"))
	is.Equal(s.TotalCost, amt(t, "120.00"))

	found := false
	for _, w := range s.Warnings {
		if w.Code == WarnCodeCurrencyMismatch {
			found = true
		}
	}
	is.True(found)

	is.Equal(s.ByCurrency[money.Currency("USD")].TotalCost, amt(t, "100.00"))
	is.Equal(s.ByCurrency[money.Currency("EUR")].TotalCost, amt(t, "20.00"))
}

func TestAggregateUnknownMemberSkipped(t *testing.T) {
	is := is.New(t)

	e := evenExpense(t, "tickets", "10.00", "alice", "ghost")
	e.Payments = []*expense.Payment{pay(t, "alice", "10.00")}

	s, err := Aggregate(members("alice"), []*expense.Expense{e})
	is.NoErr(err)

	found := false
	for _, w := range s.Warnings {
		if w.Code == WarnCodeUnknownMember {
			found = true
		}
	}
	is.True(found)

	// The unknown participant's half stays unattributed; reconciliation is
	// suppressed so alice is not charged for it either.
	is.Equal(s.Member("alice").CostShare, amt(t, "5.00"))
	is.Equal(s.Member("alice").OwedPortion, amt(t, "5.00"))
	is.Equal(s.TotalCost, amt(t, "10.00"))
}

func TestAggregateDuplicateParticipantRows(t *testing.T) {
	is := is.New(t)

	// Two participant rows for the same member must not double the member's
	// attribution: the resolved shares already carry the combined value.
	e := evenExpense(t, "tickets", "10.00", "alice", "alice")
	e.Payments = []*expense.Payment{pay(t, "alice", "10.00")}

	s, err := Aggregate(members("alice", "bob"), []*expense.Expense{e})
	is.NoErr(err)

	is.Equal(s.Member("alice").CostShare, amt(t, "10.00"))
	is.Equal(s.Member("alice").OwedPortion, amt(t, "10.00"))
	is.Equal(s.Member("alice").Net, decimal.Decimal64p2(0))
	is.Equal(netSum(s), decimal.Decimal64p2(0))
}

func TestAggregateIdempotent(t *testing.T) {
	is := is.New(t)

	roster := members("alice", "bob", "carol")
	paid := evenExpense(t, "dinner", "100.00", "alice", "bob", "carol")
	paid.Payments = []*expense.Payment{pay(t, "alice", "50.00")}
	unpaid := evenExpense(t, "museum", "24.00", "alice", "ghost")
	snapshot := []*expense.Expense{paid, unpaid}

	first, err := Aggregate(roster, snapshot)
	is.NoErr(err)
	second, err := Aggregate(roster, snapshot)
	is.NoErr(err)

	is.True(reflect.DeepEqual(first.Members, second.Members))
	is.True(reflect.DeepEqual(first.Warnings, second.Warnings))
	is.Equal(first.TotalCost, second.TotalCost)
	is.Equal(first.TotalPaid, second.TotalPaid)
	is.Equal(first.UnpaidTotal, second.UnpaidTotal)
}

func TestAggregateZeroAmountExpense(t *testing.T) {
	is := is.New(t)

	e := evenExpense(t, "freebie", "0.00", "alice", "bob")
	e.Payments = []*expense.Payment{pay(t, "alice", "5.00")}

	s, err := Aggregate(members("alice", "bob"), []*expense.Expense{e})
	is.NoErr(err)

	is.Equal(s.Member("alice").AmountPaid, amt(t, "5.00"))
	is.Equal(s.Member("alice").OwedPortion, decimal.Decimal64p2(0))
	is.Equal(s.Member("bob").OwedPortion, decimal.Decimal64p2(0))
}

func TestAggregateRejectsNegativeAmounts(t *testing.T) {
	is := is.New(t)

	e := evenExpense(t, "refund", "-10.00", "alice")
	_, err := Aggregate(members("alice"), []*expense.Expense{e})
	is.True(errors.Is(err, ErrNegativeExpenseAmount))

	e2 := evenExpense(t, "tickets", "10.00", "alice")
	e2.Payments = []*expense.Payment{pay(t, "alice", "-1.00")}
	_, err = Aggregate(members("alice"), []*expense.Expense{e2})
	is.True(errors.Is(err, ErrNegativePaymentAmount))
}

func TestAggregateEmptyGroup(t *testing.T) {
	is := is.New(t)

	s, err := Aggregate(nil, nil)
	is.NoErr(err)
	is.Equal(len(s.Members), 0)
	is.Equal(s.TotalCost, decimal.Decimal64p2(0))
}
