package balance

import (
	"testing"

	"github.com/crediterra/money"
	"github.com/matryer/is"

	"github.com/hearthway/hearthway/internal/expense"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		currency string
		amount   string
		want     string
	}{
		{"USD", "12.50", "$12.50"},
		{"USD", "0.00", "$0.00"},
		{"EUR", "-0.07", "-€0.07"},
		{"GBP", "1250.00", "£1250.00"},
		{"JPY", "500.00", "¥500.00"},
		{"SEK", "12.50", "SEK 12.50"},
		{"", "3.05", "3.05"},
	}

	for _, tt := range tests {
		is := is.New(t)
		got := FormatAmount(money.Currency(tt.currency), amt(t, tt.amount))
		is.Equal(got, tt.want)
	}
}

func TestFormatStatementOrdering(t *testing.T) {
	is := is.New(t)

	// bob paid everything, alice and carol owe; carol's share is largest.
	e := &expense.Expense{
		ID:        "villa",
		GroupID:   "g1",
		Name:      "villa",
		Amount:    amt(t, "120.00"),
		Currency:  "USD",
		SplitType: "SHARES",
		Participants: []*expense.Participant{
			{MemberID: "alice", ShareAmount: share(t, "1.00")},
			{MemberID: "bob", ShareAmount: share(t, "2.00")},
			{MemberID: "carol", ShareAmount: share(t, "3.00")},
		},
		Payments: []*expense.Payment{pay(t, "bob", "120.00")},
	}

	s, err := Aggregate(members("alice", "bob", "carol"), []*expense.Expense{e})
	is.NoErr(err)

	st := FormatStatement(s)

	// Costs descend: carol 60, bob 40, alice 20.
	is.Equal(st.Costs[0].DisplayName, "carol")
	is.Equal(st.Costs[0].Amount, "$60.00")
	is.Equal(st.Costs[1].DisplayName, "bob")
	is.Equal(st.Costs[2].DisplayName, "alice")

	// Paid descends with bob on top; alice and carol tie at zero and keep
	// group order.
	is.Equal(st.Paid[0].DisplayName, "bob")
	is.Equal(st.Paid[0].Amount, "$120.00")
	is.Equal(st.Paid[1].DisplayName, "alice")
	is.Equal(st.Paid[2].DisplayName, "carol")

	// Nets descend: bob +80, alice -20, carol -60.
	is.Equal(st.Nets[0].DisplayName, "bob")
	is.Equal(st.Nets[0].Net, "$80.00")
	is.Equal(st.Nets[1].DisplayName, "alice")
	is.Equal(st.Nets[1].Net, "-$20.00")
	is.Equal(st.Nets[2].DisplayName, "carol")
	is.Equal(st.Nets[2].Net, "-$60.00")

	is.Equal(st.ExcludesUnpaid, false)
}

func TestFormatStatementFlagsUnpaid(t *testing.T) {
	is := is.New(t)

	paid := evenExpense(t, "fuel", "40.00", "alice", "bob")
	paid.Payments = []*expense.Payment{pay(t, "alice", "40.00")}
	unpaid := evenExpense(t, "ferry", "25.00", "alice", "bob")

	s, err := Aggregate(members("alice", "bob"), []*expense.Expense{paid, unpaid})
	is.NoErr(err)

	st := FormatStatement(s)
	is.Equal(st.ExcludesUnpaid, true)
	is.Equal(st.UnpaidTotal, "$25.00")
	is.Equal(st.TotalCost, "$65.00")
	is.Equal(st.TotalPaid, "$40.00")
}

func TestFormatStatementByCurrency(t *testing.T) {
	is := is.New(t)

	usd := evenExpense(t, "flights", "100.00", "alice")
	eur := evenExpense(t, "lunch", "20.00", "alice")
	eur.Currency = "EUR"

	s, err := Aggregate(members("alice"), []*expense.Expense{usd, eur})
	is.NoErr(err)

	st := FormatStatement(s)
	is.Equal(len(st.ByCurrency), 2)
	// Sorted by currency code.
	is.Equal(st.ByCurrency[0].Currency, "EUR")
	is.Equal(st.ByCurrency[0].TotalCost, "€20.00")
	is.Equal(st.ByCurrency[1].Currency, "USD")
	is.Equal(st.ByCurrency[1].TotalCost, "$100.00")

	is.True(len(st.Warnings) > 0)
}

func TestFormatStatementEmptyGroup(t *testing.T) {
	is := is.New(t)

	s, err := Aggregate(nil, nil)
	is.NoErr(err)

	st := FormatStatement(s)
	is.Equal(st.TotalCost, "0.00")
	is.Equal(len(st.Costs), 0)
	is.Equal(st.ExcludesUnpaid, false)
}
