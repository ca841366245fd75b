package expense

import (
	"testing"

	"github.com/strongo/decimal"
)

func amt(t *testing.T, s string) decimal.Decimal64p2 {
	t.Helper()
	v, err := decimal.ParseDecimal64p2(s)
	if err != nil {
		t.Fatalf("bad amount %q: %v", s, err)
	}
	return v
}

func withPayments(t *testing.T, amount string, payments ...string) *Expense {
	t.Helper()
	e := &Expense{Amount: amt(t, amount), Currency: "USD"}
	for _, p := range payments {
		e.Payments = append(e.Payments, &Payment{Amount: amt(t, p)})
	}
	return e
}

func TestOutstanding(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		payments []string
		want     string
	}{
		{"no payments", "50.00", nil, "50.00"},
		{"partial", "50.00", []string{"20.00"}, "30.00"},
		{"multiple partials", "50.00", []string{"20.00", "15.50"}, "14.50"},
		{"exact", "50.00", []string{"50.00"}, "0.00"},
		{"overpaid clamps to zero", "50.00", []string{"60.00"}, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := withPayments(t, tt.amount, tt.payments...)
			if got := e.Outstanding(); got != amt(t, tt.want) {
				t.Errorf("Outstanding() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDerivedStatus(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		payments []string
		status   Status
		want     Status
	}{
		{"no payments", "50.00", nil, StatusPending, StatusPending},
		{"partial", "50.00", []string{"20.00"}, StatusPending, StatusPartiallyPaid},
		{"fully paid", "50.00", []string{"50.00"}, StatusPending, StatusPaid},
		{"overpaid is paid", "50.00", []string{"60.00"}, StatusPending, StatusPaid},
		{"stale flag recomputed", "50.00", []string{"50.00"}, StatusPartiallyPaid, StatusPaid},
		{"reimbursed preserved", "50.00", []string{"50.00"}, StatusReimbursed, StatusReimbursed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := withPayments(t, tt.amount, tt.payments...)
			e.Status = tt.status
			if got := e.DerivedStatus(); got != tt.want {
				t.Errorf("DerivedStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAmountText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"12.5", "12.50"},
		{"12.05", "12.05"},
		{"1234.56", "1234.56"},
		{"-0.07", "-0.07"},
	}

	for _, tt := range tests {
		if got := AmountText(amt(t, tt.in)); got != tt.want {
			t.Errorf("AmountText(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
