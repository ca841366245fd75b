package split

import (
	"errors"
	"fmt"
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

func share(t *testing.T, s string) *decimal.Decimal64p2 {
	t.Helper()
	v := amt(t, s)
	return &v
}

func sumShares(shares map[string]decimal.Decimal64p2) decimal.Decimal64p2 {
	var total decimal.Decimal64p2
	for _, v := range shares {
		total += v
	}
	return total
}

func TestEvenCalculate(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		participants []Participant
		want         map[string]string
	}{
		{
			name:   "clean division",
			amount: "90.00",
			participants: []Participant{
				{MemberID: "a"}, {MemberID: "b"}, {MemberID: "c"},
			},
			want: map[string]string{"a": "30.00", "b": "30.00", "c": "30.00"},
		},
		{
			name:   "extra cent goes to first participant",
			amount: "10.01",
			participants: []Participant{
				{MemberID: "a"}, {MemberID: "b"},
			},
			want: map[string]string{"a": "5.01", "b": "5.00"},
		},
		{
			name:   "two-cent remainder over three participants",
			amount: "1.00",
			participants: []Participant{
				{MemberID: "a"}, {MemberID: "b"}, {MemberID: "c"},
			},
			want: map[string]string{"a": "0.34", "b": "0.33", "c": "0.33"},
		},
		{
			name:         "single participant takes everything",
			amount:       "42.37",
			participants: []Participant{{MemberID: "a"}},
			want:         map[string]string{"a": "42.37"},
		},
		{
			name:         "zero amount",
			amount:       "0",
			participants: []Participant{{MemberID: "a"}, {MemberID: "b"}},
			want:         map[string]string{"a": "0", "b": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Resolve(amt(t, tt.amount), TypeEven, tt.participants)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			for memberID, want := range tt.want {
				if got := result.Shares[memberID]; got != amt(t, want) {
					t.Errorf("share[%s] = %v, want %s", memberID, got, want)
				}
			}
			if got := sumShares(result.Shares); got != amt(t, tt.amount) {
				t.Errorf("shares sum to %v, want %s", got, tt.amount)
			}
		})
	}
}

func TestEvenFairness(t *testing.T) {
	// No two shares may differ by more than one minor unit.
	participants := make([]Participant, 7)
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, id := range ids {
		participants[i] = Participant{MemberID: id}
	}

	result, err := Resolve(amt(t, "100.00"), TypeEven, participants)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	min, max := result.Shares["a"], result.Shares["a"]
	for _, v := range result.Shares {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max-min > 1 {
		t.Errorf("shares spread %v exceeds one minor unit (min %v, max %v)", max-min, min, max)
	}
	if got := sumShares(result.Shares); got != amt(t, "100.00") {
		t.Errorf("shares sum to %v, want 100.00", got)
	}
}

func TestPercentCalculate(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		participants []Participant
		want         map[string]string
		wantWarnings int
		wantErr      error
	}{
		{
			name:   "33/33/34",
			amount: "100.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "33")},
				{MemberID: "b", ShareAmount: share(t, "33")},
				{MemberID: "c", ShareAmount: share(t, "34")},
			},
			want: map[string]string{"a": "33.00", "b": "33.00", "c": "34.00"},
		},
		{
			name:   "thirds reconcile on last participant",
			amount: "100.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "33.33")},
				{MemberID: "b", ShareAmount: share(t, "33.33")},
				{MemberID: "c", ShareAmount: share(t, "33.34")},
			},
			want: map[string]string{"a": "33.33", "b": "33.33", "c": "33.34"},
		},
		{
			name:   "sum under 100 warns and apportions proportionally",
			amount: "100.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "25")},
				{MemberID: "b", ShareAmount: share(t, "25")},
			},
			want:         map[string]string{"a": "50.00", "b": "50.00"},
			wantWarnings: 1,
		},
		{
			name:   "sum over 100 warns and apportions proportionally",
			amount: "60.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "100")},
				{MemberID: "b", ShareAmount: share(t, "50")},
			},
			want:         map[string]string{"a": "40.00", "b": "20.00"},
			wantWarnings: 1,
		},
		{
			name:   "missing percentage",
			amount: "10.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "50")},
				{MemberID: "b"},
			},
			wantErr: ErrMissingShareValue,
		},
		{
			name:   "negative percentage",
			amount: "10.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "-10")},
				{MemberID: "b", ShareAmount: share(t, "110")},
			},
			wantErr: ErrNegativeShareValue,
		},
		{
			name:   "all-zero percentages cannot apportion a positive amount",
			amount: "10.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "0")},
				{MemberID: "b", ShareAmount: share(t, "0")},
			},
			wantErr: ErrZeroShareTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Resolve(amt(t, tt.amount), TypePercent, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			for memberID, want := range tt.want {
				if got := result.Shares[memberID]; got != amt(t, want) {
					t.Errorf("share[%s] = %v, want %s", memberID, got, want)
				}
			}
			if got := sumShares(result.Shares); got != amt(t, tt.amount) {
				t.Errorf("shares sum to %v, want %s", got, tt.amount)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("got %d warnings, want %d: %v", len(result.Warnings), tt.wantWarnings, result.Warnings)
			}
		})
	}
}

func TestSharesCalculate(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		participants []Participant
		want         map[string]string
		wantErr      error
	}{
		{
			name:   "one to two",
			amount: "90.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "1")},
				{MemberID: "b", ShareAmount: share(t, "2")},
			},
			want: map[string]string{"a": "30.00", "b": "60.00"},
		},
		{
			name:   "uneven weights reconcile on last participant",
			amount: "100.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "1")},
				{MemberID: "b", ShareAmount: share(t, "1")},
				{MemberID: "c", ShareAmount: share(t, "1")},
			},
			want: map[string]string{"a": "33.33", "b": "33.33", "c": "33.34"},
		},
		{
			name:   "fractional weights",
			amount: "10.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "0.5")},
				{MemberID: "b", ShareAmount: share(t, "1.5")},
			},
			want: map[string]string{"a": "2.50", "b": "7.50"},
		},
		{
			name:   "zero weight is fatal",
			amount: "10.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "0")},
				{MemberID: "b", ShareAmount: share(t, "1")},
			},
			wantErr: ErrNonPositiveShare,
		},
		{
			name:   "negative weight is fatal",
			amount: "10.00",
			participants: []Participant{
				{MemberID: "a", ShareAmount: share(t, "-1")},
				{MemberID: "b", ShareAmount: share(t, "2")},
			},
			wantErr: ErrNonPositiveShare,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Resolve(amt(t, tt.amount), TypeShares, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			for memberID, want := range tt.want {
				if got := result.Shares[memberID]; got != amt(t, want) {
					t.Errorf("share[%s] = %v, want %s", memberID, got, want)
				}
			}
			if got := sumShares(result.Shares); got != amt(t, tt.amount) {
				t.Errorf("shares sum to %v, want %s", got, tt.amount)
			}
		})
	}
}

func TestPercentTinyAmountDrift(t *testing.T) {
	// Ten participants at 10% of 0.05: nine half-up roundings yield 0.01
	// each and the last participant absorbs -0.04. Conservation still holds.
	participants := make([]Participant, 10)
	for i := range participants {
		participants[i] = Participant{
			MemberID:    fmt.Sprintf("p%d", i),
			ShareAmount: share(t, "10.00"),
		}
	}

	result, err := Resolve(amt(t, "0.05"), TypePercent, participants)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Resolve() warnings = %v, want none", result.Warnings)
	}

	for i := 0; i < 9; i++ {
		id := fmt.Sprintf("p%d", i)
		if result.Shares[id] != amt(t, "0.01") {
			t.Errorf("share[%s] = %s, want 0.01", id, result.Shares[id])
		}
	}
	if result.Shares["p9"] != amt(t, "-0.04") {
		t.Errorf("share[p9] = %s, want -0.04", result.Shares["p9"])
	}
	if got := sumShares(result.Shares); got != amt(t, "0.05") {
		t.Errorf("sum = %s, want 0.05", got)
	}
}

func TestResolveEdgeCases(t *testing.T) {
	t.Run("negative amount", func(t *testing.T) {
		_, err := Resolve(amt(t, "-1.00"), TypeEven, []Participant{{MemberID: "a"}})
		if !errors.Is(err, ErrNegativeAmount) {
			t.Errorf("Resolve() error = %v, want %v", err, ErrNegativeAmount)
		}
	})

	t.Run("zero participants yields empty mapping", func(t *testing.T) {
		for _, splitType := range []Type{TypeEven, TypePercent, TypeShares} {
			result, err := Resolve(amt(t, "10.00"), splitType, nil)
			if err != nil {
				t.Fatalf("Resolve(%s) error = %v", splitType, err)
			}
			if len(result.Shares) != 0 {
				t.Errorf("Resolve(%s) shares = %v, want empty", splitType, result.Shares)
			}
		}
	})

	t.Run("unknown split type", func(t *testing.T) {
		if _, err := Resolve(amt(t, "10.00"), Type("EXACT"), []Participant{{MemberID: "a"}}); err == nil {
			t.Error("Resolve() expected error for unknown split type")
		}
	})
}

func TestValidate(t *testing.T) {
	factory := NewFactory()

	percent, _ := factory.Create(TypePercent)
	if err := percent.Validate(amt(t, "10.00"), []Participant{
		{MemberID: "a", ShareAmount: share(t, "60")},
		{MemberID: "b", ShareAmount: share(t, "30")},
	}); !errors.Is(err, ErrPercentSumMismatch) {
		t.Errorf("percent Validate() error = %v, want %v", err, ErrPercentSumMismatch)
	}

	if err := percent.Validate(amt(t, "10.00"), []Participant{
		{MemberID: "a", ShareAmount: share(t, "101")},
	}); !errors.Is(err, ErrPercentOutOfRange) {
		t.Errorf("percent Validate() error = %v, want %v", err, ErrPercentOutOfRange)
	}

	shares, _ := factory.Create(TypeShares)
	if err := shares.Validate(amt(t, "10.00"), []Participant{
		{MemberID: "a", ShareAmount: share(t, "0")},
	}); !errors.Is(err, ErrNonPositiveShare) {
		t.Errorf("shares Validate() error = %v, want %v", err, ErrNonPositiveShare)
	}

	even, _ := factory.Create(TypeEven)
	if err := even.Validate(amt(t, "10.00"), nil); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("even Validate() error = %v, want %v", err, ErrNoParticipants)
	}
}
