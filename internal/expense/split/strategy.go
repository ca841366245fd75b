package split

import (
	"errors"
	"fmt"

	"github.com/strongo/decimal"
)

// Type defines the split policy of an expense
type Type string

const (
	TypeEven    Type = "EVEN"
	TypePercent Type = "PERCENT"
	TypeShares  Type = "SHARES"
)

// Participant represents one member's inclusion in a split. ShareAmount is
// ignored for EVEN, a percentage point value for PERCENT and a relative
// weight for SHARES.
type Participant struct {
	MemberID    string               `json:"memberId"`
	ShareAmount *decimal.Decimal64p2 `json:"shareAmount,omitempty"`
}

// Result holds the resolved cost per member. Shares always sum exactly to
// the input amount. Warnings carry non-fatal policy violations.
type Result struct {
	Shares   map[string]decimal.Decimal64p2
	Warnings []Warning
}

// Warning is a non-fatal problem detected while resolving a split
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WarnCodeSplitPolicy flags declared shares that violate the split policy,
// e.g. percentages that do not sum to 100.
const WarnCodeSplitPolicy = "SPLIT_POLICY"

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate resolves the cost share of every participant. It is
	// lenient: recoverable policy violations produce warnings, not errors.
	Calculate(amount decimal.Decimal64p2, participants []Participant) (*Result, error)

	// Type returns the type identifier for this strategy
	Type() Type

	// Validate applies the strict creation-time rules for this strategy
	Validate(amount decimal.Decimal64p2, participants []Participant) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType Type) (Strategy, error) {
	switch splitType {
	case TypeEven:
		return &EvenStrategy{}, nil
	case TypePercent:
		return &PercentStrategy{}, nil
	case TypeShares:
		return &SharesStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split type: %s", splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests)
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	return f.Create(Type(splitType))
}

var defaultFactory = NewFactory()

// Resolve runs the strategy for splitType over amount and participants.
// Zero participants resolves to an empty mapping: the amount is
// unattributed and no one owes anything.
func Resolve(amount decimal.Decimal64p2, splitType Type, participants []Participant) (*Result, error) {
	strategy, err := defaultFactory.Create(splitType)
	if err != nil {
		return nil, err
	}
	return strategy.Calculate(amount, participants)
}

var (
	ErrNoParticipants     = errors.New("at least one participant is required")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrMissingShareValue  = errors.New("share value required for all participants")
	ErrNegativeShareValue = errors.New("share value cannot be negative")
	ErrNonPositiveShare   = errors.New("share weight must be greater than zero")
	ErrPercentOutOfRange  = errors.New("percentage must be between 0 and 100")
	ErrPercentSumMismatch = errors.New("percentages must sum to 100")
	ErrZeroShareTotal     = errors.New("declared share values sum to zero")
)

// mulDivHalfUp computes round-half-up(a*b/den) in integer minor units.
// a and b must be non-negative and den positive.
func mulDivHalfUp(a, b, den int64) int64 {
	return (2*a*b + den) / (2 * den)
}

// ProRata returns round-half-up(total * part / whole) in minor units,
// using the same rounding as the split strategies. A zero whole yields zero.
func ProRata(total, part, whole decimal.Decimal64p2) decimal.Decimal64p2 {
	if whole == 0 {
		return 0
	}
	return decimal.Decimal64p2(mulDivHalfUp(int64(total), int64(part), int64(whole)))
}

// apportion distributes amount across participants proportionally to their
// declared values, rounding half up per participant. The last participant
// absorbs the rounding drift so the shares sum exactly to amount. When many
// tiny shares all round up, the accumulated drift can push the last share
// negative; the sum is still exact.
func apportion(amount decimal.Decimal64p2, participants []Participant, values []int64, total int64) map[string]decimal.Decimal64p2 {
	shares := make(map[string]decimal.Decimal64p2, len(participants))
	var distributed int64
	for i, p := range participants {
		var share int64
		if i == len(participants)-1 {
			share = int64(amount) - distributed
		} else {
			share = mulDivHalfUp(int64(amount), values[i], total)
		}
		distributed += share
		shares[p.MemberID] += decimal.Decimal64p2(share)
	}
	return shares
}
