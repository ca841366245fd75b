package split

import "github.com/strongo/decimal"

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the expense by relative weights, e.g. 1:2 or 3:5:2
// =============================================================================

// SharesStrategy implements the Strategy interface for weight-based splits
type SharesStrategy struct{}

// Type returns the split type identifier
func (s *SharesStrategy) Type() Type {
	return TypeShares
}

// Validate checks if the inputs are valid for a shares split
func (s *SharesStrategy) Validate(amount decimal.Decimal64p2, participants []Participant) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	for _, p := range participants {
		if p.ShareAmount == nil {
			return ErrMissingShareValue
		}
		if *p.ShareAmount <= 0 {
			return ErrNonPositiveShare
		}
	}
	return nil
}

// Calculate resolves each participant's share as amount * weight / total
// weight, rounded half up, with the last participant in list order adjusted
// so the shares sum exactly to the amount. A non-positive weight cannot be
// apportioned and is fatal even at read time.
func (s *SharesStrategy) Calculate(amount decimal.Decimal64p2, participants []Participant) (*Result, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}

	result := &Result{Shares: make(map[string]decimal.Decimal64p2, len(participants))}
	if len(participants) == 0 {
		return result, nil
	}

	values := make([]int64, len(participants))
	var total int64
	for i, p := range participants {
		if p.ShareAmount == nil {
			return nil, ErrMissingShareValue
		}
		if *p.ShareAmount <= 0 {
			return nil, ErrNonPositiveShare
		}
		values[i] = int64(*p.ShareAmount)
		total += values[i]
	}

	result.Shares = apportion(amount, participants, values, total)
	return result, nil
}
