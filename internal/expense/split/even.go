package split

import "github.com/strongo/decimal"

// =============================================================================
// EVEN SPLIT STRATEGY
// Divides the expense equally among all participants
// =============================================================================

// EvenStrategy implements the Strategy interface for even splits
type EvenStrategy struct{}

// Type returns the split type identifier
func (s *EvenStrategy) Type() Type {
	return TypeEven
}

// Validate checks if the inputs are valid for an even split
func (s *EvenStrategy) Validate(amount decimal.Decimal64p2, participants []Participant) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Calculate divides the amount evenly among all participants. The remainder
// (amount mod count, in minor units) goes one unit at a time to the first
// participants in list order, so the shares sum exactly to the amount and no
// two shares differ by more than one minor unit.
func (s *EvenStrategy) Calculate(amount decimal.Decimal64p2, participants []Participant) (*Result, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}

	result := &Result{Shares: make(map[string]decimal.Decimal64p2, len(participants))}
	if len(participants) == 0 {
		return result, nil
	}

	count := int64(len(participants))
	base := int64(amount) / count
	remainder := int64(amount) % count

	for i, p := range participants {
		share := base
		if int64(i) < remainder {
			share++
		}
		result.Shares[p.MemberID] += decimal.Decimal64p2(share)
	}

	return result, nil
}
