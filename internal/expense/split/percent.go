package split

import (
	"fmt"

	"github.com/strongo/decimal"
)

// =============================================================================
// PERCENT SPLIT STRATEGY
// Divides the expense based on declared percentages for each participant
// =============================================================================

// fullPercent is 100% expressed in Decimal64p2 units (hundredths of a point).
const fullPercent = 100 * 100

// PercentStrategy implements the Strategy interface for percentage-based splits
type PercentStrategy struct{}

// Type returns the split type identifier
func (s *PercentStrategy) Type() Type {
	return TypePercent
}

// Validate applies the strict creation-time rules: every participant carries
// a percentage between 0 and 100 and the percentages sum to exactly 100.
func (s *PercentStrategy) Validate(amount decimal.Decimal64p2, participants []Participant) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if amount < 0 {
		return ErrNegativeAmount
	}

	var total int64
	for _, p := range participants {
		if p.ShareAmount == nil {
			return ErrMissingShareValue
		}
		value := int64(*p.ShareAmount)
		if value < 0 || value > fullPercent {
			return ErrPercentOutOfRange
		}
		total += value
	}
	if total != fullPercent {
		return ErrPercentSumMismatch
	}
	return nil
}

// Calculate resolves each participant's share as amount * percentage / 100,
// rounded half up to the minor unit, with the last participant in list order
// adjusted so the shares sum exactly to the amount.
//
// Percentages that do not sum to 100 are not fatal here: creation-time
// validation is expected to have caught them already, so the amount is
// apportioned proportionally to the declared values and a warning is emitted
// for the caller to surface.
func (s *PercentStrategy) Calculate(amount decimal.Decimal64p2, participants []Participant) (*Result, error) {
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
		value := int64(*p.ShareAmount)
		if value < 0 {
			return nil, ErrNegativeShareValue
		}
		values[i] = value
		total += value
	}

	if total != fullPercent {
		result.Warnings = append(result.Warnings, Warning{
			Code:    WarnCodeSplitPolicy,
			Message: fmt.Sprintf("declared percentages sum to %s, not 100", decimal.Decimal64p2(total)),
		})
	}
	if total == 0 {
		if amount != 0 {
			return nil, ErrZeroShareTotal
		}
		for _, p := range participants {
			result.Shares[p.MemberID] = 0
		}
		return result, nil
	}

	result.Shares = apportion(amount, participants, values, total)
	return result, nil
}
