package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrUnknownSplitType   = errors.New("unknown split type")
	ErrNoMembers          = errors.New("group has no members")
	ErrPayerNotMember     = errors.New("payer is not a member of the group")
	ErrMissingShares      = errors.New("split requires at least one share")
	ErrShareNotMember     = errors.New("share references a member outside the group")
	ErrDuplicateShare     = errors.New("member appears more than once in split")
	ErrInvalidShareValue  = errors.New("share values must be finite and non-negative")
	ErrExactSumMismatch   = errors.New("exact parts must sum to total amount")
	ErrPercentSumMismatch = errors.New("percentages must sum to 100")
	ErrNonPositiveShares  = errors.New("shares must be greater than zero")
)

// ValidateExpense checks an expense before it is persisted. The calculator
// tolerates malformed input, so this is where bad splits are rejected.
// amount is checked as it will be stored, rounded to cents.
func ValidateExpense(amount float64, payerID string, split Split, members []string) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	if amount = RoundCents(amount); amount <= 0 {
		return ErrInvalidAmount
	}
	if split == nil {
		return ErrUnknownSplitType
	}
	if len(members) == 0 {
		return ErrNoMembers
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}
	if !memberSet[payerID] {
		return fmt.Errorf("%w: %s", ErrPayerNotMember, payerID)
	}

	if _, ok := split.(Equal); ok {
		return nil
	}

	parts := partsOf(split)
	if len(parts) == 0 {
		return ErrMissingShares
	}

	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if !memberSet[p.MemberID] {
			return fmt.Errorf("%w: %s", ErrShareNotMember, p.MemberID)
		}
		if seen[p.MemberID] {
			return fmt.Errorf("%w: %s", ErrDuplicateShare, p.MemberID)
		}
		seen[p.MemberID] = true
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value < 0 {
			return ErrInvalidShareValue
		}
	}

	sum := sumParts(parts)
	switch split.(type) {
	case Exact:
		if !withinTolerance(sum, amount) {
			return fmt.Errorf("%w: parts sum to %s, total is %.2f", ErrExactSumMismatch, sum.StringFixed(2), amount)
		}
	case Percentage:
		if !withinTolerance(sum, 100) {
			return fmt.Errorf("%w: got %s", ErrPercentSumMismatch, sum.StringFixed(2))
		}
	case Shares:
		if !sum.GreaterThan(decimal.Zero) {
			return ErrNonPositiveShares
		}
	}

	return nil
}
