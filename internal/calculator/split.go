package calculator

import (
	"fmt"

	"github.com/mmynk/settleup/internal/models"
)

// Part is one member's value in a split. Its meaning depends on the split:
// a currency amount for Exact, a percentage for Percentage, a weight for Shares.
type Part struct {
	MemberID string
	Value    float64
}

// Split is the rule used to divide an expense among members.
// It is always one of Equal, Exact, Percentage or Shares.
type Split interface {
	Type() models.SplitType
	isSplit()
}

// Equal divides the amount evenly among every group member.
type Equal struct{}

// Exact charges each member a fixed amount. The amounts should add up to the
// expense total.
type Exact struct {
	Parts []Part
}

// Percentage charges each member a percentage of the total. The percentages
// should add up to 100.
type Percentage struct {
	Parts []Part
}

// Shares charges each member in proportion to their weight.
type Shares struct {
	Weights []Part
}

func (Equal) Type() models.SplitType      { return models.SplitEqual }
func (Exact) Type() models.SplitType      { return models.SplitExact }
func (Percentage) Type() models.SplitType { return models.SplitPercentage }
func (Shares) Type() models.SplitType     { return models.SplitShares }

func (Equal) isSplit()      {}
func (Exact) isSplit()      {}
func (Percentage) isSplit() {}
func (Shares) isSplit()     {}

// NewSplit builds the split for a stored split type and its share rows.
// Share rows are ignored for equal splits.
func NewSplit(splitType models.SplitType, shares []models.ExpenseShare) (Split, error) {
	parts := make([]Part, len(shares))
	for i, s := range shares {
		parts[i] = Part{MemberID: s.UserID, Value: s.Value}
	}

	switch splitType {
	case models.SplitEqual:
		return Equal{}, nil
	case models.SplitExact:
		return Exact{Parts: parts}, nil
	case models.SplitPercentage:
		return Percentage{Parts: parts}, nil
	case models.SplitShares:
		return Shares{Weights: parts}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, splitType)
}

// partsOf returns the share rows carried by s, or nil for Equal.
func partsOf(s Split) []Part {
	switch s := s.(type) {
	case Exact:
		return s.Parts
	case Percentage:
		return s.Parts
	case Shares:
		return s.Weights
	}
	return nil
}

// Debits returns what each member owes for an expense of amount under s, in the
// order of the split's parts (or of members for Equal). Values are not rounded.
//
// Malformed splits are applied as given: exact parts that do not add up, or
// percentages that do not reach 100, produce an unbalanced debit list. Callers
// are expected to run ValidateExpense before persisting an expense.
func Debits(s Split, amount float64, members []string) []Part {
	switch s := s.(type) {
	case Equal:
		return equalDebits(amount, members)
	case Exact:
		return exactDebits(s.Parts)
	case Percentage:
		return percentageDebits(amount, s.Parts)
	case Shares:
		return sharesDebits(amount, s.Weights)
	}
	return nil
}

func equalDebits(amount float64, members []string) []Part {
	n := len(members)
	if n == 0 {
		n = 1
	}
	per := amount / float64(n)

	debits := make([]Part, len(members))
	for i, m := range members {
		debits[i] = Part{MemberID: m, Value: per}
	}
	return debits
}

func exactDebits(parts []Part) []Part {
	debits := make([]Part, len(parts))
	copy(debits, parts)
	return debits
}

func percentageDebits(amount float64, parts []Part) []Part {
	debits := make([]Part, len(parts))
	for i, p := range parts {
		debits[i] = Part{MemberID: p.MemberID, Value: p.Value / 100 * amount}
	}
	return debits
}

func sharesDebits(amount float64, weights []Part) []Part {
	var sum float64
	for _, w := range weights {
		sum += w.Value
	}
	// All-zero weights charge nobody rather than dividing by zero.
	if sum == 0 {
		sum = 1
	}

	debits := make([]Part, len(weights))
	for i, w := range weights {
		debits[i] = Part{MemberID: w.MemberID, Value: w.Value / sum * amount}
	}
	return debits
}
