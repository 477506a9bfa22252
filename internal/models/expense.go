package models

// SplitType names the rule used to divide an expense among group members.
type SplitType string

const (
	// SplitEqual divides the amount evenly among all current group members.
	SplitEqual SplitType = "equal"
	// SplitExact assigns each share row a currency amount.
	SplitExact SplitType = "exact"
	// SplitPercentage assigns each share row a percentage (0-100) of the amount.
	SplitPercentage SplitType = "percentage"
	// SplitShares assigns each share row a weight; amounts are proportional to weights.
	SplitShares SplitType = "shares"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitEqual, SplitExact, SplitPercentage, SplitShares:
		return true
	}
	return false
}

// Expense represents a single outlay in a group.
// Expenses are created and deleted, never edited.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns the expense.
	GroupID string

	// Description is what the money was spent on (e.g., "Train Tickets").
	Description string

	// Amount is the total paid, in the group's currency. Always positive.
	Amount float64

	// PayerID is the member who fronted the money.
	PayerID string

	// SplitType selects how Amount is divided.
	SplitType SplitType

	// Shares holds one row per member for non-equal splits.
	// The meaning of ExpenseShare.Value depends on SplitType.
	Shares []ExpenseShare

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseShare is one member's value for a non-equal split:
// a currency amount (exact), a percentage (percentage) or a weight (shares).
type ExpenseShare struct {
	ExpenseID string
	UserID    string
	Value     float64
}
