package models

// Payment represents a settlement between two group members.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromUserID is the member who paid (debtor settling up).
	FromUserID string

	// ToUserID is the member who received the money (creditor being paid).
	ToUserID string

	// Amount is the payment amount. Always positive.
	Amount float64

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string

	// Note is an optional description for the payment.
	Note string
}
