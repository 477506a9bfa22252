package models

// ActivityKind classifies an activity feed entry.
type ActivityKind string

const (
	ActivityGroupCreated    ActivityKind = "group_created"
	ActivityMemberAdded     ActivityKind = "member_added"
	ActivityExpenseAdded    ActivityKind = "expense_added"
	ActivityExpenseDeleted  ActivityKind = "expense_deleted"
	ActivityPaymentRecorded ActivityKind = "payment_recorded"
	ActivityPaymentDeleted  ActivityKind = "payment_deleted"
)

// Activity is one entry in a group's activity feed.
type Activity struct {
	ID          string
	GroupID     string
	ActorID     string
	Kind        ActivityKind
	Description string
	Amount      float64

	// ReferenceID points at the expense, payment or member the entry is about.
	ReferenceID string

	CreatedAt int64
}
