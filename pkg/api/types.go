// Package api defines the messages exchanged by the settleup.v1 RPC services.
// Messages travel as JSON with camelCase field names. Amounts are in the
// group's currency units; timestamps are unix seconds.
package api

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Currency  string   `json:"currency"`
	MemberIDs []string `json:"memberIds"`
	Members   []*User  `json:"members,omitempty"`
	CreatedAt int64    `json:"createdAt"`
}

// Share is one member's portion of a non-equal split: an amount for exact,
// 0-100 for percentage, a weight for shares.
type Share struct {
	MemberID string  `json:"memberId" validate:"required"`
	Value    float64 `json:"value" validate:"gte=0"`
}

type Expense struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"groupId"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	PayerID     string   `json:"payerId"`
	SplitType   string   `json:"splitType"`
	Shares      []*Share `json:"shares,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

type Payment struct {
	ID         string  `json:"id"`
	GroupID    string  `json:"groupId"`
	FromUserID string  `json:"fromUserId"`
	ToUserID   string  `json:"toUserId"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note,omitempty"`
	CreatedBy  string  `json:"createdBy,omitempty"`
	CreatedAt  int64   `json:"createdAt"`
}

// MemberBalance is a member's position in a group.
// Positive NetBalance = the group owes the member.
type MemberBalance struct {
	MemberID    string  `json:"memberId"`
	DisplayName string  `json:"displayName,omitempty"`
	NetBalance  float64 `json:"netBalance"`
	TotalPaid   float64 `json:"totalPaid"`
	TotalOwed   float64 `json:"totalOwed"`
}

// Transfer is a suggested payment.
type Transfer struct {
	FromUserID string  `json:"fromUserId"`
	ToUserID   string  `json:"toUserId"`
	Amount     float64 `json:"amount"`
}

type Activity struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"groupId"`
	GroupName   string  `json:"groupName,omitempty"`
	ActorID     string  `json:"actorId"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount,omitempty"`
	ReferenceID string  `json:"referenceId,omitempty"`
	CreatedAt   int64   `json:"createdAt"`
}

// FriendBalance is the net between the caller and another member across
// shared groups. Positive = the friend owes the caller.
type FriendBalance struct {
	FriendID    string   `json:"friendId"`
	DisplayName string   `json:"displayName,omitempty"`
	Net         float64  `json:"net"`
	GroupIDs    []string `json:"groupIds"`
}
