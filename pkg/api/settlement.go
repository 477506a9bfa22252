package api

type SuggestSettlementsRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type SuggestSettlementsResponse struct {
	Settlements []*Transfer `json:"settlements"`
	TotalAmount float64     `json:"totalAmount"`
}

type MarkPaidRequest struct {
	GroupID    string  `json:"groupId" validate:"required"`
	FromUserID string  `json:"fromUserId" validate:"required"`
	ToUserID   string  `json:"toUserId" validate:"required,nefield=FromUserID"`
	Amount     float64 `json:"amount" validate:"gt=0"`
	Note       string  `json:"note" validate:"max=200"`
	// AllowOverpay records the payment even if it exceeds the payer's debt.
	AllowOverpay bool `json:"allowOverpay"`
}

type MarkPaidResponse struct {
	Payment  *Payment         `json:"payment"`
	Balances []*MemberBalance `json:"balances"`
}

type ListPaymentsRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type DeletePaymentRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
}

type DeletePaymentResponse struct{}
