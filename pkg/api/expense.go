package api

type AddExpenseRequest struct {
	GroupID     string  `json:"groupId" validate:"required"`
	Description string  `json:"description" validate:"required,max=200"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	// PayerID defaults to the caller.
	PayerID   string   `json:"payerId"`
	SplitType string   `json:"splitType" validate:"required,oneof=equal exact percentage shares"`
	Shares    []*Share `json:"shares" validate:"dive,required"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId" validate:"required"`
}

type DeleteExpenseResponse struct{}
