package postgres

import "github.com/mmynk/settleup/internal/models"

// Row types mirror the SQLite schema. Timestamps are unix seconds so both
// backends hand the same values to the service layer.

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"not null;uniqueIndex;size:255"`
	DisplayName  string `gorm:"not null;size:255"`
	PasswordHash string `gorm:"not null;default:''"`
	CreatedAt    int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    int64  `gorm:"not null;autoUpdateTime:false"`
}

func (userRow) TableName() string { return "users" }

type groupRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"not null;size:255;index"`
	Currency  string `gorm:"not null;size:3"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:false"`
}

func (groupRow) TableName() string { return "groups" }

type groupMemberRow struct {
	GroupID  string `gorm:"primaryKey;size:36"`
	UserID   string `gorm:"primaryKey;size:36;index"`
	JoinedAt int64  `gorm:"not null"`
}

func (groupMemberRow) TableName() string { return "group_members" }

type expenseRow struct {
	ID          string  `gorm:"primaryKey;size:36"`
	Seq         int64   `gorm:"autoIncrement;not null"`
	GroupID     string  `gorm:"not null;size:36;index"`
	Description string  `gorm:"not null"`
	Amount      float64 `gorm:"not null"`
	PayerID     string  `gorm:"not null;size:36"`
	SplitType   string  `gorm:"not null;size:20"`
	CreatedAt   int64   `gorm:"not null;autoCreateTime:false"`
}

func (expenseRow) TableName() string { return "expenses" }

type expenseShareRow struct {
	ExpenseID string  `gorm:"primaryKey;size:36"`
	UserID    string  `gorm:"primaryKey;size:36"`
	Value     float64 `gorm:"not null"`
}

func (expenseShareRow) TableName() string { return "expense_shares" }

type paymentRow struct {
	ID         string  `gorm:"primaryKey;size:36"`
	Seq        int64   `gorm:"autoIncrement;not null"`
	GroupID    string  `gorm:"not null;size:36;index"`
	FromUserID string  `gorm:"not null;size:36"`
	ToUserID   string  `gorm:"not null;size:36"`
	Amount     float64 `gorm:"not null"`
	CreatedAt  int64   `gorm:"not null;autoCreateTime:false"`
	CreatedBy  string  `gorm:"not null;default:''"`
	Note       *string
}

func (paymentRow) TableName() string { return "payments" }

type activityRow struct {
	ID          string  `gorm:"primaryKey;size:36"`
	Seq         int64   `gorm:"autoIncrement;not null"`
	GroupID     string  `gorm:"not null;size:36;index"`
	ActorID     string  `gorm:"not null;size:36"`
	Kind        string  `gorm:"not null;size:32"`
	Description string  `gorm:"not null"`
	Amount      float64 `gorm:"not null;default:0"`
	ReferenceID string  `gorm:"not null;default:''"`
	CreatedAt   int64   `gorm:"not null;autoCreateTime:false"`
}

func (activityRow) TableName() string { return "activities" }

func toUser(r *userRow) *models.User {
	return &models.User{
		ID:           r.ID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toExpense(r *expenseRow) *models.Expense {
	return &models.Expense{
		ID:          r.ID,
		GroupID:     r.GroupID,
		Description: r.Description,
		Amount:      r.Amount,
		PayerID:     r.PayerID,
		SplitType:   models.SplitType(r.SplitType),
		CreatedAt:   r.CreatedAt,
	}
}

func toPayment(r *paymentRow) *models.Payment {
	p := &models.Payment{
		ID:         r.ID,
		GroupID:    r.GroupID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Amount:     r.Amount,
		CreatedAt:  r.CreatedAt,
		CreatedBy:  r.CreatedBy,
	}
	if r.Note != nil {
		p.Note = *r.Note
	}
	return p
}

func toActivity(r *activityRow) *models.Activity {
	return &models.Activity{
		ID:          r.ID,
		GroupID:     r.GroupID,
		ActorID:     r.ActorID,
		Kind:        models.ActivityKind(r.Kind),
		Description: r.Description,
		Amount:      r.Amount,
		ReferenceID: r.ReferenceID,
		CreatedAt:   r.CreatedAt,
	}
}
