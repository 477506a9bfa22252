// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is returned (wrapped with the missing ID) when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique field (a user's email) is already taken.
var ErrDuplicate = errors.New("already exists")

// Source is the data-access contract the balance engine reads a group's
// history through, plus the single write it performs when a debt is paid.
type Source interface {
	// ListGroupMemberIDs returns the IDs of the group's current members.
	// Returns ErrNotFound if the group does not exist.
	ListGroupMemberIDs(ctx context.Context, groupID string) ([]string, error)

	// ListExpensesByGroup returns the group's expenses, newest first.
	// Shares are not populated; use ListExpenseShares.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListExpenseShares returns the share rows recorded for an expense.
	ListExpenseShares(ctx context.Context, expenseID string) ([]models.ExpenseShare, error)

	// ListPaymentsByGroup returns the group's payments, newest first.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)

	// CreatePayment persists a new payment. ID and CreatedAt are filled in
	// when empty.
	CreatePayment(ctx context.Context, payment *models.Payment) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the service layer.
type Store interface {
	Source

	// CreateUser persists a new user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if missing.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if missing.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateGroup persists a new group with its members.
	// ID, Currency and CreatedAt are filled in when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members. Returns ErrNotFound if missing.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns every group ordered by name.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsByMember returns the groups userID belongs to, ordered by name.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers adds users to a group. Existing members are ignored.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// CreateExpense persists an expense and its share rows atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its shares. Returns ErrNotFound if missing.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// DeleteExpense removes an expense and its shares.
	DeleteExpense(ctx context.Context, expenseID string) error

	// GetPayment retrieves a payment. Returns ErrNotFound if missing.
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// DeletePayment removes a payment.
	DeletePayment(ctx context.Context, paymentID string) error

	// CreateActivity appends an entry to the activity feed.
	CreateActivity(ctx context.Context, activity *models.Activity) error

	// ListActivityByGroups returns the newest activity across groupIDs.
	// limit <= 0 means no limit.
	ListActivityByGroups(ctx context.Context, groupIDs []string, limit int) ([]*models.Activity, error)

	// Close releases any resources held by the store.
	Close() error
}
