// Package memory provides an in-process storage.Store used for demos and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every record in maps guarded by a single RWMutex.
// Records are copied in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	// seq orders records created within the same second.
	seq int64

	users      map[string]*models.User
	emails     map[string]string
	groups     map[string]*models.Group
	expenses   map[string]*entry[models.Expense]
	payments   map[string]*entry[models.Payment]
	activities []*entry[models.Activity]
}

type entry[T any] struct {
	value T
	seq   int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		emails:   make(map[string]string),
		groups:   make(map[string]*models.Group),
		expenses: make(map[string]*entry[models.Expense]),
		payments: make(map[string]*entry[models.Payment]),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func now() int64 { return time.Now().Unix() }

// CreateUser stores a new user. A second user with the same email is storage.ErrDuplicate.
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrDuplicate)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = now()
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = user.CreatedAt
	}

	u := *user
	s.users[u.ID] = &u
	s.emails[u.Email] = u.ID
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	u := *s.users[id]
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	u := *user
	return &u, nil
}

// GetUsersByIDs returns the users among ids that exist, keyed by ID.
func (s *Store) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			u := *user
			users[id] = &u
		}
	}
	return users, nil
}

// CreateGroup stores a new group and its members.
func (s *Store) CreateGroup(_ context.Context, group *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = now()
	}
	if group.Currency == "" {
		group.Currency = models.DefaultCurrency
	}

	g := *group
	g.Members = mergeMembers(nil, group.Members)
	s.groups[g.ID] = &g
	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *Store) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return copyGroup(group), nil
}

// ListGroupMemberIDs returns the member IDs of a group.
func (s *Store) ListGroupMemberIDs(_ context.Context, groupID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return append([]string(nil), group.Members...), nil
}

// ListGroups retrieves all groups ordered by name.
func (s *Store) ListGroups(_ context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedGroups(func(*models.Group) bool { return true }), nil
}

// ListGroupsByMember retrieves the groups a user belongs to, ordered by name.
func (s *Store) ListGroupsByMember(_ context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedGroups(func(g *models.Group) bool { return g.HasMember(userID) }), nil
}

func (s *Store) sortedGroups(keep func(*models.Group) bool) []*models.Group {
	var groups []*models.Group
	for _, g := range s.groups {
		if keep(g) {
			groups = append(groups, copyGroup(g))
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].ID < groups[j].ID
	})
	return groups
}

// AddGroupMembers adds users to an existing group. Users already in the group are skipped.
func (s *Store) AddGroupMembers(_ context.Context, groupID string, userIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	group.Members = mergeMembers(group.Members, userIDs)
	return nil
}

// CreateExpense stores a new expense and its shares.
func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now()
	}
	for i := range expense.Shares {
		expense.Shares[i].ExpenseID = expense.ID
	}

	e := *expense
	e.Shares = sortedShares(expense.Shares)
	s.expenses[e.ID] = &entry[models.Expense]{value: e, seq: s.next()}
	return nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *Store) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	e := stored.value
	e.Shares = append([]models.ExpenseShare(nil), e.Shares...)
	return &e, nil
}

// ListExpensesByGroup retrieves all expenses for a group, newest first.
func (s *Store) ListExpensesByGroup(_ context.Context, groupID string) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*entry[models.Expense]
	for _, stored := range s.expenses {
		if stored.value.GroupID == groupID {
			matched = append(matched, stored)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].value.CreatedAt, matched[i].seq, matched[j].value.CreatedAt, matched[j].seq)
	})

	expenses := make([]*models.Expense, len(matched))
	for i, stored := range matched {
		e := stored.value
		e.Shares = nil
		expenses[i] = &e
	}
	return expenses, nil
}

// ListExpenseShares retrieves the share rows of an expense ordered by user.
func (s *Store) ListExpenseShares(_ context.Context, expenseID string) ([]models.ExpenseShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.expenses[expenseID]
	if !ok {
		return nil, nil
	}
	return append([]models.ExpenseShare(nil), stored.value.Shares...), nil
}

// DeleteExpense removes an expense and its shares.
func (s *Store) DeleteExpense(_ context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[expenseID]; !ok {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	delete(s.expenses, expenseID)
	return nil
}

// CreatePayment stores a new payment.
func (s *Store) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = now()
	}
	s.payments[payment.ID] = &entry[models.Payment]{value: *payment, seq: s.next()}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(_ context.Context, paymentID string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	p := stored.value
	return &p, nil
}

// ListPaymentsByGroup retrieves all payments for a group, newest first.
func (s *Store) ListPaymentsByGroup(_ context.Context, groupID string) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*entry[models.Payment]
	for _, stored := range s.payments {
		if stored.value.GroupID == groupID {
			matched = append(matched, stored)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].value.CreatedAt, matched[i].seq, matched[j].value.CreatedAt, matched[j].seq)
	})

	payments := make([]*models.Payment, len(matched))
	for i, stored := range matched {
		p := stored.value
		payments[i] = &p
	}
	return payments, nil
}

// DeletePayment removes a payment by ID.
func (s *Store) DeletePayment(_ context.Context, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[paymentID]; !ok {
		return fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	delete(s.payments, paymentID)
	return nil
}

// CreateActivity appends an entry to the activity feed.
func (s *Store) CreateActivity(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = now()
	}
	s.activities = append(s.activities, &entry[models.Activity]{value: *activity, seq: s.next()})
	return nil
}

// ListActivityByGroups retrieves the newest activity across the given groups.
func (s *Store) ListActivityByGroups(_ context.Context, groupIDs []string, limit int) ([]*models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = true
	}

	var matched []*entry[models.Activity]
	for _, stored := range s.activities {
		if wanted[stored.value.GroupID] {
			matched = append(matched, stored)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].value.CreatedAt, matched[i].seq, matched[j].value.CreatedAt, matched[j].seq)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	activities := make([]*models.Activity, len(matched))
	for i, stored := range matched {
		a := stored.value
		activities[i] = &a
	}
	return activities, nil
}

// newer reports whether record a sorts before record b in newest-first order.
func newer(aCreated, aSeq, bCreated, bSeq int64) bool {
	if aCreated != bCreated {
		return aCreated > bCreated
	}
	return aSeq > bSeq
}

func copyGroup(g *models.Group) *models.Group {
	c := *g
	c.Members = append([]string(nil), g.Members...)
	return &c
}

// mergeMembers returns the sorted union of existing and added IDs.
func mergeMembers(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	var members []string
	for _, id := range append(append([]string(nil), existing...), added...) {
		if !seen[id] {
			seen[id] = true
			members = append(members, id)
		}
	}
	sort.Strings(members)
	return members
}

func sortedShares(shares []models.ExpenseShare) []models.ExpenseShare {
	out := append([]models.ExpenseShare(nil), shares...)
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
