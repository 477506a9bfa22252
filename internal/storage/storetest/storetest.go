// Package storetest holds the behavior every storage.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// Run exercises store against the storage.Store contract. newStore must
// return an empty store; Run closes it when the test ends.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		store := open(t, newStore)

		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		dup := models.NewUser("alice@example.com", "Other Alice", "hash")
		err := store.CreateUser(ctx, dup)
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate for taken email, got %v", err)
		}

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
			t.Errorf("Unexpected user: %+v", byEmail)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Email != "alice@example.com" {
			t.Errorf("Expected email alice@example.com, got %s", byID.Email)
		}

		if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "missing"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 || users[user.ID] == nil {
			t.Errorf("Expected only %s in result, got %v", user.ID, users)
		}
	})

	t.Run("groups", func(t *testing.T) {
		store := open(t, newStore)

		trip := &models.Group{Name: "Trip", Members: []string{"u2", "u1"}}
		if err := store.CreateGroup(ctx, trip); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if trip.ID == "" || trip.CreatedAt == 0 {
			t.Error("Expected ID and CreatedAt to be generated")
		}
		if trip.Currency != models.DefaultCurrency {
			t.Errorf("Expected default currency, got %q", trip.Currency)
		}

		flat := &models.Group{Name: "Flat", Currency: "EUR", Members: []string{"u1"}}
		if err := store.CreateGroup(ctx, flat); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		got, err := store.GetGroup(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		assertIDs(t, got.Members, "u1", "u2")

		if err := store.AddGroupMembers(ctx, trip.ID, []string{"u3", "u1"}); err != nil {
			t.Fatalf("AddGroupMembers failed: %v", err)
		}
		members, err := store.ListGroupMemberIDs(ctx, trip.ID)
		if err != nil {
			t.Fatalf("ListGroupMemberIDs failed: %v", err)
		}
		assertIDs(t, members, "u1", "u2", "u3")

		if _, err := store.GetGroup(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound from GetGroup, got %v", err)
		}
		if _, err := store.ListGroupMemberIDs(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound from ListGroupMemberIDs, got %v", err)
		}
		if err := store.AddGroupMembers(ctx, "missing", []string{"u1"}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound from AddGroupMembers, got %v", err)
		}

		all, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(all) != 2 || all[0].Name != "Flat" || all[1].Name != "Trip" {
			t.Errorf("Expected groups ordered by name, got %v", groupNames(all))
		}

		mine, err := store.ListGroupsByMember(ctx, "u3")
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(mine) != 1 || mine[0].ID != trip.ID {
			t.Errorf("Expected only Trip for u3, got %v", groupNames(mine))
		}
		if len(mine) == 1 {
			assertIDs(t, mine[0].Members, "u1", "u2", "u3")
		}
	})

	t.Run("expenses", func(t *testing.T) {
		store := open(t, newStore)
		group := createGroup(t, store, "u1", "u2")

		older := &models.Expense{
			GroupID:     group.ID,
			Description: "Dinner",
			Amount:      100,
			PayerID:     "u1",
			SplitType:   models.SplitEqual,
			CreatedAt:   time.Now().Add(-time.Hour).Unix(),
		}
		if err := store.CreateExpense(ctx, older); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		newer := &models.Expense{
			GroupID:     group.ID,
			Description: "Taxi",
			Amount:      30,
			PayerID:     "u2",
			SplitType:   models.SplitExact,
			Shares: []models.ExpenseShare{
				{UserID: "u1", Value: 20},
				{UserID: "u2", Value: 10},
			},
		}
		if err := store.CreateExpense(ctx, newer); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if newer.ID == "" || newer.CreatedAt == 0 {
			t.Error("Expected ID and CreatedAt to be generated")
		}

		got, err := store.GetExpense(ctx, newer.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.SplitType != models.SplitExact || got.Amount != 30 || got.PayerID != "u2" {
			t.Errorf("Unexpected expense: %+v", got)
		}
		if len(got.Shares) != 2 || got.Shares[0].UserID != "u1" || got.Shares[0].Value != 20 {
			t.Errorf("Unexpected shares: %+v", got.Shares)
		}
		for _, share := range got.Shares {
			if share.ExpenseID != newer.ID {
				t.Errorf("Expected share to reference %s, got %s", newer.ID, share.ExpenseID)
			}
		}

		list, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
			t.Fatalf("Expected newest expense first, got %d expenses", len(list))
		}

		if err := store.DeleteExpense(ctx, newer.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, newer.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		shares, err := store.ListExpenseShares(ctx, newer.ID)
		if err != nil {
			t.Fatalf("ListExpenseShares failed: %v", err)
		}
		if len(shares) != 0 {
			t.Errorf("Expected shares to be removed with expense, got %d", len(shares))
		}
		if err := store.DeleteExpense(ctx, newer.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("payments", func(t *testing.T) {
		store := open(t, newStore)
		group := createGroup(t, store, "u1", "u2")

		first := &models.Payment{
			GroupID:    group.ID,
			FromUserID: "u2",
			ToUserID:   "u1",
			Amount:     25,
			CreatedBy:  "u2",
			CreatedAt:  time.Now().Add(-time.Minute).Unix(),
		}
		if err := store.CreatePayment(ctx, first); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		second := &models.Payment{
			GroupID:    group.ID,
			FromUserID: "u2",
			ToUserID:   "u1",
			Amount:     10,
			CreatedBy:  "u1",
			Note:       "cash",
		}
		if err := store.CreatePayment(ctx, second); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}
		if second.ID == "" || second.CreatedAt == 0 {
			t.Error("Expected ID and CreatedAt to be generated")
		}

		got, err := store.GetPayment(ctx, second.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if got.Note != "cash" || got.Amount != 10 || got.CreatedBy != "u1" {
			t.Errorf("Unexpected payment: %+v", got)
		}

		list, err := store.ListPaymentsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListPaymentsByGroup failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != second.ID {
			t.Fatalf("Expected newest payment first, got %d payments", len(list))
		}
		if list[1].Note != "" {
			t.Errorf("Expected empty note, got %q", list[1].Note)
		}

		if err := store.DeletePayment(ctx, first.ID); err != nil {
			t.Fatalf("DeletePayment failed: %v", err)
		}
		if _, err := store.GetPayment(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeletePayment(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("activity", func(t *testing.T) {
		store := open(t, newStore)
		a := createGroup(t, store, "u1")
		b := createGroup(t, store, "u1")
		c := createGroup(t, store, "u2")

		now := time.Now().Unix()
		entries := []*models.Activity{
			{GroupID: a.ID, ActorID: "u1", Kind: models.ActivityGroupCreated, Description: "created", CreatedAt: now - 30},
			{GroupID: b.ID, ActorID: "u1", Kind: models.ActivityExpenseAdded, Description: "lunch", Amount: 12, CreatedAt: now - 20},
			{GroupID: c.ID, ActorID: "u2", Kind: models.ActivityExpenseAdded, Description: "other", CreatedAt: now - 10},
			{GroupID: a.ID, ActorID: "u1", Kind: models.ActivityPaymentRecorded, Description: "paid", Amount: 5, ReferenceID: "p1", CreatedAt: now},
		}
		for _, e := range entries {
			if err := store.CreateActivity(ctx, e); err != nil {
				t.Fatalf("CreateActivity failed: %v", err)
			}
			if e.ID == "" {
				t.Error("Expected activity ID to be generated")
			}
		}

		got, err := store.ListActivityByGroups(ctx, []string{a.ID, b.ID}, 0)
		if err != nil {
			t.Fatalf("ListActivityByGroups failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Expected 3 entries, got %d", len(got))
		}
		if got[0].Kind != models.ActivityPaymentRecorded || got[0].ReferenceID != "p1" || got[0].Amount != 5 {
			t.Errorf("Expected newest entry first, got %+v", got[0])
		}
		if got[2].Kind != models.ActivityGroupCreated {
			t.Errorf("Expected oldest entry last, got %+v", got[2])
		}

		limited, err := store.ListActivityByGroups(ctx, []string{a.ID, b.ID}, 2)
		if err != nil {
			t.Fatalf("ListActivityByGroups failed: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("Expected limit of 2 entries, got %d", len(limited))
		}

		none, err := store.ListActivityByGroups(ctx, nil, 10)
		if err != nil {
			t.Fatalf("ListActivityByGroups failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no entries for no groups, got %d", len(none))
		}
	})
}

func open(t *testing.T, newStore func(t *testing.T) storage.Store) storage.Store {
	t.Helper()
	store := newStore(t)
	t.Cleanup(func() { store.Close() })
	return store
}

func createGroup(t *testing.T, store storage.Store, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "Group", Members: members}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func assertIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("Expected %v, got %v", want, got)
		return
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			return
		}
	}
}

func groupNames(groups []*models.Group) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}
