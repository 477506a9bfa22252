package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/mmynk/settleup/internal/locking"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/memory"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

// setupGroup stores a group of alice, bob and carol where alice paid $30 split equally.
func setupGroup(t *testing.T) (*memory.Store, string) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	group := &models.Group{Name: "Trip", Members: []string{"alice", "bob", "carol"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	expense := &models.Expense{
		GroupID:   group.ID,
		Amount:    30,
		PayerID:   "alice",
		SplitType: models.SplitEqual,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return store, group.ID
}

func TestBalances(t *testing.T) {
	store, groupID := setupGroup(t)
	ctx := context.Background()

	err := store.CreateExpense(ctx, &models.Expense{
		GroupID:   groupID,
		Amount:    90,
		PayerID:   "carol",
		SplitType: models.SplitShares,
		Shares: []models.ExpenseShare{
			{UserID: "alice", Value: 1},
			{UserID: "bob", Value: 2},
			{UserID: "carol", Value: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	balances, err := New(store, nil).Balances(ctx, groupID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}

	want := map[string]float64{"alice": 5, "bob": -40, "carol": 35}
	for id, w := range want {
		if !floatEquals(balances[id], w) {
			t.Errorf("%s: expected %.2f, got %.2f", id, w, balances[id])
		}
	}
}

func TestBalancesSkipsUnknownSplitType(t *testing.T) {
	store, groupID := setupGroup(t)
	ctx := context.Background()

	err := store.CreateExpense(ctx, &models.Expense{
		GroupID:   groupID,
		Amount:    500,
		PayerID:   "bob",
		SplitType: models.SplitType("itemized"),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	balances, err := New(store, nil).Balances(ctx, groupID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if !floatEquals(balances["bob"], -10) {
		t.Errorf("Expected bob at -10, got %.2f", balances["bob"])
	}
}

func TestBalancesUnknownGroup(t *testing.T) {
	_, err := New(memory.New(), nil).Balances(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSuggest(t *testing.T) {
	store, groupID := setupGroup(t)

	transfers, err := New(store, nil).Suggest(context.Background(), groupID)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(transfers) != 2 {
		t.Fatalf("Expected 2 transfers, got %d", len(transfers))
	}
	for i, from := range []string{"bob", "carol"} {
		if transfers[i].From != from || transfers[i].To != "alice" || !floatEquals(transfers[i].Amount, 10) {
			t.Errorf("transfer %d: unexpected %+v", i, transfers[i])
		}
	}
}

func TestMarkPaid(t *testing.T) {
	store, groupID := setupGroup(t)
	ctx := context.Background()
	l := New(store, nil)

	payment, err := l.MarkPaid(ctx, Settlement{
		GroupID:    groupID,
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     10,
		Note:       "venmo",
		CreatedBy:  "bob",
	})
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if payment.ID == "" || payment.CreatedAt == 0 {
		t.Error("Expected payment ID and CreatedAt to be set")
	}

	balances, err := l.Balances(ctx, groupID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	want := map[string]float64{"alice": 10, "bob": 0, "carol": -10}
	for id, w := range want {
		if !floatEquals(balances[id], w) {
			t.Errorf("%s: expected %.2f, got %.2f", id, w, balances[id])
		}
	}

	transfers, err := l.Suggest(ctx, groupID)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(transfers) != 1 || transfers[0].From != "carol" {
		t.Errorf("Expected only carol to owe, got %+v", transfers)
	}
}

func TestMarkPaidRejects(t *testing.T) {
	store, groupID := setupGroup(t)
	l := New(store, nil)

	tests := []struct {
		name    string
		s       Settlement
		wantErr error
	}{
		{
			name:    "zero amount",
			s:       Settlement{GroupID: groupID, FromUserID: "bob", ToUserID: "alice", Amount: 0},
			wantErr: ErrInvalidPayment,
		},
		{
			name:    "sub-cent amount",
			s:       Settlement{GroupID: groupID, FromUserID: "bob", ToUserID: "alice", Amount: 0.004},
			wantErr: ErrInvalidPayment,
		},
		{
			name:    "NaN amount",
			s:       Settlement{GroupID: groupID, FromUserID: "bob", ToUserID: "alice", Amount: math.NaN()},
			wantErr: ErrInvalidPayment,
		},
		{
			name:    "self payment",
			s:       Settlement{GroupID: groupID, FromUserID: "bob", ToUserID: "bob", Amount: 5},
			wantErr: ErrSelfPayment,
		},
		{
			name:    "payer outside group",
			s:       Settlement{GroupID: groupID, FromUserID: "mallory", ToUserID: "alice", Amount: 5},
			wantErr: ErrNotMember,
		},
		{
			name:    "payee outside group",
			s:       Settlement{GroupID: groupID, FromUserID: "bob", ToUserID: "mallory", Amount: 5},
			wantErr: ErrNotMember,
		},
		{
			name:    "more than owed",
			s:       Settlement{GroupID: groupID, FromUserID: "bob", ToUserID: "alice", Amount: 10.5},
			wantErr: ErrOverpayment,
		},
		{
			name:    "creditor paying",
			s:       Settlement{GroupID: groupID, FromUserID: "alice", ToUserID: "bob", Amount: 1},
			wantErr: ErrOverpayment,
		},
		{
			name:    "unknown group",
			s:       Settlement{GroupID: "missing", FromUserID: "bob", ToUserID: "alice", Amount: 1},
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.MarkPaid(context.Background(), tt.s)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	payments, err := store.ListPaymentsByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListPaymentsByGroup failed: %v", err)
	}
	if len(payments) != 0 {
		t.Errorf("Expected no stored payments, got %+v", payments)
	}
}

func TestMarkPaidAllowOverpay(t *testing.T) {
	store, groupID := setupGroup(t)

	_, err := New(store, nil).MarkPaid(context.Background(), Settlement{
		GroupID:      groupID,
		FromUserID:   "alice",
		ToUserID:     "bob",
		Amount:       5,
		AllowOverpay: true,
	})
	if err != nil {
		t.Fatalf("Expected overpayment to be allowed, got %v", err)
	}
}

func TestMarkPaidWithinTolerance(t *testing.T) {
	store, groupID := setupGroup(t)

	_, err := New(store, nil).MarkPaid(context.Background(), Settlement{
		GroupID:    groupID,
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     10.005,
	})
	if err != nil {
		t.Fatalf("Expected payment within a cent to pass, got %v", err)
	}
}

func TestMarkPaidConcurrent(t *testing.T) {
	store, groupID := setupGroup(t)
	l := New(store, locking.NewLocalLocker())

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.MarkPaid(context.Background(), Settlement{
				GroupID:    groupID,
				FromUserID: "bob",
				ToUserID:   "alice",
				Amount:     10,
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrOverpayment) {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("Expected exactly one payment to apply, got %d", succeeded)
	}

	payments, err := store.ListPaymentsByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListPaymentsByGroup failed: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("Expected 1 stored payment, got %d", len(payments))
	}
}

func TestDashboard(t *testing.T) {
	store, tripID := setupGroup(t)
	ctx := context.Background()

	flat := &models.Group{Name: "Flat", Members: []string{"alice", "bob"}}
	if err := store.CreateGroup(ctx, flat); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	err := store.CreateExpense(ctx, &models.Expense{
		GroupID:   flat.ID,
		Amount:    50,
		PayerID:   "bob",
		SplitType: models.SplitExact,
		Shares: []models.ExpenseShare{
			{UserID: "alice", Value: 40},
			{UserID: "bob", Value: 10},
		},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	d, err := New(store, nil).Dashboard(ctx, "alice", []string{tripID, flat.ID})
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	// Trip: bob and carol each owe alice 10. Flat: alice owes bob 40.
	if len(d.Friends) != 2 {
		t.Fatalf("Expected 2 friends, got %+v", d.Friends)
	}
	bob, carol := d.Friends[0], d.Friends[1]
	if bob.FriendID != "bob" || !floatEquals(bob.Net, -30) || len(bob.GroupIDs) != 2 {
		t.Errorf("Unexpected bob entry: %+v", bob)
	}
	if carol.FriendID != "carol" || !floatEquals(carol.Net, 10) {
		t.Errorf("Unexpected carol entry: %+v", carol)
	}
	if !floatEquals(d.OwedToYou, 10) || !floatEquals(d.YouOwe, 30) || !floatEquals(d.Net(), -20) {
		t.Errorf("Unexpected totals: owed to you %.2f, you owe %.2f", d.OwedToYou, d.YouOwe)
	}
}

func TestStatement(t *testing.T) {
	store, groupID := setupGroup(t)

	st, err := New(store, nil).Statement(context.Background(), groupID)
	if err != nil {
		t.Fatalf("Statement failed: %v", err)
	}

	if len(st.Balances) != 3 || st.Balances[0].MemberID != "alice" {
		t.Fatalf("Expected balances ordered by member, got %+v", st.Balances)
	}
	alice := st.Balances[0]
	if !floatEquals(alice.NetBalance, 20) || !floatEquals(alice.TotalPaid, 30) || !floatEquals(alice.TotalOwed, 10) {
		t.Errorf("Unexpected alice balance: %+v", alice)
	}
	if len(st.Transfers) != 2 {
		t.Errorf("Expected 2 transfers, got %+v", st.Transfers)
	}
}
