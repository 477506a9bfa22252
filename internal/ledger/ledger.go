// Package ledger ties stored group history to the calculator: it loads a
// group's members, expenses and payments through storage.Source, derives
// balances and settlement plans, and records payments.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/locking"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	ErrNotMember      = errors.New("user is not a member of the group")
	ErrSelfPayment    = errors.New("payer and payee must be different members")
	ErrOverpayment    = errors.New("payment exceeds what the payer owes")
	ErrInvalidPayment = errors.New("payment amount must be greater than zero")
)

// overpayTolerance absorbs cent rounding when a debtor pays off exactly what
// the plan suggested.
const overpayTolerance = 0.01

// Ledger computes balances for groups stored behind a storage.Source.
type Ledger struct {
	source storage.Source
	locker locking.Locker
}

// New creates a Ledger. A nil locker falls back to an in-process lock.
func New(source storage.Source, locker locking.Locker) *Ledger {
	if locker == nil {
		locker = locking.NewLocalLocker()
	}
	return &Ledger{source: source, locker: locker}
}

// Snapshot is a group's history in the shape the calculator consumes.
type Snapshot struct {
	Members  []string
	Expenses []calculator.ExpenseForBalance
	Payments []calculator.PaymentForBalance
}

// Load reads a group's history. Expenses with an unrecognized split type are
// kept with a nil split, which the calculator skips.
func (l *Ledger) Load(ctx context.Context, groupID string) (*Snapshot, error) {
	members, err := l.source.ListGroupMemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := l.source.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Members:  members,
		Expenses: make([]calculator.ExpenseForBalance, 0, len(expenses)),
	}
	for _, exp := range expenses {
		var shares []models.ExpenseShare
		if exp.SplitType != models.SplitEqual {
			shares, err = l.source.ListExpenseShares(ctx, exp.ID)
			if err != nil {
				return nil, err
			}
		}

		split, err := calculator.NewSplit(exp.SplitType, shares)
		if err != nil {
			slog.Warn("Skipping expense with unknown split type",
				"group_id", groupID,
				"expense_id", exp.ID,
				"split_type", exp.SplitType,
			)
		}
		snap.Expenses = append(snap.Expenses, calculator.ExpenseForBalance{
			Amount:  exp.Amount,
			PayerID: exp.PayerID,
			Split:   split,
		})
	}

	payments, err := l.source.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	snap.Payments = make([]calculator.PaymentForBalance, 0, len(payments))
	for _, p := range payments {
		snap.Payments = append(snap.Payments, calculator.PaymentForBalance{
			FromUserID: p.FromUserID,
			ToUserID:   p.ToUserID,
			Amount:     p.Amount,
		})
	}

	return snap, nil
}

// Balances returns every member's net balance in the group.
func (l *Ledger) Balances(ctx context.Context, groupID string) (calculator.Balances, error) {
	snap, err := l.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeBalances(snap.Members, snap.Expenses, snap.Payments), nil
}

// MemberBalances returns balances with the paid/owed breakdown, ordered by member ID.
func (l *Ledger) MemberBalances(ctx context.Context, groupID string) ([]calculator.MemberBalance, error) {
	snap, err := l.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeMemberBalances(snap.Members, snap.Expenses, snap.Payments), nil
}

// Suggest returns the settlement plan for the group.
func (l *Ledger) Suggest(ctx context.Context, groupID string) ([]calculator.Transfer, error) {
	balances, err := l.Balances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SuggestSettlements(balances), nil
}

// Statement is a group's balances and settlement plan computed from one
// read of its history.
type Statement struct {
	Balances  []calculator.MemberBalance
	Transfers []calculator.Transfer
}

// Statement computes balances and the settlement plan together.
func (l *Ledger) Statement(ctx context.Context, groupID string) (*Statement, error) {
	snap, err := l.Load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := calculator.ComputeMemberBalances(snap.Members, snap.Expenses, snap.Payments)
	net := make(calculator.Balances, len(balances))
	for _, b := range balances {
		net[b.MemberID] = b.NetBalance
	}
	return &Statement{
		Balances:  balances,
		Transfers: calculator.SuggestSettlements(net),
	}, nil
}

// Settlement describes a payment to record.
type Settlement struct {
	GroupID    string
	FromUserID string
	ToUserID   string
	Amount     float64
	Note       string
	CreatedBy  string

	// AllowOverpay skips the check against the payer's outstanding debt.
	AllowOverpay bool
}

// MarkPaid records a payment from one member to another. Calls for the same
// group are serialized, and unless AllowOverpay is set the payment may not
// exceed what the payer currently owes.
func (l *Ledger) MarkPaid(ctx context.Context, s Settlement) (*models.Payment, error) {
	if math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
		return nil, ErrInvalidPayment
	}
	// Checked as stored: a sub-cent amount would be recorded as zero.
	amount := calculator.RoundCents(s.Amount)
	if amount <= 0 {
		return nil, ErrInvalidPayment
	}
	if s.FromUserID == s.ToUserID {
		return nil, ErrSelfPayment
	}

	unlock, err := l.locker.Lock(ctx, "group:"+s.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock group %s: %w", s.GroupID, err)
	}
	defer unlock()

	snap, err := l.Load(ctx, s.GroupID)
	if err != nil {
		return nil, err
	}

	if !contains(snap.Members, s.FromUserID) {
		return nil, fmt.Errorf("%w: %s", ErrNotMember, s.FromUserID)
	}
	if !contains(snap.Members, s.ToUserID) {
		return nil, fmt.Errorf("%w: %s", ErrNotMember, s.ToUserID)
	}

	if !s.AllowOverpay {
		balances := calculator.ComputeBalances(snap.Members, snap.Expenses, snap.Payments)
		owed := -balances[s.FromUserID]
		if amount > owed+overpayTolerance {
			return nil, fmt.Errorf("%w: owes %.2f, paying %.2f", ErrOverpayment, math.Max(owed, 0), amount)
		}
	}

	payment := &models.Payment{
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     amount,
		CreatedAt:  time.Now().Unix(),
		CreatedBy:  s.CreatedBy,
		Note:       s.Note,
	}
	if err := l.source.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	slog.Info("Payment recorded",
		"group_id", payment.GroupID,
		"payment_id", payment.ID,
		"from", payment.FromUserID,
		"to", payment.ToUserID,
		"amount", payment.Amount,
	)
	return payment, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
