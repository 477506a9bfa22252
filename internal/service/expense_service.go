package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates an ExpenseService backed by store.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// AddExpense validates and stores an expense. The payer defaults to the caller.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"split_type", req.Msg.SplitType,
		"shares_count", len(req.Msg.Shares),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		slog.Warn("AddExpense failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = userID
	}

	splitType := models.SplitType(req.Msg.SplitType)
	var shares []models.ExpenseShare
	if splitType != models.SplitEqual {
		for _, sh := range req.Msg.Shares {
			shares = append(shares, models.ExpenseShare{UserID: sh.MemberID, Value: sh.Value})
		}
	}

	amount := calculator.RoundCents(req.Msg.Amount)
	split, err := calculator.NewSplit(splitType, shares)
	if err == nil {
		err = calculator.ValidateExpense(amount, payerID, split, group.Members)
	}
	if err != nil {
		slog.Warn("AddExpense rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: req.Msg.Description,
		Amount:      amount,
		PayerID:     payerID,
		SplitType:   splitType,
		Shares:      shares,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	recordActivity(ctx, s.store, &models.Activity{
		GroupID:     group.ID,
		ActorID:     userID,
		Kind:        models.ActivityExpenseAdded,
		Description: expense.Description,
		Amount:      expense.Amount,
		ReferenceID: expense.ID,
	})

	slog.Info("Expense added", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns a group's expenses with their shares, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		slog.Warn("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		if e.SplitType != models.SplitEqual {
			if e.Shares, err = s.store.ListExpenseShares(ctx, e.ID); err != nil {
				return nil, toConnectError(err)
			}
		}
		out[i] = toAPIExpense(e)
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense from a group the caller belongs to.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Warn("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	if _, err := groupForMember(ctx, s.store, expense.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	recordActivity(ctx, s.store, &models.Activity{
		GroupID:     expense.GroupID,
		ActorID:     userID,
		Kind:        models.ActivityExpenseDeleted,
		Description: fmt.Sprintf("deleted %s", expense.Description),
		Amount:      expense.Amount,
		ReferenceID: expense.ID,
	})

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}
