package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store   storage.Store
	ledger  *ledger.Ledger
	metrics *middleware.Metrics
}

// NewSettlementService creates a SettlementService. metrics may be nil.
func NewSettlementService(store storage.Store, l *ledger.Ledger, metrics *middleware.Metrics) *SettlementService {
	return &SettlementService{store: store, ledger: l, metrics: metrics}
}

// SuggestSettlements returns the transfers that would settle the group.
func (s *SettlementService) SuggestSettlements(ctx context.Context, req *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	slog.Info("SuggestSettlements request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		slog.Warn("SuggestSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	transfers, err := s.ledger.Suggest(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("SuggestSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("SuggestSettlements successful", "group_id", req.Msg.GroupID, "count", len(transfers))
	return connect.NewResponse(&api.SuggestSettlementsResponse{
		Settlements: toAPITransfers(transfers),
		TotalAmount: calculator.RoundCents(calculator.TotalTransferred(transfers)),
	}), nil
}

// MarkPaid records a payment between two members and returns the new balances.
func (s *SettlementService) MarkPaid(ctx context.Context, req *connect.Request[api.MarkPaidRequest]) (*connect.Response[api.MarkPaidResponse], error) {
	slog.Info("MarkPaid request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromUserID,
		"to", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
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
		slog.Warn("MarkPaid failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	payment, err := s.ledger.MarkPaid(ctx, ledger.Settlement{
		GroupID:      group.ID,
		FromUserID:   req.Msg.FromUserID,
		ToUserID:     req.Msg.ToUserID,
		Amount:       req.Msg.Amount,
		Note:         req.Msg.Note,
		CreatedBy:    userID,
		AllowOverpay: req.Msg.AllowOverpay,
	})
	if err != nil {
		slog.Warn("MarkPaid rejected", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ObservePayment(payment.Amount)

	recordActivity(ctx, s.store, &models.Activity{
		GroupID:     group.ID,
		ActorID:     userID,
		Kind:        models.ActivityPaymentRecorded,
		Description: fmt.Sprintf("%s paid %s", payment.FromUserID, payment.ToUserID),
		Amount:      payment.Amount,
		ReferenceID: payment.ID,
	})

	balances, err := s.ledger.MemberBalances(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("MarkPaid successful", "payment_id", payment.ID, "group_id", group.ID)
	return connect.NewResponse(&api.MarkPaidResponse{
		Payment:  toAPIPayment(payment),
		Balances: toAPIBalances(balances, users),
	}), nil
}

// ListPayments returns a group's payments, newest first.
func (s *SettlementService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	slog.Info("ListPayments request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		slog.Warn("ListPayments failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	payments, err := s.store.ListPaymentsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListPayments failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = toAPIPayment(p)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}

// DeletePayment removes a recorded payment, reopening the debt it settled.
func (s *SettlementService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	slog.Info("DeletePayment request received", "payment_id", req.Msg.PaymentID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	payment, err := s.store.GetPayment(ctx, req.Msg.PaymentID)
	if err != nil {
		slog.Warn("DeletePayment failed", "payment_id", req.Msg.PaymentID, "error", err)
		return nil, toConnectError(err)
	}
	if _, err := groupForMember(ctx, s.store, payment.GroupID, userID); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.DeletePayment(ctx, payment.ID); err != nil {
		slog.Error("DeletePayment failed", "payment_id", payment.ID, "error", err)
		return nil, toConnectError(err)
	}

	recordActivity(ctx, s.store, &models.Activity{
		GroupID:     payment.GroupID,
		ActorID:     userID,
		Kind:        models.ActivityPaymentDeleted,
		Description: fmt.Sprintf("deleted payment from %s to %s", payment.FromUserID, payment.ToUserID),
		Amount:      payment.Amount,
		ReferenceID: payment.ID,
	})

	slog.Info("Payment deleted", "payment_id", payment.ID)
	return connect.NewResponse(&api.DeletePaymentResponse{}), nil
}
