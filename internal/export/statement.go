// Package export renders a group's history as an XLSX statement.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage"
)

// Sheet names, in workbook order.
const (
	SheetExpenses = "Expenses"
	SheetPayments = "Payments"
	SheetBalances = "Balances"
	SheetSettleUp = "Settle Up"
)

const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrForbidden = errors.New("not a member of the group")

// Exporter builds group statements.
type Exporter struct {
	store  storage.Store
	ledger *ledger.Ledger
}

func New(store storage.Store, l *ledger.Ledger) *Exporter {
	return &Exporter{store: store, ledger: l}
}

// GroupStatement returns a workbook with one sheet each for the group's
// expenses, payments, member balances and suggested settlements.
// userID must belong to the group.
func (e *Exporter) GroupStatement(ctx context.Context, groupID, userID string) (*excelize.File, error) {
	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, groupID)
	}

	expenses, err := e.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payments, err := e.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	statement, err := e.ledger.Statement(ctx, groupID)
	if err != nil {
		return nil, err
	}

	ids := append([]string(nil), group.Members...)
	for _, exp := range expenses {
		ids = append(ids, exp.PayerID)
	}
	users, err := e.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	name := func(id string) string {
		if u, ok := users[id]; ok {
			return u.DisplayName
		}
		return id
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetExpenses); err != nil {
		return nil, err
	}
	for _, sheet := range []string{SheetPayments, SheetBalances, SheetSettleUp} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}

	currency := group.Currency
	rows := [][]any{{"Date", "Description", "Paid By", "Amount (" + currency + ")", "Split"}}
	for _, exp := range expenses {
		rows = append(rows, []any{date(exp.CreatedAt), exp.Description, name(exp.PayerID), exp.Amount, string(exp.SplitType)})
	}
	if err := writeRows(f, SheetExpenses, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"Date", "From", "To", "Amount (" + currency + ")", "Note"}}
	for _, p := range payments {
		rows = append(rows, []any{date(p.CreatedAt), name(p.FromUserID), name(p.ToUserID), p.Amount, p.Note})
	}
	if err := writeRows(f, SheetPayments, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"Member", "Paid", "Owed", "Net"}}
	for _, b := range statement.Balances {
		rows = append(rows, []any{name(b.MemberID), b.TotalPaid, b.TotalOwed, b.NetBalance})
	}
	if err := writeRows(f, SheetBalances, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"From", "To", "Amount (" + currency + ")"}}
	for _, t := range statement.Transfers {
		rows = append(rows, []any{name(t.From), name(t.To), t.Amount})
	}
	rows = append(rows, []any{"Total", "", calculator.RoundCents(calculator.TotalTransferred(statement.Transfers))})
	if err := writeRows(f, SheetSettleUp, rows); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func date(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}

// ServeHTTP writes the statement for the group named by the "file" path
// value ("<group id>.xlsx"). The caller's identity must already be on the
// request context (see middleware.Authenticate).
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	groupID, ok := strings.CutSuffix(r.PathValue("file"), ".xlsx")
	if !ok || groupID == "" {
		http.NotFound(w, r)
		return
	}
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	f, err := e.GroupStatement(r.Context(), groupID, userID)
	if err != nil {
		slog.Warn("Export failed", "group_id", groupID, "user_id", userID, "error", err)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			http.Error(w, "group not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			http.Error(w, "failed to build statement", http.StatusInternalServerError)
		}
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "group-"+groupID+".xlsx"))
	if err := f.Write(w); err != nil {
		slog.Error("Failed to write statement", "group_id", groupID, "error", err)
		return
	}
	slog.Info("Statement exported", "group_id", groupID, "user_id", userID)
}
