package calculator

import (
	"fmt"
	"math"
	"testing"
)

func TestSuggestSettlements(t *testing.T) {
	tests := []struct {
		name     string
		balances Balances
		want     []Transfer
	}{
		{
			name:     "one creditor two debtors",
			balances: Balances{"A": 50, "B": -30, "C": -20},
			want: []Transfer{
				{From: "B", To: "A", Amount: 30},
				{From: "C", To: "A", Amount: 20},
			},
		},
		{
			name:     "largest debtor pays largest creditor first",
			balances: Balances{"A": 10, "B": 40, "C": -35, "D": -15},
			want: []Transfer{
				{From: "C", To: "B", Amount: 35},
				{From: "D", To: "B", Amount: 5},
				{From: "D", To: "A", Amount: 10},
			},
		},
		{
			name:     "ties are matched in member order",
			balances: Balances{"B": 10, "A": 10, "D": -10, "C": -10},
			want: []Transfer{
				{From: "C", To: "A", Amount: 10},
				{From: "D", To: "B", Amount: 10},
			},
		},
		{
			name:     "settled group",
			balances: Balances{"A": 0, "B": 0},
			want:     nil,
		},
		{
			name:     "sub-cent noise is ignored",
			balances: Balances{"A": 0.005, "B": -0.005},
			want:     nil,
		},
		{
			name:     "only creditors",
			balances: Balances{"A": 5},
			want:     nil,
		},
		{
			name:     "empty",
			balances: Balances{},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestSettlements(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transfers %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("transfer %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSuggestSettlements_Properties(t *testing.T) {
	balances := Balances{}
	var positive float64
	debtors, creditors := 0, 0
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("m%02d", i)
		// Alternate creditors and debtors with uneven amounts.
		v := float64((i*37)%50) + 0.25*float64(i%3)
		if i%2 == 0 {
			balances[id] = v
			positive += v
			creditors++
		} else {
			balances[id] = -v
			debtors++
		}
	}
	// Make the balances net to zero.
	balances["m01"] -= balances.Total()
	positive = 0
	for _, v := range balances {
		if v > 0 {
			positive += v
		}
	}

	transfers := SuggestSettlements(balances)

	if max := debtors + creditors - 1; len(transfers) > max {
		t.Errorf("got %d transfers, want at most %d", len(transfers), max)
	}
	for _, tr := range transfers {
		if tr.Amount <= 0 {
			t.Errorf("transfer %+v has non-positive amount", tr)
		}
		if balances[tr.From] >= 0 {
			t.Errorf("transfer %+v: payer has balance %v", tr, balances[tr.From])
		}
		if balances[tr.To] <= 0 {
			t.Errorf("transfer %+v: payee has balance %v", tr, balances[tr.To])
		}
	}
	if total := TotalTransferred(transfers); math.Abs(total-positive) > 0.01*float64(len(transfers)) {
		t.Errorf("transfers total %v, want %v", total, positive)
	}
}

func TestSuggestSettlements_SettlesBalances(t *testing.T) {
	members := []string{"A", "B", "C", "D"}
	expenses := []ExpenseForBalance{
		{Amount: 100, PayerID: "A", Split: Equal{}},
		{Amount: 60, PayerID: "B", Split: Shares{Weights: []Part{
			{MemberID: "C", Value: 1},
			{MemberID: "D", Value: 2},
		}}},
	}

	balances := ComputeBalances(members, expenses, nil)
	transfers := SuggestSettlements(balances)

	payments := make([]PaymentForBalance, len(transfers))
	for i, tr := range transfers {
		payments[i] = PaymentForBalance{FromUserID: tr.From, ToUserID: tr.To, Amount: tr.Amount}
	}

	after := ComputeBalances(members, expenses, payments)
	for id, v := range after {
		if math.Abs(v) > 0.01 {
			t.Errorf("%s still has balance %v after settling", id, v)
		}
	}
	if again := SuggestSettlements(after); len(again) != 0 {
		t.Errorf("expected no further transfers, got %v", again)
	}
}
