package calculator

import (
	"math"
	"testing"
)

func TestComputeBalances(t *testing.T) {
	members := []string{"A", "B", "C"}

	tests := []struct {
		name     string
		expenses []ExpenseForBalance
		payments []PaymentForBalance
		want     Balances
	}{
		{
			name:     "no activity",
			expenses: nil,
			want:     Balances{"A": 0, "B": 0, "C": 0},
		},
		{
			name: "equal split",
			expenses: []ExpenseForBalance{
				{Amount: 30, PayerID: "A", Split: Equal{}},
			},
			want: Balances{"A": 20, "B": -10, "C": -10},
		},
		{
			name: "exact split",
			expenses: []ExpenseForBalance{
				{Amount: 100, PayerID: "A", Split: Exact{Parts: []Part{
					{MemberID: "A", Value: 20},
					{MemberID: "B", Value: 30},
					{MemberID: "C", Value: 50},
				}}},
			},
			want: Balances{"A": 80, "B": -30, "C": -50},
		},
		{
			name: "percentage split",
			expenses: []ExpenseForBalance{
				{Amount: 200, PayerID: "B", Split: Percentage{Parts: []Part{
					{MemberID: "A", Value: 25},
					{MemberID: "B", Value: 25},
					{MemberID: "C", Value: 50},
				}}},
			},
			want: Balances{"A": -50, "B": 150, "C": -100},
		},
		{
			name: "shares split",
			expenses: []ExpenseForBalance{
				{Amount: 90, PayerID: "C", Split: Shares{Weights: []Part{
					{MemberID: "A", Value: 1},
					{MemberID: "B", Value: 2},
					{MemberID: "C", Value: 3},
				}}},
			},
			want: Balances{"A": -15, "B": -30, "C": 45},
		},
		{
			name: "payment moves payer up and payee down",
			expenses: []ExpenseForBalance{
				{Amount: 30, PayerID: "A", Split: Equal{}},
			},
			payments: []PaymentForBalance{
				{FromUserID: "B", ToUserID: "A", Amount: 30},
			},
			want: Balances{"A": -10, "B": 20, "C": -10},
		},
		{
			name: "payment settles debt",
			expenses: []ExpenseForBalance{
				{Amount: 30, PayerID: "A", Split: Equal{}},
			},
			payments: []PaymentForBalance{
				{FromUserID: "B", ToUserID: "A", Amount: 10},
				{FromUserID: "C", ToUserID: "A", Amount: 10},
			},
			want: Balances{"A": 0, "B": 0, "C": 0},
		},
		{
			name: "all-zero share weights debit nobody",
			expenses: []ExpenseForBalance{
				{Amount: 90, PayerID: "C", Split: Shares{Weights: []Part{
					{MemberID: "A", Value: 0},
					{MemberID: "B", Value: 0},
					{MemberID: "C", Value: 0},
				}}},
			},
			want: Balances{"A": 0, "B": 0, "C": 90},
		},
		{
			name: "unknown split is skipped",
			expenses: []ExpenseForBalance{
				{Amount: 50, PayerID: "A", Split: nil},
			},
			want: Balances{"A": 0, "B": 0, "C": 0},
		},
		{
			name: "unknown payer gets its own entry",
			expenses: []ExpenseForBalance{
				{Amount: 30, PayerID: "Z", Split: Equal{}},
			},
			want: Balances{"A": -10, "B": -10, "C": -10, "Z": 30},
		},
		{
			name: "mixed history",
			expenses: []ExpenseForBalance{
				{Amount: 30, PayerID: "A", Split: Equal{}},
				{Amount: 90, PayerID: "C", Split: Shares{Weights: []Part{
					{MemberID: "A", Value: 1},
					{MemberID: "B", Value: 2},
					{MemberID: "C", Value: 3},
				}}},
			},
			payments: []PaymentForBalance{
				{FromUserID: "B", ToUserID: "C", Amount: 15},
			},
			want: Balances{"A": 5, "B": -25, "C": 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(members, tt.expenses, tt.payments)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d balances, want %d: %v", len(got), len(tt.want), got)
			}
			for id, want := range tt.want {
				v, ok := got[id]
				if !ok {
					t.Errorf("missing balance for %s", id)
					continue
				}
				if math.Abs(v-want) > 0.001 {
					t.Errorf("%s balance = %v, want %v", id, v, want)
				}
			}
		})
	}
}

func TestComputeBalances_ZeroSum(t *testing.T) {
	members := []string{"A", "B", "C", "D", "E", "F", "G"}
	expenses := []ExpenseForBalance{
		{Amount: 100, PayerID: "A", Split: Equal{}},
		{Amount: 10.01, PayerID: "B", Split: Equal{}},
		{Amount: 1254.84, PayerID: "C", Split: Equal{}},
		{Amount: 26.32, PayerID: "D", Split: Percentage{Parts: []Part{
			{MemberID: "A", Value: 33.33},
			{MemberID: "B", Value: 33.33},
			{MemberID: "G", Value: 33.34},
		}}},
		{Amount: 77.77, PayerID: "E", Split: Shares{Weights: []Part{
			{MemberID: "C", Value: 1},
			{MemberID: "D", Value: 1},
			{MemberID: "E", Value: 1},
		}}},
		{Amount: 854, PayerID: "F", Split: Exact{Parts: []Part{
			{MemberID: "A", Value: 400},
			{MemberID: "F", Value: 454},
		}}},
	}
	payments := []PaymentForBalance{
		{FromUserID: "G", ToUserID: "C", Amount: 45.5},
		{FromUserID: "A", ToUserID: "F", Amount: 100},
	}

	balances := ComputeBalances(members, expenses, payments)
	if len(balances) != len(members) {
		t.Fatalf("got %d balances, want %d", len(balances), len(members))
	}

	tolerance := 0.01 * float64(len(members))
	if total := balances.Total(); math.Abs(total) > tolerance {
		t.Errorf("balances sum to %v, want 0 within %v", total, tolerance)
	}
}

func TestComputeBalances_RoundsAfterAccumulation(t *testing.T) {
	members := []string{"A", "B", "C"}
	// Three thirds of 10 accumulate to 3.333... each; rounding per expense
	// would leave B at -6.66 instead of -6.67.
	expenses := []ExpenseForBalance{
		{Amount: 10, PayerID: "A", Split: Equal{}},
		{Amount: 10, PayerID: "A", Split: Equal{}},
	}

	balances := ComputeBalances(members, expenses, nil)
	if balances["B"] != -6.67 {
		t.Errorf("B balance = %v, want -6.67", balances["B"])
	}
	if balances["A"] != 13.33 {
		t.Errorf("A balance = %v, want 13.33", balances["A"])
	}
}

func TestComputeBalances_HalfCentRoundsUp(t *testing.T) {
	// 0.05 split two ways leaves +0.025 and -0.025; both halves round up.
	expenses := []ExpenseForBalance{{Amount: 0.05, PayerID: "A", Split: Equal{}}}

	balances := ComputeBalances([]string{"A", "B"}, expenses, nil)
	if balances["A"] != 0.03 {
		t.Errorf("A balance = %v, want 0.03", balances["A"])
	}
	if balances["B"] != -0.02 {
		t.Errorf("B balance = %v, want -0.02", balances["B"])
	}
}

func TestComputeBalances_Idempotent(t *testing.T) {
	members := []string{"A", "B", "C"}
	split := Exact{Parts: []Part{{MemberID: "B", Value: 12.5}, {MemberID: "C", Value: 7.5}}}
	expenses := []ExpenseForBalance{{Amount: 20, PayerID: "A", Split: split}}
	payments := []PaymentForBalance{{FromUserID: "C", ToUserID: "A", Amount: 2.5}}

	first := ComputeBalances(members, expenses, payments)
	second := ComputeBalances(members, expenses, payments)

	for id, v := range first {
		if second[id] != v {
			t.Errorf("%s: first = %v, second = %v", id, v, second[id])
		}
	}
	if len(split.Parts) != 2 || split.Parts[0].Value != 12.5 {
		t.Errorf("input split was modified: %+v", split)
	}
}

func TestComputeBalances_NoMembers(t *testing.T) {
	expenses := []ExpenseForBalance{{Amount: 40, PayerID: "A", Split: Equal{}}}

	balances := ComputeBalances(nil, expenses, nil)
	if balances["A"] != 40 {
		t.Errorf("A balance = %v, want 40", balances["A"])
	}
}

func TestComputeMemberBalances(t *testing.T) {
	members := []string{"C", "A", "B"}
	expenses := []ExpenseForBalance{{Amount: 30, PayerID: "A", Split: Equal{}}}
	payments := []PaymentForBalance{{FromUserID: "B", ToUserID: "A", Amount: 10}}

	got := ComputeMemberBalances(members, expenses, payments)
	if len(got) != 3 {
		t.Fatalf("got %d member balances, want 3", len(got))
	}

	want := []MemberBalance{
		{MemberID: "A", NetBalance: 10, TotalPaid: 30, TotalOwed: 20},
		{MemberID: "B", NetBalance: 0, TotalPaid: 10, TotalOwed: 10},
		{MemberID: "C", NetBalance: -10, TotalPaid: 0, TotalOwed: 10},
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("member %d = %+v, want %+v", i, got[i], w)
		}
	}
}
