package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestValidateExpense(t *testing.T) {
	members := []string{"A", "B", "C"}

	tests := []struct {
		name    string
		amount  float64
		payer   string
		split   Split
		members []string
		wantErr error
	}{
		{
			name:   "equal split",
			amount: 30, payer: "A", split: Equal{},
		},
		{
			name:   "exact split sums to total",
			amount: 100, payer: "A",
			split: Exact{Parts: []Part{{"A", 20}, {"B", 30}, {"C", 50}}},
		},
		{
			name:   "exact split within a cent",
			amount: 10, payer: "A",
			split: Exact{Parts: []Part{{"A", 3.33}, {"B", 3.33}, {"C", 3.33}}},
		},
		{
			name:   "exact split off by more than a cent",
			amount: 10, payer: "A",
			split:   Exact{Parts: []Part{{"A", 3}, {"B", 3}, {"C", 3}}},
			wantErr: ErrExactSumMismatch,
		},
		{
			name:   "exact parts match only the unrounded amount",
			amount: 10.016, payer: "A",
			split:   Exact{Parts: []Part{{"A", 5}, {"B", 5.006}}},
			wantErr: ErrExactSumMismatch,
		},
		{
			name:   "sub-cent amount rounds to zero",
			amount: 0.004, payer: "A", split: Equal{},
			wantErr: ErrInvalidAmount,
		},
		{
			name:   "half cent rounds up to a cent",
			amount: 0.005, payer: "A", split: Equal{},
		},
		{
			name:   "percentages sum to 100",
			amount: 200, payer: "B",
			split: Percentage{Parts: []Part{{"A", 25}, {"B", 25}, {"C", 50}}},
		},
		{
			name:   "percentages short of 100",
			amount: 200, payer: "B",
			split:   Percentage{Parts: []Part{{"A", 25}, {"B", 25}, {"C", 40}}},
			wantErr: ErrPercentSumMismatch,
		},
		{
			name:   "positive shares",
			amount: 90, payer: "C",
			split: Shares{Weights: []Part{{"A", 1}, {"B", 2}, {"C", 0}}},
		},
		{
			name:   "zero shares",
			amount: 90, payer: "C",
			split:   Shares{Weights: []Part{{"A", 0}, {"B", 0}}},
			wantErr: ErrNonPositiveShares,
		},
		{
			name:   "negative share",
			amount: 90, payer: "C",
			split:   Shares{Weights: []Part{{"A", -1}, {"B", 2}}},
			wantErr: ErrInvalidShareValue,
		},
		{
			name:   "NaN share",
			amount: 90, payer: "C",
			split:   Exact{Parts: []Part{{"A", math.NaN()}}},
			wantErr: ErrInvalidShareValue,
		},
		{
			name:   "zero amount",
			amount: 0, payer: "A", split: Equal{},
			wantErr: ErrInvalidAmount,
		},
		{
			name:   "negative amount",
			amount: -5, payer: "A", split: Equal{},
			wantErr: ErrInvalidAmount,
		},
		{
			name:   "nil split",
			amount: 5, payer: "A", split: nil,
			wantErr: ErrUnknownSplitType,
		},
		{
			name:   "payer outside group",
			amount: 5, payer: "Z", split: Equal{},
			wantErr: ErrPayerNotMember,
		},
		{
			name:   "share member outside group",
			amount: 10, payer: "A",
			split:   Exact{Parts: []Part{{"A", 5}, {"Z", 5}}},
			wantErr: ErrShareNotMember,
		},
		{
			name:   "duplicate share member",
			amount: 10, payer: "A",
			split:   Exact{Parts: []Part{{"A", 5}, {"A", 5}}},
			wantErr: ErrDuplicateShare,
		},
		{
			name:   "non-equal split without shares",
			amount: 10, payer: "A",
			split:   Percentage{},
			wantErr: ErrMissingShares,
		},
		{
			name:   "empty group",
			amount: 10, payer: "A", split: Equal{},
			members: []string{},
			wantErr: ErrNoMembers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := members
			if tt.members != nil {
				m = tt.members
			}
			err := ValidateExpense(tt.amount, tt.payer, tt.split, m)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateExpense() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
