package calculator

import "sort"

// Balances maps a member ID to their signed net balance in a group.
// Positive = the group owes the member, negative = the member owes the group.
type Balances map[string]float64

// Total returns the sum of all balances. For a well-formed history it is zero
// within rounding.
func (b Balances) Total() float64 {
	var total float64
	for _, v := range b {
		total += v
	}
	return total
}

// MemberIDs returns the member IDs in ascending order.
func (b Balances) MemberIDs() []string {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ExpenseForBalance represents an expense with the minimal information needed
// for balance calculations.
type ExpenseForBalance struct {
	Amount  float64
	PayerID string
	// Split is nil when the stored split type is unknown; such expenses are
	// skipped.
	Split Split
}

// PaymentForBalance represents a payment with the minimal information needed
// for balance calculations.
type PaymentForBalance struct {
	FromUserID string // Who paid (debtor settling up)
	ToUserID   string // Who received (creditor being paid)
	Amount     float64
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID   string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Expenses fronted plus payments sent
	TotalOwed  float64 // Own share of expenses plus payments received
}

// ComputeBalances computes each member's net balance from a group's expenses
// and payments.
//
// Algorithm:
//   - every member starts at zero, even without activity
//   - for each expense: the payer is credited the full amount, each member is
//     debited their share under the expense's split
//   - for each payment: the payer's balance rises, the receiver's balance falls
//   - balances are rounded to cents once, after everything is accumulated
//
// IDs that are not in members (an unknown payer, say) get their own entry
// rather than being dropped. The result is a pure function of the inputs.
func ComputeBalances(members []string, expenses []ExpenseForBalance, payments []PaymentForBalance) Balances {
	acc := accumulate(members, expenses, payments)

	balances := make(Balances, len(acc))
	for id, mb := range acc {
		balances[id] = RoundCents(mb.TotalPaid - mb.TotalOwed)
	}
	return balances
}

// ComputeMemberBalances is ComputeBalances with the paid/owed breakdown kept,
// ordered by member ID.
func ComputeMemberBalances(members []string, expenses []ExpenseForBalance, payments []PaymentForBalance) []MemberBalance {
	acc := accumulate(members, expenses, payments)

	result := make([]MemberBalance, 0, len(acc))
	for _, mb := range acc {
		result = append(result, MemberBalance{
			MemberID:   mb.MemberID,
			NetBalance: RoundCents(mb.TotalPaid - mb.TotalOwed),
			TotalPaid:  RoundCents(mb.TotalPaid),
			TotalOwed:  RoundCents(mb.TotalOwed),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MemberID < result[j].MemberID })
	return result
}

func accumulate(members []string, expenses []ExpenseForBalance, payments []PaymentForBalance) map[string]*MemberBalance {
	balances := make(map[string]*MemberBalance, len(members))
	get := func(id string) *MemberBalance {
		mb, ok := balances[id]
		if !ok {
			mb = &MemberBalance{MemberID: id}
			balances[id] = mb
		}
		return mb
	}

	for _, m := range members {
		get(m)
	}

	for _, exp := range expenses {
		if exp.Split == nil {
			continue
		}
		// Payer fronted the full amount
		get(exp.PayerID).TotalPaid += exp.Amount
		for _, d := range Debits(exp.Split, exp.Amount, members) {
			get(d.MemberID).TotalOwed += d.Value
		}
	}

	for _, p := range payments {
		get(p.FromUserID).TotalPaid += p.Amount
		get(p.ToUserID).TotalOwed += p.Amount
	}

	return balances
}
