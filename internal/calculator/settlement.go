package calculator

import "sort"

// Transfer is a suggested payment that moves money from a debtor to a creditor.
type Transfer struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

type position struct {
	memberID string
	amount   float64
}

// SuggestSettlements turns net balances into a list of transfers that settles
// the group.
//
// Greedy matching: the largest remaining debt is paid to the largest remaining
// credit until one side runs out. The plan is not guaranteed to have the fewest
// possible transfers, but it never needs more than debtors+creditors-1.
// Balances within a cent of zero are treated as settled. Members with equal
// balances are matched in member ID order.
func SuggestSettlements(balances Balances) []Transfer {
	var debtors, creditors []position
	for _, id := range balances.MemberIDs() {
		v := balances[id]
		if v < -settleEpsilon {
			debtors = append(debtors, position{memberID: id, amount: -v})
		} else if v > settleEpsilon {
			creditors = append(creditors, position{memberID: id, amount: v})
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })

	transfers := make([]Transfer, 0, len(debtors)+len(creditors))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		pay := debtors[i].amount
		if creditors[j].amount < pay {
			pay = creditors[j].amount
		}

		transfers = append(transfers, Transfer{
			From:   debtors[i].memberID,
			To:     creditors[j].memberID,
			Amount: RoundCents(pay),
		})

		debtors[i].amount -= pay
		creditors[j].amount -= pay

		if debtors[i].amount <= settleEpsilon {
			i++
		}
		if creditors[j].amount <= settleEpsilon {
			j++
		}
	}

	return transfers
}

// TotalTransferred returns the sum of all transfer amounts.
func TotalTransferred(transfers []Transfer) float64 {
	var total float64
	for _, t := range transfers {
		total += t.Amount
	}
	return total
}
