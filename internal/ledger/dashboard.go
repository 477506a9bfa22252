package ledger

import (
	"context"
	"sort"

	"github.com/mmynk/settleup/internal/calculator"
)

// FriendBalance is the net amount between a user and one other member,
// summed over every group they share.
// Positive = the friend owes the user.
type FriendBalance struct {
	FriendID string
	Net      float64
	GroupIDs []string
}

// Dashboard summarizes a user's position across groups.
type Dashboard struct {
	UserID    string
	Friends   []FriendBalance
	OwedToYou float64
	YouOwe    float64
}

// Net returns what the user is owed minus what they owe.
func (d *Dashboard) Net() float64 {
	return calculator.RoundCents(d.OwedToYou - d.YouOwe)
}

// Dashboard builds per-friend totals from each group's settlement plan.
// Only transfers involving userID count.
func (l *Ledger) Dashboard(ctx context.Context, userID string, groupIDs []string) (*Dashboard, error) {
	net := make(map[string]float64)
	groups := make(map[string][]string)

	for _, groupID := range groupIDs {
		transfers, err := l.Suggest(ctx, groupID)
		if err != nil {
			return nil, err
		}
		for _, t := range transfers {
			var friend string
			switch userID {
			case t.To:
				friend = t.From
				net[friend] += t.Amount
			case t.From:
				friend = t.To
				net[friend] -= t.Amount
			default:
				continue
			}
			if g := groups[friend]; len(g) == 0 || g[len(g)-1] != groupID {
				groups[friend] = append(g, groupID)
			}
		}
	}

	d := &Dashboard{UserID: userID}
	for friend, amount := range net {
		amount = calculator.RoundCents(amount)
		d.Friends = append(d.Friends, FriendBalance{
			FriendID: friend,
			Net:      amount,
			GroupIDs: groups[friend],
		})
		if amount > 0 {
			d.OwedToYou += amount
		} else {
			d.YouOwe -= amount
		}
	}
	d.OwedToYou = calculator.RoundCents(d.OwedToYou)
	d.YouOwe = calculator.RoundCents(d.YouOwe)

	sort.Slice(d.Friends, func(i, j int) bool { return d.Friends[i].FriendID < d.Friends[j].FriendID })
	return d, nil
}
