package service

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// toAPIGroup converts g. users fills in member details when available.
func toAPIGroup(g *models.Group, users map[string]*models.User) *api.Group {
	group := &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		MemberIDs: g.Members,
		CreatedAt: g.CreatedAt,
	}
	for _, id := range g.Members {
		if u, ok := users[id]; ok {
			group.Members = append(group.Members, toAPIUser(u))
		}
	}
	return group
}

func toAPIExpense(e *models.Expense) *api.Expense {
	expense := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PayerID:     e.PayerID,
		SplitType:   string(e.SplitType),
		CreatedAt:   e.CreatedAt,
	}
	for _, s := range e.Shares {
		expense.Shares = append(expense.Shares, &api.Share{MemberID: s.UserID, Value: s.Value})
	}
	return expense
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:         p.ID,
		GroupID:    p.GroupID,
		FromUserID: p.FromUserID,
		ToUserID:   p.ToUserID,
		Amount:     p.Amount,
		Note:       p.Note,
		CreatedBy:  p.CreatedBy,
		CreatedAt:  p.CreatedAt,
	}
}

func toAPIBalances(balances []calculator.MemberBalance, users map[string]*models.User) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			MemberID:   b.MemberID,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		}
		if u, ok := users[b.MemberID]; ok {
			out[i].DisplayName = u.DisplayName
		}
	}
	return out
}

func toAPITransfers(transfers []calculator.Transfer) []*api.Transfer {
	out := make([]*api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = &api.Transfer{FromUserID: t.From, ToUserID: t.To, Amount: t.Amount}
	}
	return out
}

func toAPIActivity(a *models.Activity, groupName string) *api.Activity {
	return &api.Activity{
		ID:          a.ID,
		GroupID:     a.GroupID,
		GroupName:   groupName,
		ActorID:     a.ActorID,
		Kind:        string(a.Kind),
		Description: a.Description,
		Amount:      a.Amount,
		ReferenceID: a.ReferenceID,
		CreatedAt:   a.CreatedAt,
	}
}
