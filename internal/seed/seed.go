// Package seed loads a small demo dataset so a fresh server has something
// to browse.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// DemoEmail is the account the demo data is built around.
const DemoEmail = "demo@settleup.local"

var ErrAlreadySeeded = errors.New("demo data already present")

var friends = []string{
	"Sumit Sinha",
	"Prasad Yash Raj",
	"Mruthunjai",
	"Jagrit Pant",
	"Ritika Bhardwaj",
}

type demoGroup struct {
	name     string
	currency string
	members  []int // indexes into friends; the demo user is always added
	expenses []demoExpense
}

// payer -1 is the demo user.
type demoExpense struct {
	description string
	amount      float64
	payer       int
	age         time.Duration
}

var groups = []demoGroup{
	{
		name:     "Winter sem Trio",
		currency: "USD",
		members:  []int{0, 1},
		expenses: []demoExpense{
			{"PDC printout", 30, -1, 3 * time.Hour},
			{"Haldiram's Snacks", 26.32, 0, 4 * time.Hour},
			{"Train Tickets", 1254.84, 1, 5 * time.Hour},
		},
	},
	{
		name:     "Goa Trip",
		currency: "INR",
		members:  []int{2, 3},
		expenses: []demoExpense{
			{"Hotel Trip", 854, -1, 24 * time.Hour},
		},
	},
	{
		name:     "Experiential Trip Expenses",
		currency: "USD",
		members:  []int{0, 3},
	},
}

// Result lists what Demo created.
type Result struct {
	User   *models.User
	Groups []*models.Group
}

// Demo registers the demo account with password, creates its friends and
// groups, and backfills a few equally split expenses. It returns
// ErrAlreadySeeded if the demo account exists.
func Demo(ctx context.Context, store storage.Store, authn auth.Authenticator, password string) (*Result, error) {
	if _, err := store.GetUserByEmail(ctx, DemoEmail); err == nil {
		return nil, ErrAlreadySeeded
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	me, err := authn.Register(ctx, DemoEmail, "You", password)
	if err != nil {
		return nil, fmt.Errorf("failed to register demo user: %w", err)
	}

	friendIDs := make([]string, len(friends))
	for i, name := range friends {
		email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@settleup.local"
		user := models.NewUser(email, name, "")
		if err := store.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		friendIDs[i] = user.ID
	}

	result := &Result{User: me}
	now := time.Now()
	for _, dg := range groups {
		members := []string{me.ID}
		for _, idx := range dg.members {
			members = append(members, friendIDs[idx])
		}

		group := &models.Group{
			Name:     dg.name,
			Currency: dg.currency,
			Members:  members,
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			return nil, fmt.Errorf("failed to create group %s: %w", dg.name, err)
		}
		logActivity(ctx, store, &models.Activity{
			GroupID:     group.ID,
			ActorID:     me.ID,
			Kind:        models.ActivityGroupCreated,
			Description: "created " + group.Name,
			ReferenceID: group.ID,
		})

		for _, de := range dg.expenses {
			payer := me.ID
			if de.payer >= 0 {
				payer = friendIDs[de.payer]
			}
			split, _ := calculator.NewSplit(models.SplitEqual, nil)
			if err := calculator.ValidateExpense(de.amount, payer, split, members); err != nil {
				return nil, fmt.Errorf("demo expense %q: %w", de.description, err)
			}

			expense := &models.Expense{
				GroupID:     group.ID,
				Description: de.description,
				Amount:      de.amount,
				PayerID:     payer,
				SplitType:   models.SplitEqual,
				CreatedAt:   now.Add(-de.age).Unix(),
			}
			if err := store.CreateExpense(ctx, expense); err != nil {
				return nil, fmt.Errorf("failed to create expense %q: %w", de.description, err)
			}
			logActivity(ctx, store, &models.Activity{
				GroupID:     group.ID,
				ActorID:     payer,
				Kind:        models.ActivityExpenseAdded,
				Description: expense.Description,
				Amount:      expense.Amount,
				ReferenceID: expense.ID,
			})
		}

		result.Groups = append(result.Groups, group)
	}

	slog.Info("Demo data seeded",
		"user_id", me.ID,
		"email", DemoEmail,
		"groups_count", len(result.Groups),
	)
	return result, nil
}

func logActivity(ctx context.Context, store storage.Store, a *models.Activity) {
	if err := store.CreateActivity(ctx, a); err != nil {
		slog.Warn("Failed to record demo activity", "group_id", a.GroupID, "error", err)
	}
}
