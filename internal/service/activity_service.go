package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

const defaultActivityLimit = 50

var _ apiconnect.ActivityServiceHandler = (*ActivityService)(nil)

// ActivityService implements the Connect ActivityService.
type ActivityService struct {
	store  storage.Store
	ledger *ledger.Ledger
}

// NewActivityService creates an ActivityService.
func NewActivityService(store storage.Store, l *ledger.Ledger) *ActivityService {
	return &ActivityService{store: store, ledger: l}
}

// ListActivity returns the newest entries across the caller's groups.
func (s *ActivityService) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	slog.Info("ListActivity request received", "user_id", userID, "limit", req.Msg.Limit)

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("ListActivity failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	limit := req.Msg.Limit
	if limit == 0 {
		limit = defaultActivityLimit
	}
	activities, err := s.store.ListActivityByGroups(ctx, groupIDs(groups), limit)
	if err != nil {
		slog.Error("ListActivity failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	out := make([]*api.Activity, len(activities))
	for i, a := range activities {
		out[i] = toAPIActivity(a, names[a.GroupID])
	}

	return connect.NewResponse(&api.ListActivityResponse{Activities: out}), nil
}

// GetDashboard summarizes who owes the caller and whom the caller owes,
// across all of their groups.
func (s *ActivityService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetDashboard request received", "user_id", userID)

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("GetDashboard failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	dashboard, err := s.ledger.Dashboard(ctx, userID, groupIDs(groups))
	if err != nil {
		slog.Error("GetDashboard failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	friendIDs := make([]string, len(dashboard.Friends))
	for i, f := range dashboard.Friends {
		friendIDs[i] = f.FriendID
	}
	users, err := s.store.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		return nil, toConnectError(err)
	}

	friends := make([]*api.FriendBalance, len(dashboard.Friends))
	for i, f := range dashboard.Friends {
		friends[i] = &api.FriendBalance{
			FriendID: f.FriendID,
			Net:      f.Net,
			GroupIDs: f.GroupIDs,
		}
		if u, ok := users[f.FriendID]; ok {
			friends[i].DisplayName = u.DisplayName
		}
	}

	slog.Info("GetDashboard successful", "user_id", userID, "friends_count", len(friends))
	return connect.NewResponse(&api.GetDashboardResponse{
		Friends:   friends,
		OwedToYou: dashboard.OwedToYou,
		YouOwe:    dashboard.YouOwe,
		Net:       dashboard.Net(),
	}), nil
}

func groupIDs(groups []*models.Group) []string {
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}
