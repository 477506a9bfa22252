package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store  storage.Store
	ledger *ledger.Ledger
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, l *ledger.Ledger) *GroupService {
	return &GroupService{store: store, ledger: l}
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	members := append([]string{userID}, req.Msg.MemberIDs...)
	users, err := s.requireUsers(ctx, members)
	if err != nil {
		slog.Warn("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	group := &models.Group{
		Name:     req.Msg.Name,
		Currency: req.Msg.Currency,
		Members:  members,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	recordActivity(ctx, s.store, &models.Activity{
		GroupID:     group.ID,
		ActorID:     userID,
		Kind:        models.ActivityGroupCreated,
		Description: fmt.Sprintf("created %s", group.Name),
		ReferenceID: group.ID,
	})

	// Re-read for the stored member order.
	stored, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(stored, users)}), nil
}

// requireUsers loads the users behind ids and fails if any is missing.
func (s *GroupService) requireUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownUser, id)
		}
	}
	return users, nil
}

// GetGroup retrieves a group the caller belongs to, with member profiles.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		slog.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group, users)}), nil
}

// ListGroups returns the caller's groups ordered by name.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group, nil)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddGroupMember adds a registered user, found by ID or email, to a group
// the caller belongs to.
func (s *GroupService) AddGroupMember(ctx context.Context, req *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.AddGroupMemberResponse], error) {
	slog.Info("AddGroupMember request received", "group_id", req.Msg.GroupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := groupForMember(ctx, s.store, req.Msg.GroupID, userID); err != nil {
		slog.Warn("AddGroupMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	member, err := s.resolveUser(ctx, req.Msg.UserID, req.Msg.Email)
	if err != nil {
		slog.Warn("AddGroupMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.AddGroupMembers(ctx, req.Msg.GroupID, []string{member.ID}); err != nil {
		slog.Error("AddGroupMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	recordActivity(ctx, s.store, &models.Activity{
		GroupID:     req.Msg.GroupID,
		ActorID:     userID,
		Kind:        models.ActivityMemberAdded,
		Description: fmt.Sprintf("added %s", member.DisplayName),
		ReferenceID: member.ID,
	})

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member added", "group_id", group.ID, "user_id", member.ID)
	return connect.NewResponse(&api.AddGroupMemberResponse{Group: toAPIGroup(group, users)}), nil
}

func (s *GroupService) resolveUser(ctx context.Context, userID, email string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if userID != "" {
		user, err = s.store.GetUserByID(ctx, userID)
	} else {
		user, err = s.store.GetUserByEmail(ctx, auth.NormalizeEmail(email))
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownUser, err)
	}
	return user, err
}

// GetGroupBalances returns every member's balance and the settlement plan.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := groupForMember(ctx, s.store, groupID, userID)
	if err != nil {
		slog.Warn("GetGroupBalances failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	statement, err := s.ledger.Statement(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not compute statement", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"members_count", len(statement.Balances),
		"settlements_count", len(statement.Transfers),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances:    toAPIBalances(statement.Balances, users),
		Settlements: toAPITransfers(statement.Transfers),
	}), nil
}
