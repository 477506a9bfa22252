package api

type CreateGroupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
	// MemberIDs are added alongside the caller, who always joins.
	MemberIDs []string `json:"memberIds" validate:"dive,required"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// AddGroupMemberRequest names the new member by ID or by email.
type AddGroupMemberRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId" validate:"required_without=Email"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type AddGroupMemberResponse struct {
	Group *Group `json:"group"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupBalancesResponse struct {
	Balances    []*MemberBalance `json:"balances"`
	Settlements []*Transfer      `json:"settlements"`
}
