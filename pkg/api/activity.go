package api

type ListActivityRequest struct {
	// Limit caps the number of entries; 0 means the server default.
	Limit int `json:"limit" validate:"gte=0,lte=200"`
}

type ListActivityResponse struct {
	Activities []*Activity `json:"activities"`
}

type GetDashboardRequest struct{}

type GetDashboardResponse struct {
	Friends   []*FriendBalance `json:"friends"`
	OwedToYou float64          `json:"owedToYou"`
	YouOwe    float64          `json:"youOwe"`
	Net       float64          `json:"net"`
}
