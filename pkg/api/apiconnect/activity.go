package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// ActivityServiceName is the fully-qualified name of the ActivityService.
const ActivityServiceName = "settleup.v1.ActivityService"

// Procedure paths of the ActivityService methods.
const (
	ActivityServiceListActivityProcedure = "/settleup.v1.ActivityService/ListActivity"
	ActivityServiceGetDashboardProcedure = "/settleup.v1.ActivityService/GetDashboard"
)

// ActivityServiceHandler serves the caller's feed and cross-group summary.
type ActivityServiceHandler interface {
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
}

// NewActivityServiceHandler returns the mount path and handler for svc.
func NewActivityServiceHandler(svc ActivityServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ActivityServiceName + "/", serviceMux(map[string]http.Handler{
		ActivityServiceListActivityProcedure: connect.NewUnaryHandler(ActivityServiceListActivityProcedure, svc.ListActivity, opts...),
		ActivityServiceGetDashboardProcedure: connect.NewUnaryHandler(ActivityServiceGetDashboardProcedure, svc.GetDashboard, opts...),
	})
}

// ActivityServiceClient calls a remote ActivityService.
type ActivityServiceClient interface {
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
}

type activityServiceClient struct {
	listActivity *connect.Client[api.ListActivityRequest, api.ListActivityResponse]
	getDashboard *connect.Client[api.GetDashboardRequest, api.GetDashboardResponse]
}

// NewActivityServiceClient returns a client for the ActivityService at baseURL.
func NewActivityServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ActivityServiceClient {
	opts = clientOptions(opts)
	return &activityServiceClient{
		listActivity: connect.NewClient[api.ListActivityRequest, api.ListActivityResponse](httpClient, procedureURL(baseURL, ActivityServiceListActivityProcedure), opts...),
		getDashboard: connect.NewClient[api.GetDashboardRequest, api.GetDashboardResponse](httpClient, procedureURL(baseURL, ActivityServiceGetDashboardProcedure), opts...),
	}
}

func (c *activityServiceClient) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}

func (c *activityServiceClient) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}
