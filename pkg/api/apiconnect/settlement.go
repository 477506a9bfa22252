package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "settleup.v1.SettlementService"

// Procedure paths of the SettlementService methods.
const (
	SettlementServiceSuggestSettlementsProcedure = "/settleup.v1.SettlementService/SuggestSettlements"
	SettlementServiceMarkPaidProcedure           = "/settleup.v1.SettlementService/MarkPaid"
	SettlementServiceListPaymentsProcedure       = "/settleup.v1.SettlementService/ListPayments"
	SettlementServiceDeletePaymentProcedure      = "/settleup.v1.SettlementService/DeletePayment"
)

// SettlementServiceHandler suggests and records payments between members.
type SettlementServiceHandler interface {
	SuggestSettlements(context.Context, *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error)
	MarkPaid(context.Context, *connect.Request[api.MarkPaidRequest]) (*connect.Response[api.MarkPaidResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

// NewSettlementServiceHandler returns the mount path and handler for svc.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + SettlementServiceName + "/", serviceMux(map[string]http.Handler{
		SettlementServiceSuggestSettlementsProcedure: connect.NewUnaryHandler(SettlementServiceSuggestSettlementsProcedure, svc.SuggestSettlements, opts...),
		SettlementServiceMarkPaidProcedure:           connect.NewUnaryHandler(SettlementServiceMarkPaidProcedure, svc.MarkPaid, opts...),
		SettlementServiceListPaymentsProcedure:       connect.NewUnaryHandler(SettlementServiceListPaymentsProcedure, svc.ListPayments, opts...),
		SettlementServiceDeletePaymentProcedure:      connect.NewUnaryHandler(SettlementServiceDeletePaymentProcedure, svc.DeletePayment, opts...),
	})
}

// SettlementServiceClient calls a remote SettlementService.
type SettlementServiceClient interface {
	SuggestSettlements(context.Context, *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error)
	MarkPaid(context.Context, *connect.Request[api.MarkPaidRequest]) (*connect.Response[api.MarkPaidResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

type settlementServiceClient struct {
	suggestSettlements *connect.Client[api.SuggestSettlementsRequest, api.SuggestSettlementsResponse]
	markPaid           *connect.Client[api.MarkPaidRequest, api.MarkPaidResponse]
	listPayments       *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	deletePayment      *connect.Client[api.DeletePaymentRequest, api.DeletePaymentResponse]
}

// NewSettlementServiceClient returns a client for the SettlementService at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	opts = clientOptions(opts)
	return &settlementServiceClient{
		suggestSettlements: connect.NewClient[api.SuggestSettlementsRequest, api.SuggestSettlementsResponse](httpClient, procedureURL(baseURL, SettlementServiceSuggestSettlementsProcedure), opts...),
		markPaid:           connect.NewClient[api.MarkPaidRequest, api.MarkPaidResponse](httpClient, procedureURL(baseURL, SettlementServiceMarkPaidProcedure), opts...),
		listPayments:       connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, procedureURL(baseURL, SettlementServiceListPaymentsProcedure), opts...),
		deletePayment:      connect.NewClient[api.DeletePaymentRequest, api.DeletePaymentResponse](httpClient, procedureURL(baseURL, SettlementServiceDeletePaymentProcedure), opts...),
	}
}

func (c *settlementServiceClient) SuggestSettlements(ctx context.Context, req *connect.Request[api.SuggestSettlementsRequest]) (*connect.Response[api.SuggestSettlementsResponse], error) {
	return c.suggestSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) MarkPaid(ctx context.Context, req *connect.Request[api.MarkPaidRequest]) (*connect.Response[api.MarkPaidResponse], error) {
	return c.markPaid.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}
