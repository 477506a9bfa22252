package service

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/locking"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// testServer bundles a running server with a client per service.
type testServer struct {
	store       *sqlite.SQLiteStore
	metrics     *middleware.Metrics
	auth        apiconnect.AuthServiceClient
	groups      apiconnect.GroupServiceClient
	expenses    apiconnect.ExpenseServiceClient
	settlements apiconnect.SettlementServiceClient
	activity    apiconnect.ActivityServiceClient
}

// setupTestServer starts every service behind the auth interceptor on a
// temp SQLite database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	l := ledger.New(store, locking.NewLocalLocker())
	metrics := middleware.NewMetrics(prometheus.NewRegistry())

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(issuer,
			apiconnect.AuthServiceRegisterProcedure,
			apiconnect.AuthServiceLoginProcedure,
		),
		metrics.Interceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, issuer, logger), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, l), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, l, metrics), interceptors))
	mux.Handle(apiconnect.NewActivityServiceHandler(NewActivityService(store, l), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		store:       store,
		metrics:     metrics,
		auth:        apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:      apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
		activity:    apiconnect.NewActivityServiceClient(http.DefaultClient, server.URL),
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// session is a registered member and their bearer token.
type session struct {
	user  *api.User
	token string
}

func (ts *testServer) register(t *testing.T, name string) session {
	t.Helper()
	resp, err := ts.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register %s failed: %v", name, err)
	}
	return session{user: resp.Msg.User, token: resp.Msg.Token}
}

// as builds a request authenticated as s.
func as[T any](s session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

// createGroup creates a group owned by owner with the other sessions as members.
func (ts *testServer) createGroup(t *testing.T, owner session, others ...session) *api.Group {
	t.Helper()
	ids := make([]string, len(others))
	for i, o := range others {
		ids[i] = o.user.ID
	}
	resp, err := ts.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: ids,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func (ts *testServer) addExpense(t *testing.T, s session, req *api.AddExpenseRequest) *api.Expense {
	t.Helper()
	resp, err := ts.expenses.AddExpense(context.Background(), as(s, req))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func balanceOf(balances []*api.MemberBalance, memberID string) float64 {
	for _, b := range balances {
		if b.MemberID == memberID {
			return b.NetBalance
		}
	}
	return math.NaN()
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
