package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
)

type empty struct{}

func okHandler(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
	return connect.NewResponse(&empty{}), nil
}

func TestRequireAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue(&models.User{ID: "u1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var seenUser, seenEmail string
	handler := RequireAuth(issuer)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		seenUser, seenEmail = GetUserID(ctx), GetEmail(ctx)
		return connect.NewResponse(&empty{}), nil
	})

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
	}{
		{"valid", "Bearer " + token, 0},
		{"lowercase scheme", "bearer " + token, 0},
		{"missing", "", connect.CodeUnauthenticated},
		{"wrong scheme", "Basic " + token, connect.CodeUnauthenticated},
		{"bad token", "Bearer nope", connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenUser, seenEmail = "", ""
			req := connect.NewRequest(&empty{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := handler(context.Background(), req)
			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("Expected success, got %v", err)
				}
				if seenUser != "u1" || seenEmail != "alice@example.com" {
					t.Errorf("Expected identity in context, got %q %q", seenUser, seenEmail)
				}
				return
			}
			if connect.CodeOf(err) != tt.wantCode {
				t.Errorf("Expected code %v, got %v", tt.wantCode, connect.CodeOf(err))
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue(&models.User{ID: "u1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var seen string
	handler := Authenticate(issuer, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/export", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK && seen != "u1" {
				t.Errorf("expected identity u1, got %q", seen)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if _, err := bearerToken(""); !errors.Is(err, auth.ErrMissingToken) {
		t.Errorf("Expected ErrMissingToken, got %v", err)
	}
	if _, err := bearerToken("Bearer"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
	if got, err := bearerToken("Bearer abc"); err != nil || got != "abc" {
		t.Errorf("Expected abc, got %q (%v)", got, err)
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("group missing"))
	}

	ctx := WithIdentity(context.Background(), "u1", "alice@example.com")
	if _, err := LoggingInterceptor(logger)(okHandler)(ctx, connect.NewRequest(&empty{})); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := LoggingInterceptor(logger)(failing)(ctx, connect.NewRequest(&empty{})); err == nil {
		t.Fatal("Expected error")
	}

	out := buf.String()
	if !strings.Contains(out, "level=INFO msg=\"RPC ok\"") {
		t.Errorf("Expected info line for success, got:\n%s", out)
	}
	if !strings.Contains(out, "level=WARN msg=\"RPC error\"") || !strings.Contains(out, "code=not_found") {
		t.Errorf("Expected warn line with code for client error, got:\n%s", out)
	}
	if !strings.Contains(out, "user_id=u1") {
		t.Errorf("Expected user_id in log, got:\n%s", out)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	failing := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))
	}
	m.Interceptor()(okHandler)(context.Background(), connect.NewRequest(&empty{}))
	m.Interceptor()(okHandler)(context.Background(), connect.NewRequest(&empty{}))
	m.Interceptor()(failing)(context.Background(), connect.NewRequest(&empty{}))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("", "ok")); got != 2 {
		t.Errorf("Expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("", "invalid_argument")); got != 1 {
		t.Errorf("Expected 1 failed request, got %v", got)
	}

	m.ObservePayment(12.5)
	m.ObservePayment(7.5)
	if got := testutil.ToFloat64(m.PaymentsRecorded); got != 2 {
		t.Errorf("Expected 2 payments, got %v", got)
	}
	if got := testutil.ToFloat64(m.AmountSettled); got != 20 {
		t.Errorf("Expected 20 settled, got %v", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObservePayment(1) // must not panic
}
