package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/equityplan/internal/auth"
	"github.com/mmynk/equityplan/internal/metrics"
	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/pkg/api"
	"github.com/mmynk/equityplan/pkg/api/apiconnect"
)

// echoAuth answers GetCurrentUser with whatever identity the interceptors
// attached.
type echoAuth struct{}

func (echoAuth) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	id, _ := auth.IdentityFromContext(ctx)
	return connect.NewResponse(&api.RegisterResponse{User: &api.User{ID: id.UserID}}), nil
}

func (echoAuth) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return connect.NewResponse(&api.LoginResponse{}), nil
}

func (echoAuth) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeInternal, errors.New("no identity"))
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: &api.User{ID: id.UserID, Email: id.Email}}), nil
}

func setup(t *testing.T) (*apiconnect.AuthServiceClient, *auth.JWTManager, *metrics.Metrics) {
	t.Helper()

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.New()

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(echoAuth{}, connect.WithInterceptors(
		MetricsInterceptor(m),
		RequireAuth(jwtManager, apiconnect.AuthServiceRegisterProcedure),
		LoggingInterceptor(),
	)))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL), jwtManager, m
}

func TestRequireAuth(t *testing.T) {
	client, jwtManager, m := setup(t)
	ctx := context.Background()

	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	t.Run("valid token attaches identity", func(t *testing.T) {
		req := connect.NewRequest(&api.GetCurrentUserRequest{})
		req.Header().Set("Authorization", "Bearer "+token)

		resp, err := client.GetCurrentUser(ctx, req)
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if resp.Msg.User.ID != "user-1" || resp.Msg.User.Email != "a@example.com" {
			t.Errorf("unexpected identity: %+v", resp.Msg.User)
		}
	})

	t.Run("rejects missing and malformed headers", func(t *testing.T) {
		for _, header := range []string{"", "Token " + token, "Bearer", "Bearer garbage"} {
			req := connect.NewRequest(&api.GetCurrentUserRequest{})
			if header != "" {
				req.Header().Set("Authorization", header)
			}
			_, err := client.GetCurrentUser(ctx, req)
			if connect.CodeOf(err) != connect.CodeUnauthenticated {
				t.Errorf("header %q: expected unauthenticated, got %v", header, err)
			}
		}
	})

	t.Run("public procedure passes without token", func(t *testing.T) {
		resp, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{}))
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Msg.User.ID != "" {
			t.Errorf("expected no identity, got %q", resp.Msg.User.ID)
		}
	})

	t.Run("public procedure still reads a valid token", func(t *testing.T) {
		req := connect.NewRequest(&api.RegisterRequest{})
		req.Header().Set("Authorization", "Bearer "+token)

		resp, err := client.Register(ctx, req)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.Msg.User.ID != "user-1" {
			t.Errorf("expected identity user-1, got %q", resp.Msg.User.ID)
		}
	})

	ok := testutil.ToFloat64(m.RPCRequests().WithLabelValues(apiconnect.AuthServiceGetCurrentUserProcedure, "ok"))
	if ok != 1 {
		t.Errorf("expected 1 ok GetCurrentUser recorded, got %v", ok)
	}
	rejected := testutil.ToFloat64(m.RPCRequests().WithLabelValues(
		apiconnect.AuthServiceGetCurrentUserProcedure, connect.CodeUnauthenticated.String()))
	if rejected != 4 {
		t.Errorf("expected 4 rejected GetCurrentUser recorded, got %v", rejected)
	}
}

func TestCORS(t *testing.T) {
	var called bool
	handler := CORS("https://app.example.com")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/equityplan.v1.ScenarioService/ListScenarios", nil))

	if called {
		t.Error("preflight should not reach the wrapped handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if !called {
		t.Error("POST should reach the wrapped handler")
	}
}
