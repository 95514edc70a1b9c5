package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/equityplan/pkg/api"
)

func TestAuthService(t *testing.T) {
	srv := setupTestServer(t)
	ctx := context.Background()

	t.Run("register returns a usable token", func(t *testing.T) {
		token := srv.register(t, "Dana@Example.com")

		resp, err := srv.auth.GetCurrentUser(ctx, withToken(&api.GetCurrentUserRequest{}, token))
		if err != nil {
			t.Fatalf("GetCurrentUser failed: %v", err)
		}
		if resp.Msg.User.Email != "dana@example.com" {
			t.Errorf("expected normalized email, got %s", resp.Msg.User.Email)
		}
		if resp.Msg.User.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := srv.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "dana@example.com",
			DisplayName: "Dana again",
			Password:    "correct horse battery",
		}))
		assertCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := srv.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "erin@example.com",
			DisplayName: "Erin",
			Password:    "short",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("login", func(t *testing.T) {
		resp, err := srv.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "dana@example.com",
			Password: "correct horse battery",
		}))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.Msg.Token == "" || resp.Msg.User == nil {
			t.Errorf("expected token and user, got %+v", resp.Msg)
		}

		_, err = srv.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "dana@example.com",
			Password: "wrong password",
		}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("current user requires token", func(t *testing.T) {
		_, err := srv.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})
}
