package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/equityplan/internal/auth"
)

// RequireAuth returns an interceptor that validates the Bearer token and
// stores the caller's auth.Identity in the request context.
//
// Procedures listed in public are let through without a token. If such a
// request does carry a valid token the identity is still attached.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure

			identity, err := identityFromHeader(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				if open[procedure] {
					return next(ctx, req)
				}
				slog.WarnContext(ctx, "Rejected unauthenticated call",
					"procedure", procedure,
					"peer", req.Peer().Addr,
					"error", err,
				)
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(auth.WithIdentity(ctx, identity), req)
		}
	}
}

func identityFromHeader(jwtManager *auth.JWTManager, header string) (auth.Identity, error) {
	if header == "" {
		return auth.Identity{}, auth.ErrMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return auth.Identity{}, auth.ErrInvalidToken
	}

	claims, err := jwtManager.Validate(token)
	if err != nil {
		return auth.Identity{}, err
	}
	return claims.Identity(), nil
}
