package middleware_http

import (
	"log/slog"
	"net/http"
	"strings"

	"eshop-api/internal/apperror"
	"eshop-api/internal/auth"
	"eshop-api/internal/logger"
)

const unauthorizedMessage = "The user is not authorized"

type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// Authenticate verifies the bearer token of every request outside the
// allow-list and admits only admin callers there. On public routes a valid
// token is still decoded so handlers can see who is calling.
func Authenticate(tokens TokenParser, allow auth.AllowList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := bearerToken(r)

			if allow.Allows(r.Method, r.URL.Path) {
				if raw != "" {
					if claims, err := tokens.Parse(raw); err == nil {
						ctx = auth.WithClaims(ctx, claims)
					}
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if raw == "" {
				apperror.Write(ctx, w, apperror.Unauthorized(unauthorizedMessage))
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				logger.Warn(ctx, "Token rejected", slog.String("error", err.Error()))
				apperror.Write(ctx, w, apperror.Unauthorized(unauthorizedMessage))
				return
			}

			if !claims.IsAdmin {
				apperror.Write(ctx, w, apperror.Unauthorized(unauthorizedMessage))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(ctx, claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
