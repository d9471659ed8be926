package middleware

import (
	"context"
	"net/http"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
)

// RequireSession пропускает запрос, только если оператор вошёл.
// Иначе — 401 с redirect на страницу входа.
func RequireSession(authenticated func(ctx context.Context) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authenticated(r.Context()) {
				gwerrors.WriteError(w, r, gwerrors.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
