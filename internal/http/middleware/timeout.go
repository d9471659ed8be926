package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
)

// Timeout ограничивает обработку запроса общим дедлайном d; более ранний
// дедлайн вызывающего остаётся в силе. d <= 0 — no-op.
//
// Если обработчик вернулся по истечении дедлайна, так ничего и не записав,
// браузер получает 504 deadline_exceeded в общем формате ошибок.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				gwerrors.WriteError(sw, r, context.DeadlineExceeded)
			}
		})
	}
}
