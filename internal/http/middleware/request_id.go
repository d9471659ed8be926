package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/equiptrack-gateway/internal/clients/interceptors"
)

// maxRequestIDLen — более длинный входящий id заменяется своим.
const maxRequestIDLen = 128

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если он есть и разумной длины;
//  2. иначе генерирует UUID;
//  3. кладёт id в Response Header, Request Header и в контекст по ключу
//     interceptors.CtxRequestID (его читает интерсептор WithMetadata клиента API).
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get("X-Request-Id"))
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}
			// в заголовке запроса его найдёт errors.WriteError.
			r.Header.Set("X-Request-Id", id)
			w.Header().Set("X-Request-Id", id)

			ctx := context.WithValue(r.Context(), interceptors.CtxRequestID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
