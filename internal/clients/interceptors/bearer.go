package interceptors

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
	"github.com/pribylovaa/equiptrack-gateway/pkg/log"
)

// Bearer — прикрепляет Authorization: Bearer <access> из хранилища
// непосредственно перед отправкой. Без сохранённого токена запрос уходит
// как есть. Повторная отправка шлюза сохраняет выставленный им заголовок.
//
// Ошибка чтения хранилища не прерывает запрос: он уходит без заголовка,
// сервер ответит 401, и дальше решает Gateway.
func Bearer(store storage.Store) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if IsRetried(req.Context()) && req.Header.Get("Authorization") != "" {
				return next.RoundTrip(req)
			}

			token, err := storage.AccessToken(req.Context(), store)
			if err != nil {
				log.From(req.Context()).Warn("bearer_store_failed", slog.String("err", err.Error()))
			}
			if token == "" {
				return next.RoundTrip(req)
			}

			r := req.Clone(req.Context())
			r.Header.Set("Authorization", "Bearer "+token)

			return next.RoundTrip(r)
		})
	}
}

// bearerToken достаёт токен из заголовка Authorization.
func bearerToken(req *http.Request) string {
	h := req.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(h[len(prefix):])
}
