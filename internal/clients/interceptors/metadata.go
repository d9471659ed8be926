package interceptors

import (
	"net/http"

	"github.com/google/uuid"
)

// WithMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (из запроса, из контекста или новый uuid),
//   - User-Agent (если передан параметром),
//   - Accept: application/json (если не задан вызывающим).
func WithMetadata(userAgent string) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			r := req.Clone(req.Context())

			if r.Header.Get("X-Request-Id") == "" {
				rid, _ := r.Context().Value(CtxRequestID).(string)
				if rid == "" {
					rid = uuid.NewString()
				}
				r.Header.Set("X-Request-Id", rid)
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}
			if r.Header.Get("Accept") == "" {
				r.Header.Set("Accept", "application/json")
			}

			return next.RoundTrip(r)
		})
	}
}
