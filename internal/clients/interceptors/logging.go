package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/equiptrack-gateway/pkg/log"
)

// WithLogging — логирование исходящих попыток.
// Поведение:
//   - берёт X-Request-Id из заголовков запроса;
//   - добавляет поля method/path, прокладывает обогащённый логгер в контекст (pkg/log);
//   - пишет одну финальную запись на попытку: msg="upstream", status, retried, dur.
//
// Безопасность: не логирует тело и заголовок Authorization.
func WithLogging(base *slog.Logger) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			parent := base
			if parent == nil {
				parent = log.From(req.Context())
			}

			l := parent.With(
				slog.String("request_id", req.Header.Get("X-Request-Id")),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
			)
			ctx := log.Into(req.Context(), l)

			resp, err := next.RoundTrip(req.WithContext(ctx))

			if err != nil {
				l.Warn("upstream",
					slog.Bool("retried", IsRetried(ctx)),
					slog.Duration("dur", time.Since(start)),
					slog.String("err", err.Error()),
				)
				return nil, err
			}

			l.Info("upstream",
				slog.Int("status", resp.StatusCode),
				slog.Bool("retried", IsRetried(ctx)),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
