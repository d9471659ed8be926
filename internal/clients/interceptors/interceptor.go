// interceptors предоставляет набор http.RoundTripper-интерсепторов для
// исходящих запросов к EquipTrack API: метаданные, bearer, таймаут,
// логирование, метрики и шлюз обновления токена (Gateway).
package interceptors

import "net/http"

type CtxKey string

const (
	// CtxRequestID — ключ, под которым входящий HTTP-слой кладёт request id.
	CtxRequestID CtxKey = "request_id"
)

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Interceptor оборачивает следующий транспорт.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// Chain собирает транспорт: первый интерсептор в списке — внешний.
// nil base заменяется на http.DefaultTransport, nil-интерсепторы пропускаются.
func Chain(base http.RoundTripper, ics ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	rt := base
	for i := len(ics) - 1; i >= 0; i-- {
		if ics[i] == nil {
			continue
		}
		rt = ics[i](rt)
	}

	return rt
}
