package interceptors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
)

// ErrRefreshFailed — access-токен восстановить не удалось; сессия завершена.
var ErrRefreshFailed = errors.New("token refresh failed")

const defaultRefreshTimeout = 10 * time.Second

type retriedKey struct{}

// IsRetried сообщает, что запрос — повторная отправка после refresh.
// Такой запрос шлюз больше не перехватывает.
func IsRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

// RefreshResult — ответ сервера на обмен refresh-токена.
// RefreshToken заполнен, только если сервер ротирует refresh-токены.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// Refresher — отдельный, не перехватываемый вызов обновления токена.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (RefreshResult, error)
}

// GatewayState — флаг «refresh в полёте» и очередь ожидающих.
// Мьютекс держится только на время изменения флага и очереди.
type GatewayState struct {
	mu         sync.Mutex
	refreshing bool
	queue      []*waiter
}

// Refreshing сообщает, идёт ли сейчас refresh.
func (s *GatewayState) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshing
}

// Pending — число запросов, ждущих текущий refresh.
func (s *GatewayState) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

// join делает вызывающего лидером, если refresh не идёт,
// иначе ставит его в конец очереди.
func (s *GatewayState) join() (leader bool, w *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.refreshing {
		s.refreshing = true
		return true, nil
	}

	w = newWaiter()
	s.queue = append(s.queue, w)

	return false, w
}

// settle снимает флаг и забирает очередь под одной блокировкой,
// затем завершает ожидающих в порядке постановки.
func (s *GatewayState) settle(token string, err error) int {
	s.mu.Lock()
	q := s.queue
	s.queue = nil
	s.refreshing = false
	s.mu.Unlock()

	for _, w := range q {
		w.complete(token, err)
	}

	return len(q)
}

// reject завершает текущую очередь ошибкой, не снимая флаг:
// пришедшие после этого 401 встают в новую очередь, а не в лидеры.
func (s *GatewayState) reject(err error) int {
	s.mu.Lock()
	q := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, w := range q {
		w.complete("", err)
	}

	return len(q)
}

type outcome struct {
	token string
	err   error
}

// waiter завершается ровно один раз; буфер 1, лидер никогда не блокируется.
type waiter struct {
	ch chan outcome
}

func newWaiter() *waiter { return &waiter{ch: make(chan outcome, 1)} }

func (w *waiter) complete(token string, err error) {
	w.ch <- outcome{token: token, err: err}
}

func (w *waiter) wait(ctx context.Context) (string, error) {
	select {
	case o := <-w.ch:
		return o.token, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Gateway — шлюз восстановления сессии по HTTP 401.
type Gateway struct {
	store          storage.Store
	refresher      Refresher
	onUnauth       func(ctx context.Context)
	refreshTimeout time.Duration
	log            *slog.Logger
	metrics        *Metrics

	state GatewayState
}

// GatewayOption настраивает Gateway.
type GatewayOption func(*Gateway)

// OnUnauthenticated задаёт реакцию на неустранимую потерю сессии
// (у браузера это переход на /login).
func OnUnauthenticated(fn func(ctx context.Context)) GatewayOption {
	return func(g *Gateway) { g.onUnauth = fn }
}

// WithRefreshTimeout ограничивает вызов refresh. d <= 0 — значение по умолчанию.
func WithRefreshTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.refreshTimeout = d
		}
	}
}

func WithGatewayLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func WithGatewayMetrics(m *Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// NewGateway создаёт шлюз поверх хранилища и refresh-вызова.
func NewGateway(store storage.Store, refresher Refresher, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:          store,
		refresher:      refresher,
		refreshTimeout: defaultRefreshTimeout,
		log:            slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// State — состояние шлюза (для наблюдения и тестов).
func (g *Gateway) State() *GatewayState { return &g.state }

// Interceptor возвращает интерсептор перехвата 401.
//
// Контракт (только для 401 на ещё не повторённом запросе):
//  1. refresh-токена нет — Clear, OnUnauthenticated, вернуть исходный 401;
//  2. refresh уже идёт — встать в очередь; успех — повторить запрос с новым
//     токеном, ошибка — вернуть её без повтора;
//  3. иначе стать лидером: refresh, сохранить токен, завершить очередь FIFO,
//     повторить запрос; при ошибке — завершить очередь ошибкой, Clear,
//     OnUnauthenticated, вернуть исходный 401. Флаг снимается всегда
//     и последним шагом.
func (g *Gateway) Interceptor() Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized || IsRetried(req.Context()) {
				return resp, err
			}

			return g.handleUnauthorized(next, req, resp)
		})
	}
}

func (g *Gateway) handleUnauthorized(next http.RoundTripper, req *http.Request, resp *http.Response) (*http.Response, error) {
	ctx := req.Context()
	l := g.log.With(
		slog.String("request_id", req.Header.Get("X-Request-Id")),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	creds, err := g.store.Credentials(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		l.Error("credentials_read_failed", slog.String("err", err.Error()))
		return resp, nil
	}

	if creds == nil || creds.RefreshToken == "" {
		g.metrics.refresh(outcomeNoToken)
		l.Warn("refresh_unavailable")
		g.expire(ctx, l)
		return resp, nil
	}

	if !replayable(req) {
		l.Warn("refresh_skipped_body_not_replayable")
		return resp, nil
	}

	// Запрос ушёл со старым токеном, а в хранилище уже новый:
	// refresh сделал кто-то другой, достаточно повторить.
	sent := sentToken(req, resp)
	if sent != "" && creds.AccessToken != "" && sent != creds.AccessToken {
		g.metrics.refresh(outcomeStale)
		l.Debug("retry_with_current_token")
		drain(resp)
		return g.replay(next, req, creds.AccessToken)
	}

	leader, w := g.state.join()
	if !leader {
		g.metrics.waiter()
		l.Debug("refresh_queued")
		drain(resp)

		token, err := w.wait(ctx)
		if err != nil {
			return nil, err
		}

		return g.replay(next, req, token)
	}

	// Предыдущий refresh мог завершиться между чтением хранилища и join.
	if current := g.currentToken(ctx); sent != "" && current != "" && current != sent {
		n := g.state.settle(current, nil)
		g.metrics.refresh(outcomeStale)
		l.Debug("retry_with_current_token", slog.Int("waiters", n))
		drain(resp)
		return g.replay(next, req, current)
	}

	token, err := g.lead(ctx, l, creds.RefreshToken)
	if err != nil {
		return resp, nil
	}

	drain(resp)

	return g.replay(next, req, token)
}

// lead выполняет refresh от имени лидера. При ошибке очередь отклоняется,
// учётные данные стираются, и только после этого снимается флаг.
func (g *Gateway) lead(ctx context.Context, l *slog.Logger, refreshToken string) (token string, err error) {
	defer func() {
		if token == "" && err == nil {
			err = ErrRefreshFailed // паника в refresh
		}
		g.state.settle(token, err)
	}()

	l.Info("refresh_started")

	token, err = g.refresh(ctx, refreshToken)
	if err != nil {
		n := g.state.reject(err)
		g.metrics.refresh(outcomeFailure)
		l.Warn("refresh_failed", slog.Int("waiters", n), slog.String("err", err.Error()))
		g.expire(ctx, l)
		return "", err
	}

	g.metrics.refresh(outcomeSuccess)
	l.Info("refresh_succeeded", slog.Int("waiters", g.state.Pending()))

	return token, nil
}

// refresh выполняет обмен и сохраняет результат. Отмена запроса-лидера не
// прерывает refresh: от него зависят и ожидающие запросы.
func (g *Gateway) refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "interceptors/Gateway.refresh"

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
	defer cancel()

	res, err := g.refresher.Refresh(rctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("%s: %w: empty access token", op, ErrRefreshFailed)
	}

	if err := g.store.SetAccessToken(rctx, res.AccessToken); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
	}
	if res.RefreshToken != "" {
		if err := g.store.SetRefreshToken(rctx, res.RefreshToken); err != nil {
			return "", fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
		}
	}

	return res.AccessToken, nil
}

// sentToken — токен, с которым запрос реально ушёл. Bearer ставит его на
// клон ниже по цепочке, поэтому смотрим сначала на resp.Request.
func sentToken(req *http.Request, resp *http.Response) string {
	if resp != nil && resp.Request != nil {
		if t := bearerToken(resp.Request); t != "" {
			return t
		}
	}

	return bearerToken(req)
}

func (g *Gateway) currentToken(ctx context.Context) string {
	token, err := storage.AccessToken(ctx, g.store)
	if err != nil {
		return ""
	}

	return token
}

// expire стирает учётные данные и один раз сообщает о потере сессии.
func (g *Gateway) expire(ctx context.Context, l *slog.Logger) {
	if err := g.store.Clear(context.WithoutCancel(ctx)); err != nil {
		l.Error("credentials_clear_failed", slog.String("err", err.Error()))
	}

	if g.onUnauth != nil {
		g.onUnauth(ctx)
	}
}

// replay повторяет исходный запрос с новым токеном, помечая его повторённым.
func (g *Gateway) replay(next http.RoundTripper, req *http.Request, token string) (*http.Response, error) {
	r := req.Clone(withRetried(req.Context()))

	if req.Body != nil && req.Body != http.NoBody {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("interceptors/Gateway.replay: %w", err)
		}
		r.Body = body
	}

	r.Header.Set("Authorization", "Bearer "+token)

	return next.RoundTrip(r)
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// drain освобождает соединение ответа, который не вернётся вызывающему.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
