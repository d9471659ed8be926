package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/equiptrack-gateway/internal/clients/interceptors"
	"github.com/pribylovaa/equiptrack-gateway/internal/config"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
)

// Clients агрегирует клиенты EquipTrack API:
// Auth — вход и обновление токена (без перехвата 401),
// API — ресурсы через шлюз обновления сессии.
type Clients struct {
	Auth    *Auth
	API     *API
	Gateway *interceptors.Gateway
}

type options struct {
	base     http.RoundTripper
	metrics  *interceptors.Metrics
	onUnauth func(ctx context.Context)
	auth     *Auth
}

// Option настраивает клиенты.
type Option func(*options)

// WithBaseTransport подменяет нижний транспорт (тесты, прокси).
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithMetrics(m *interceptors.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// OnUnauthenticated — реакция на неустранимую потерю сессии.
func OnUnauthenticated(fn func(ctx context.Context)) Option {
	return func(o *options) { o.onUnauth = fn }
}

// WithAuth переиспользует уже созданный Auth (он же Refresher шлюза).
func WithAuth(a *Auth) Option {
	return func(o *options) { o.auth = a }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.base == nil {
		o.base = http.DefaultTransport
	}
	return o
}

// NewAuth создаёт клиент входа. Его цепочка: metadata -> logging -> metrics -> timeout.
func NewAuth(cfg config.Config, log *slog.Logger, opts ...Option) *Auth {
	o := collect(opts)

	rt := interceptors.Chain(o.base,
		interceptors.WithMetadata(cfg.API.UserAgent),
		interceptors.WithLogging(log),
		interceptors.WithMetrics(o.metrics),
		interceptors.WithTimeout(cfg.Timeouts.Request),
	)

	return &Auth{
		http: &http.Client{Transport: rt},
		base: strings.TrimRight(cfg.API.BaseURL, "/"),
	}
}

// New создаёт клиенты для EquipTrack API.
func New(ctx context.Context, cfg config.Config, store storage.Store, log *slog.Logger, opts ...Option) (*Clients, error) {
	const op = "internal/clients/New"

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("%s: empty api base_url", op)
	}
	if store == nil {
		return nil, fmt.Errorf("%s: nil credential store", op)
	}
	if log == nil {
		log = slog.Default()
	}

	o := collect(opts)

	auth := o.auth
	if auth == nil {
		auth = NewAuth(cfg, log, opts...)
	}

	gw := interceptors.NewGateway(store, auth,
		interceptors.OnUnauthenticated(o.onUnauth),
		interceptors.WithRefreshTimeout(cfg.Timeouts.Refresh),
		interceptors.WithGatewayLogger(log),
		interceptors.WithGatewayMetrics(o.metrics),
	)

	// Цепочка: metadata -> gateway -> bearer -> logging -> metrics -> timeout.
	// Bearer стоит под шлюзом, поэтому и первая попытка, и повтор
	// получают актуальный токен; logging/metrics видят каждую попытку.
	rt := interceptors.Chain(o.base,
		interceptors.WithMetadata(cfg.API.UserAgent),
		gw.Interceptor(),
		interceptors.Bearer(store),
		interceptors.WithLogging(log),
		interceptors.WithMetrics(o.metrics),
		interceptors.WithTimeout(cfg.Timeouts.Request),
	)

	log.Debug("clients_ready", slog.String("base_url", cfg.API.BaseURL))

	return &Clients{
		Auth: auth,
		API: &API{
			http: &http.Client{Transport: rt},
			base: strings.TrimRight(cfg.API.BaseURL, "/"),
		},
		Gateway: gw,
	}, nil
}

// Close освобождает простаивающие соединения.
func (c *Clients) Close() error {
	c.Auth.http.CloseIdleConnections()
	c.API.http.CloseIdleConnections()

	return nil
}
