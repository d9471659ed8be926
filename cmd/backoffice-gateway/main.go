package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/equiptrack-gateway/internal/clients"
	"github.com/pribylovaa/equiptrack-gateway/internal/clients/interceptors"
	"github.com/pribylovaa/equiptrack-gateway/internal/config"
	gwhttp "github.com/pribylovaa/equiptrack-gateway/internal/http"
	"github.com/pribylovaa/equiptrack-gateway/internal/http/handlers"
	"github.com/pribylovaa/equiptrack-gateway/internal/service"
	"github.com/pribylovaa/equiptrack-gateway/internal/session"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage/file"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage/memory"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting backoffice-gateway", "env", cfg.Env, "storage", cfg.Storage.Driver)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	store, closeStore, err := openStore(rootCtx, cfg.Storage)
	if err != nil {
		log.Error("storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := closeStore(); cerr != nil {
			log.Warn("storage_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	var metrics *interceptors.Metrics
	if !cfg.Metrics.Disabled {
		metrics = interceptors.NewMetrics(prometheus.DefaultRegisterer)
	}

	// Auth создаётся первым: он нужен и сессии (вход), и шлюзу (refresh),
	// а сессия, в свою очередь, — реакция шлюза на потерю сессии.
	auth := clients.NewAuth(*cfg, log, clients.WithMetrics(metrics))
	sess := session.New(auth, store, session.WithLogger(log), session.WithExpiryCounter(metrics))

	cl, err := clients.New(rootCtx, *cfg, store, log,
		clients.WithAuth(auth),
		clients.WithMetrics(metrics),
		clients.OnUnauthenticated(sess.Expired),
	)
	if err != nil {
		log.Error("clients_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if cerr := cl.Close(); cerr != nil {
			log.Warn("clients_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	log.Info("clients_initialized", slog.String("base_url", cfg.API.BaseURL))

	h := handlers.New(sess, cl.API, service.New(cl.API))
	apiHandler := gwhttp.NewRouter(h, gwhttp.Options{
		Logger:        log,
		Timeout:       cfg.Timeouts.Service,
		Authenticated: sess.IsAuthenticated,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	if metrics != nil {
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("gateway_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

// openStore выбирает хранилище учётных данных по драйверу.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.StorageMemory, "":
		return memory.New(), noop, nil
	case config.StorageFile:
		s, err := file.New(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.StorageRedis:
		s, err := redis.New(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
