// session — вход и выход оператора back-office и статус его сессии.
//
// Основные аспекты:
//   - Service не хранит состояние сам: всё состояние сессии живёт в storage.Store,
//     поэтому экземпляр безопасен для конкурентного использования.
//   - Вход идёт через клиент без перехвата 401: отказ сервера — это неверные
//     учётные данные, а не повод для refresh.
//   - Expired вызывается шлюзом, когда сессию восстановить не удалось;
//     хранилище к этому моменту уже очищено.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gwerrors "github.com/pribylovaa/equiptrack-gateway/internal/errors"
	"github.com/pribylovaa/equiptrack-gateway/internal/models"
	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
	"github.com/pribylovaa/equiptrack-gateway/pkg/log"
)

// LoginFallbackMessage — текст для оператора, когда сервер не объяснил отказ.
const LoginFallbackMessage = "Connexion impossible. Verifiez vos identifiants."

var (
	// ErrInvalidCredentials — сервер отклонил пару логин/пароль (HTTP 400/401).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmptyCredentials — логин или пароль пустые; в API не ходим.
	ErrEmptyCredentials = errors.New("empty credentials")
)

// LoginError — неудачный вход. Message пригоден для показа оператору.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e.Err == nil {
		return "login failed: " + e.Message
	}

	return "login failed: " + e.Err.Error()
}

func (e *LoginError) Unwrap() error { return e.Err }

// Is сопоставляет отказ сервера с ErrInvalidCredentials.
func (e *LoginError) Is(target error) bool {
	if target != ErrInvalidCredentials {
		return false
	}

	var ue *gwerrors.UpstreamError
	if errors.As(e.Err, &ue) {
		return ue.Status == http.StatusUnauthorized || ue.Status == http.StatusBadRequest
	}

	return false
}

// Authenticator — вызов входа (clients.Auth).
type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.TokenPair, error)
}

// ExpiryCounter считает потерянные сессии (interceptors.Metrics).
type ExpiryCounter interface {
	SessionExpired()
}

// Service — сессия оператора поверх хранилища учётных данных.
type Service struct {
	auth    Authenticator
	store   storage.Store
	log     *slog.Logger
	counter ExpiryCounter // может быть nil
}

// Option настраивает Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithExpiryCounter(c ExpiryCounter) Option {
	return func(s *Service) { s.counter = c }
}

// New создаёт новый экземпляр Service.
func New(auth Authenticator, store storage.Store, opts ...Option) *Service {
	s := &Service{
		auth:  auth,
		store: store,
		log:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Login выполняет вход и сохраняет пару токенов вместе с идентичностью.
// Любая ошибка входа возвращается как *LoginError.
func (s *Service) Login(ctx context.Context, username, password string) (*storage.Credentials, error) {
	const op = "session/Service.Login"

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &LoginError{Message: LoginFallbackMessage, Err: ErrEmptyCredentials}
	}

	pair, err := s.auth.Login(ctx, username, password)
	if err != nil {
		log.From(ctx).Warn("login_failed", slog.String("username", username), slog.String("err", err.Error()))
		return nil, &LoginError{Message: gwerrors.Message(err, LoginFallbackMessage), Err: err}
	}

	creds := &storage.Credentials{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		User:         &storage.Identity{Username: username},
	}

	if err := s.store.Save(ctx, creds); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("login_succeeded", slog.String("username", username))

	return creds, nil
}

// Logout стирает учётные данные. Повторный вызов не ошибка.
func (s *Service) Logout(ctx context.Context) error {
	const op = "session/Service.Logout"

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("logout")

	return nil
}

// IsAuthenticated — есть ли сохранённый access-токен.
// Ошибка чтения хранилища трактуется как отсутствие сессии.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	token, err := storage.AccessToken(ctx, s.store)
	if err != nil {
		log.From(ctx).Error("credentials_read_failed", slog.String("err", err.Error()))
		return false
	}

	return token != ""
}

// Status описывает текущую сессию для браузера.
func (s *Service) Status(ctx context.Context) (models.SessionStatus, error) {
	const op = "session/Service.Status"

	creds, err := s.store.Credentials(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return models.SessionStatus{}, nil
	}
	if err != nil {
		return models.SessionStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	st := models.SessionStatus{Authenticated: creds.AccessToken != ""}
	if !st.Authenticated {
		return st, nil
	}

	if creds.User != nil {
		st.User = &models.SessionUser{Username: creds.User.Username}
	}

	if exp, err := storage.AccessExpiresAt(creds.AccessToken); err == nil {
		st.AccessExpiresAt = &exp
	}

	return st, nil
}

// Expired — реакция на неустранимую потерю сессии.
func (s *Service) Expired(ctx context.Context) {
	log.From(ctx).Warn("session_expired")

	if s.counter != nil {
		s.counter.SessionExpired()
	}
}
