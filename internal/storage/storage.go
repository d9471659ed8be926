// storage определяет контракт хранилища учётных данных оператора:
// access-токен, refresh-токен и кэш идентичности пользователя.
//
// Все три записи живут и удаляются вместе: Clear стирает их атомарно
// (logout или неустранимая ошибка refresh).
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotFound — в хранилище нет учётных данных (оператор не входил или вышел).
	ErrNotFound = errors.New("credentials not found")
	// ErrNoExpiry — в access-токене нет читаемого claim exp.
	ErrNoExpiry = errors.New("token has no expiry")
)

// Identity — кэш пользователя, под которым выполнен вход.
type Identity struct {
	Username string `json:"username" yaml:"username"`
}

// Credentials — пара токенов и кэш пользователя.
type Credentials struct {
	AccessToken  string    `json:"access" yaml:"access_token"`
	RefreshToken string    `json:"refresh" yaml:"refresh_token"`
	User         *Identity `json:"user,omitempty" yaml:"user,omitempty"`
}

// Empty сообщает, что сохранять/отдавать нечего.
func (c *Credentials) Empty() bool {
	return c == nil || (c.AccessToken == "" && c.RefreshToken == "" && c.User == nil)
}

//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/pribylovaa/equiptrack-gateway/internal/storage Store

// Store — контракт хранилища учётных данных.
// Реализации обязаны быть безопасны для конкурентного использования.
type Store interface {
	// Credentials возвращает сохранённые данные или ErrNotFound.
	Credentials(ctx context.Context) (*Credentials, error)
	// Save перезаписывает все три записи.
	Save(ctx context.Context, c *Credentials) error
	// SetAccessToken обновляет только access-токен (успешный refresh).
	// Без сохранённой записи ничего не пишет и возвращает ErrNotFound.
	SetAccessToken(ctx context.Context, token string) error
	// SetRefreshToken обновляет только refresh-токен (ротация на сервере).
	// Без сохранённой записи ничего не пишет и возвращает ErrNotFound.
	SetRefreshToken(ctx context.Context, token string) error
	// Clear удаляет все три записи разом. Повторный вызов не ошибка.
	Clear(ctx context.Context) error
}

// AccessToken — удобный доступ к текущему access-токену: "" если его нет.
func AccessToken(ctx context.Context, s Store) (string, error) {
	c, err := s.Credentials(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return c.AccessToken, nil
}

// AccessExpiresAt читает exp из JWT без проверки подписи: секрет знает только сервер,
// а клиенту срок нужен лишь для отображения статуса сессии и логов.
func AccessExpiresAt(token string) (time.Time, error) {
	const op = "storage/AccessExpiresAt"

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrNoExpiry)
	}

	return claims.ExpiresAt.Time.UTC(), nil
}
