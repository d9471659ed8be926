// memory — хранилище учётных данных в памяти процесса.
// Подходит для локального запуска и тестов: после рестарта нужен повторный вход.
package memory

import (
	"context"
	"sync"

	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
)

type Store struct {
	mu    sync.RWMutex
	creds storage.Credentials
}

func New() *Store {
	return &Store{}
}

func (s *Store) Credentials(context.Context) (*storage.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.creds.Empty() {
		return nil, storage.ErrNotFound
	}

	out := s.creds
	if s.creds.User != nil {
		u := *s.creds.User
		out.User = &u
	}

	return &out, nil
}

func (s *Store) Save(_ context.Context, c *storage.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c == nil {
		s.creds = storage.Credentials{}
		return nil
	}

	s.creds = *c
	if c.User != nil {
		u := *c.User
		s.creds.User = &u
	}

	return nil
}

func (s *Store) SetAccessToken(_ context.Context, token string) error {
	return s.update(func(c *storage.Credentials) { c.AccessToken = token })
}

func (s *Store) SetRefreshToken(_ context.Context, token string) error {
	return s.update(func(c *storage.Credentials) { c.RefreshToken = token })
}

// update меняет существующую запись; после Clear записи нет.
func (s *Store) update(mutate func(c *storage.Credentials)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds.Empty() {
		return storage.ErrNotFound
	}

	mutate(&s.creds)

	return nil
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	s.creds = storage.Credentials{}
	s.mu.Unlock()

	return nil
}

var _ storage.Store = (*Store)(nil)
