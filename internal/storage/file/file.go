// file — хранилище учётных данных в YAML-файле на диске оператора.
// Запись атомарная: временный файл в том же каталоге + rename, права 0600.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
	"gopkg.in/yaml.v3"
)

type Store struct {
	mu   sync.Mutex
	path string
}

// New не трогает диск: файл появится при первом Save.
func New(path string) (*Store, error) {
	const op = "storage/file/New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	return &Store{path: path}, nil
}

func (s *Store) Credentials(context.Context) (*storage.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *Store) Save(_ context.Context, c *storage.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Empty() {
		return s.remove()
	}

	return s.write(c)
}

func (s *Store) SetAccessToken(_ context.Context, token string) error {
	return s.update(func(c *storage.Credentials) { c.AccessToken = token })
}

func (s *Store) SetRefreshToken(_ context.Context, token string) error {
	return s.update(func(c *storage.Credentials) { c.RefreshToken = token })
}

func (s *Store) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove()
}

func (s *Store) update(mutate func(c *storage.Credentials)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read()
	if err != nil {
		return err
	}

	mutate(c)
	return s.write(c)
}

func (s *Store) read() (*storage.Credentials, error) {
	const op = "storage/file/read"

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var c storage.Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: decode %q: %w", op, s.path, err)
	}

	if c.Empty() {
		return nil, storage.ErrNotFound
	}

	return &c, nil
}

func (s *Store) write(c *storage.Credentials) error {
	const op = "storage/file/write"

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) remove() error {
	const op = "storage/file/remove"

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

var _ storage.Store = (*Store)(nil)
