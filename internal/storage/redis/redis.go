// redis — хранилище учётных данных в Redis.
// Нужен, когда несколько реплик gateway обслуживают одну сессию оператора:
// refresh, сделанный одной репликой, сразу виден остальным.
//
// Данные лежат одним Redis Hash с полями access / refresh / username,
// поэтому Clear — это один DEL, и все три записи исчезают разом.
package redis

import (
	"context"
	"fmt"

	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultKey = "equiptrack:credentials"

	fieldAccess   = "access"
	fieldRefresh  = "refresh"
	fieldUsername = "username"
)

// setFieldScript меняет одно поле только у существующего хэша: refresh,
// завершившийся после Clear, не должен воскресить сессию.
// Пустое значение удаляет поле.
var setFieldScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
if ARGV[2] == '' then
	redis.call('HDEL', KEYS[1], ARGV[1])
else
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
end
return 1
`)

type Store struct {
	rdb *goredis.Client
	key string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и делает fail-fast Ping. Если key пустой — используется "equiptrack:credentials".
func New(ctx context.Context, redisURL, key string) (*Store, error) {
	const op = "storage/redis/New"

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := goredis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewWithClient(rdb, key), nil
}

// NewWithClient оборачивает готовый клиент (тесты, общий пул соединений).
func NewWithClient(rdb *goredis.Client, key string) *Store {
	if key == "" {
		key = defaultKey
	}

	return &Store{rdb: rdb, key: key}
}

func (s *Store) Credentials(ctx context.Context) (*storage.Credentials, error) {
	const op = "storage/redis/Credentials"

	m, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &storage.Credentials{
		AccessToken:  m[fieldAccess],
		RefreshToken: m[fieldRefresh],
	}

	if u := m[fieldUsername]; u != "" {
		c.User = &storage.Identity{Username: u}
	}

	if c.Empty() {
		return nil, storage.ErrNotFound
	}

	return c, nil
}

func (s *Store) Save(ctx context.Context, c *storage.Credentials) error {
	const op = "storage/redis/Save"

	kv := map[string]string{}
	if c != nil {
		if c.AccessToken != "" {
			kv[fieldAccess] = c.AccessToken
		}
		if c.RefreshToken != "" {
			kv[fieldRefresh] = c.RefreshToken
		}
		if c.User != nil && c.User.Username != "" {
			kv[fieldUsername] = c.User.Username
		}
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(kv) > 0 {
		pipe.HSet(ctx, s.key, kv)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.setField(ctx, "storage/redis/SetAccessToken", fieldAccess, token)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.setField(ctx, "storage/redis/SetRefreshToken", fieldRefresh, token)
}

func (s *Store) Clear(ctx context.Context) error {
	const op = "storage/redis/Clear"

	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиент Redis.
func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) setField(ctx context.Context, op, field, value string) error {
	n, err := setFieldScript.Run(ctx, s.rdb, []string{s.key}, field, value).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

var _ storage.Store = (*Store)(nil)
