package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/equiptrack-gateway/internal/storage"
)

func setupMock(t *testing.T) (*Store, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	t.Cleanup(func() { require.NoError(t, mock.ExpectationsWereMet()) })

	return NewWithClient(db, "mock:creds"), mock
}

func TestMock_SetTokens_RunScript(t *testing.T) {
	t.Parallel()

	s, mock := setupMock(t)
	ctx := context.Background()

	sha := setFieldScript.Hash()
	keys := []string{"mock:creds"}

	mock.ExpectEvalSha(sha, keys, fieldAccess, "a2").SetVal(int64(1))
	require.NoError(t, s.SetAccessToken(ctx, "a2"))

	// Пустой токен уходит в скрипт как есть: поле удаляется, а не пишется "".
	mock.ExpectEvalSha(sha, keys, fieldRefresh, "").SetVal(int64(1))
	require.NoError(t, s.SetRefreshToken(ctx, ""))

	// Хэша нет: скрипт ничего не пишет.
	mock.ExpectEvalSha(sha, keys, fieldAccess, "a3").SetVal(int64(0))
	require.ErrorIs(t, s.SetAccessToken(ctx, "a3"), storage.ErrNotFound)
}

func TestMock_ErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	s, mock := setupMock(t)
	ctx := context.Background()
	boom := errors.New("READONLY You can't write against a read only replica")

	mock.ExpectHGetAll("mock:creds").SetErr(boom)
	_, err := s.Credentials(ctx)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, storage.ErrNotFound)
	require.Contains(t, err.Error(), "storage/redis/Credentials")

	mock.ExpectEvalSha(setFieldScript.Hash(), []string{"mock:creds"}, fieldAccess, "a2").SetErr(boom)
	err = s.SetAccessToken(ctx, "a2")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "storage/redis/SetAccessToken")

	mock.ExpectDel("mock:creds").SetErr(boom)
	err = s.Clear(ctx)
	require.ErrorIs(t, err, boom)
}

func TestMock_EmptyHashIsNotFound(t *testing.T) {
	t.Parallel()

	s, mock := setupMock(t)

	mock.ExpectHGetAll("mock:creds").SetVal(map[string]string{})
	_, err := s.Credentials(context.Background())
	require.ErrorIs(t, err, storage.ErrNotFound)
}
