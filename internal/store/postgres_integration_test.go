package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/vipauth/internal/models"
)

// Integration tests are opt-in and require TEST_POSTGRES_DSN.

func mustPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres unreachable: %v", err)
	}
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	require.NoError(t, s.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE users`)
	require.NoError(t, err)
	return s
}

func TestPostgresStore_CreateFindDuplicate(t *testing.T) {
	s := mustPostgresStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = s.CreateUser(ctx, models.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)

	_, err = s.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_RejectsInvalidRecord(t *testing.T) {
	s := mustPostgresStore(t)

	_, err := s.CreateUser(context.Background(), models.User{Username: "alice"})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}
