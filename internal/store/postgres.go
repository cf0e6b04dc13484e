package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/vipauth/internal/models"
)

const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
)

// PostgresStore handles user records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username      VARCHAR(50)  UNIQUE NOT NULL CHECK (username <> ''),
			password_hash VARCHAR(255) NOT NULL CHECK (password_hash <> ''),
			created_at    TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	out := models.User{PasswordHash: u.PasswordHash}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, username, created_at`,
		u.Username, u.PasswordHash,
	).Scan(&out.ID, &out.Username, &out.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return &out, nil
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return models.ErrDuplicateUsername
		case pgNotNullViolation, pgCheckViolation:
			// CHECK violations carry the constraint name but no column.
			field := pgErr.ColumnName
			if field == "" {
				field = pgErr.ConstraintName
			}
			return &models.ValidationError{Fields: map[string]string{field: pgErr.Message}}
		}
	}
	return fmt.Errorf("create user: %w", err)
}
