package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
	txcontext "amparo/pkg/platform/tx"
)

// PostgresStore persists accounts in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, user User) error {
	query := `
		INSERT INTO users (id, name, email, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email,
		    role = EXCLUDED.role, active = EXCLUDED.active
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Name, user.Email, string(user.Role), user.Active, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (User, error) {
	query := `
		SELECT id, name, email, role, active, created_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) ListByRole(ctx context.Context, role id.Role) ([]User, error) {
	query := `
		SELECT id, name, email, role, active, created_at
		FROM users
		WHERE role = $1 AND active
		ORDER BY created_at
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("query users by role: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var (
			u   User
			uid uuid.UUID
			r   string
		)
		if err := rows.Scan(&uid, &u.Name, &u.Email, &r, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.ID = id.UserID(uid)
		u.Role = id.Role(r)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) scanUser(row *sql.Row) (User, error) {
	var (
		u   User
		uid uuid.UUID
		r   string
	)
	err := row.Scan(&uid, &u.Name, &u.Email, &r, &u.Active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(uid)
	u.Role = id.Role(r)
	return u, nil
}
