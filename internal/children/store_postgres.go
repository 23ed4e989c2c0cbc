package children

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

const childColumns = `id, first_name, last_name, birth_date, gender, story, image_ref, status, created_at, updated_at`

func (s *PostgresStore) Save(ctx context.Context, child Child) error {
	query := `
		INSERT INTO children (` + childColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
		    birth_date = EXCLUDED.birth_date, gender = EXCLUDED.gender,
		    story = EXCLUDED.story, image_ref = EXCLUDED.image_ref,
		    status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(child.ID), child.FirstName, child.LastName, child.BirthDate,
		child.Gender, child.Story, child.ImageRef, string(child.Status),
		child.CreatedAt, child.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert child: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, childID id.ChildID) (Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = $1`
	return scanChild(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(childID)))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE status = $1 ORDER BY created_at`
	rows, err := s.q(ctx).QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()

	var out []Child
	for rows.Next() {
		child, err := scanChildRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetStatus(ctx context.Context, childID id.ChildID, status Status) error {
	query := `UPDATE children SET status = $2, updated_at = now() WHERE id = $1`
	res, err := s.q(ctx).ExecContext(ctx, query, uuid.UUID(childID), string(status))
	if err != nil {
		return fmt.Errorf("update child status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update child status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row *sql.Row) (Child, error) {
	child, err := scanChildRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Child{}, sentinel.ErrNotFound
	}
	return child, err
}

func scanChildRow(row rowScanner) (Child, error) {
	var (
		c      Child
		cid    uuid.UUID
		status string
	)
	err := row.Scan(&cid, &c.FirstName, &c.LastName, &c.BirthDate, &c.Gender,
		&c.Story, &c.ImageRef, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Child{}, err
		}
		return Child{}, fmt.Errorf("scan child: %w", err)
	}
	c.ID = id.ChildID(cid)
	c.Status = Status(status)
	return c, nil
}
