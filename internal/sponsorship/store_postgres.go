package sponsorship

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
	txcontext "amparo/pkg/platform/tx"
)

// PostgresStore persists sponsorships. The exclusivity invariants are enforced
// by partial unique indexes on (sponsor_id) and (child_id) WHERE status =
// 'ACTIVE'; a violating write surfaces as sentinel.ErrConflict so the loser of
// a race sees a retryable conflict, never a double assignment.
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

const columns = `id, sponsor_id, child_id, status, started_at, ended_at, notes, updated_at`

func (s *PostgresStore) Create(ctx context.Context, sp Sponsorship) error {
	query := `
		INSERT INTO sponsorships (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(sp.ID), uuid.UUID(sp.SponsorID), uuid.UUID(sp.ChildID),
		string(sp.Status), sp.StartedAt, sp.EndedAt, sp.Notes, sp.UpdatedAt,
	)
	if err != nil {
		return translatePQ(err, "insert sponsorship")
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, sp Sponsorship) error {
	query := `
		UPDATE sponsorships
		SET status = $2, ended_at = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(sp.ID), string(sp.Status), sp.EndedAt, sp.Notes, sp.UpdatedAt,
	)
	if err != nil {
		return translatePQ(err, "update sponsorship")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sponsorship: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, sid id.SponsorshipID) (Sponsorship, error) {
	query := `SELECT ` + columns + ` FROM sponsorships WHERE id = $1`
	return scanOne(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(sid)))
}

func (s *PostgresStore) ActiveBySponsor(ctx context.Context, sponsorID id.UserID) (Sponsorship, error) {
	query := `SELECT ` + columns + ` FROM sponsorships WHERE sponsor_id = $1 AND status = 'ACTIVE'`
	return scanOne(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(sponsorID)))
}

func (s *PostgresStore) ActiveByChild(ctx context.Context, childID id.ChildID) (Sponsorship, error) {
	query := `SELECT ` + columns + ` FROM sponsorships WHERE child_id = $1 AND status = 'ACTIVE'`
	return scanOne(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(childID)))
}

func (s *PostgresStore) ListBySponsor(ctx context.Context, sponsorID id.UserID) ([]Sponsorship, error) {
	query := `SELECT ` + columns + ` FROM sponsorships WHERE sponsor_id = $1 ORDER BY started_at`
	rows, err := s.q(ctx).QueryContext(ctx, query, uuid.UUID(sponsorID))
	if err != nil {
		return nil, fmt.Errorf("query sponsorships: %w", err)
	}
	defer rows.Close()

	var out []Sponsorship
	for rows.Next() {
		sp, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// translatePQ maps a unique violation (23505) to the conflict sentinel; other
// driver errors pass through wrapped.
func translatePQ(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (Sponsorship, error) {
	sp, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Sponsorship{}, sentinel.ErrNotFound
	}
	return sp, err
}

func scanRow(row rowScanner) (Sponsorship, error) {
	var (
		sp      Sponsorship
		sid     uuid.UUID
		sponsor uuid.UUID
		child   uuid.UUID
		status  string
		endedAt sql.NullTime
	)
	err := row.Scan(&sid, &sponsor, &child, &status, &sp.StartedAt, &endedAt, &sp.Notes, &sp.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Sponsorship{}, err
		}
		return Sponsorship{}, fmt.Errorf("scan sponsorship: %w", err)
	}
	sp.ID = id.SponsorshipID(sid)
	sp.SponsorID = id.UserID(sponsor)
	sp.ChildID = id.ChildID(child)
	sp.Status = Status(status)
	if endedAt.Valid {
		t := endedAt.Time
		sp.EndedAt = &t
	}
	return sp, nil
}
