package logbook

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "amparo/pkg/domain"
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
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO log_entries (id, sponsorship_id, author_id, title, body, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(entry.ID), uuid.UUID(entry.SponsorshipID), uuid.UUID(entry.AuthorID),
		entry.Title, entry.Body, string(entry.Category), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySponsorship(ctx context.Context, sid id.SponsorshipID) ([]Entry, error) {
	query := `
		SELECT id, sponsorship_id, author_id, title, body, category, created_at
		FROM log_entries
		WHERE sponsorship_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, uuid.UUID(sid))
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			eid      uuid.UUID
			spid     uuid.UUID
			author   uuid.UUID
			category string
		)
		if err := rows.Scan(&eid, &spid, &author, &e.Title, &e.Body, &category, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.ID = id.EntryID(eid)
		e.SponsorshipID = id.SponsorshipID(spid)
		e.AuthorID = id.UserID(author)
		e.Category = Category(category)
		out = append(out, e)
	}
	return out, rows.Err()
}
