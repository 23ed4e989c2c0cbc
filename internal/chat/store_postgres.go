package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, msg Message) error {
	query := `
		INSERT INTO chat_messages (id, sponsorship_id, sender_id, sender_role, body, read, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(msg.ID), uuid.UUID(msg.SponsorshipID), uuid.UUID(msg.SenderID),
		string(msg.SenderRole), msg.Body, msg.Read, msg.ReadAt, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySponsorship(ctx context.Context, sid id.SponsorshipID, order Order) ([]Message, error) {
	direction := "ASC"
	if order == OrderDesc {
		direction = "DESC"
	}
	query := `
		SELECT id, sponsorship_id, sender_id, sender_role, body, read, read_at, created_at
		FROM chat_messages
		WHERE sponsorship_id = $1
		ORDER BY created_at ` + direction
	rows, err := s.q(ctx).QueryContext(ctx, query, uuid.UUID(sid))
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m      Message
			mid    uuid.UUID
			spid   uuid.UUID
			sender uuid.UUID
			role   string
			readAt sql.NullTime
		)
		if err := rows.Scan(&mid, &spid, &sender, &role, &m.Body, &m.Read, &readAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.ID = id.MessageID(mid)
		m.SponsorshipID = id.SponsorshipID(spid)
		m.SenderID = id.UserID(sender)
		m.SenderRole = id.Role(role)
		if readAt.Valid {
			t := readAt.Time
			m.ReadAt = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, sid id.SponsorshipID, senderRole id.Role, readAt time.Time) (int, error) {
	// Monotonic by construction: only unread rows are touched.
	query := `
		UPDATE chat_messages
		SET read = TRUE, read_at = $3
		WHERE sponsorship_id = $1 AND sender_role = $2 AND NOT read
	`
	res, err := s.q(ctx).ExecContext(ctx, query, uuid.UUID(sid), string(senderRole), readAt)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) CountUnread(ctx context.Context, sid *id.SponsorshipID, senderRole id.Role) (int, error) {
	var row *sql.Row
	if sid != nil {
		row = s.q(ctx).QueryRowContext(ctx, `
			SELECT count(*) FROM chat_messages
			WHERE sponsorship_id = $1 AND sender_role = $2 AND NOT read
		`, uuid.UUID(*sid), string(senderRole))
	} else {
		row = s.q(ctx).QueryRowContext(ctx, `
			SELECT count(*) FROM chat_messages
			WHERE sender_role = $1 AND NOT read
		`, string(senderRole))
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}
