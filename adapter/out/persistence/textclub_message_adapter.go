// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"textclub_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// =============================================================================
// Message Adapter
// =============================================================================

// MessageAdapter implements out.MessageRepository.
type MessageAdapter struct {
	db *sqlx.DB
}

// NewMessageAdapter creates a new MessageAdapter.
func NewMessageAdapter(db *sqlx.DB) *MessageAdapter {
	return &MessageAdapter{db: db}
}

// messageRow represents the database row.
type messageRow struct {
	ID             uuid.UUID      `db:"id"`
	Brand          sql.NullString `db:"brand"`
	Text           sql.NullString `db:"text"`
	Status         string         `db:"status"`
	PreviewMatches pq.StringArray `db:"preview_matches"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *messageRow) toEntity() *domain.Message {
	msg := &domain.Message{
		ID:             r.ID,
		Status:         domain.MessageStatus(r.Status),
		PreviewMatches: []string(r.PreviewMatches),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Brand.Valid {
		msg.Brand = &r.Brand.String
	}
	if r.Text.Valid {
		msg.Text = &r.Text.String
	}
	return msg
}

// GetByID retrieves a message by ID.
func (a *MessageAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var row messageRow
	query := `SELECT * FROM messages WHERE id = $1`

	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return row.toEntity(), nil
}

// CountByStatus counts messages in the given status.
func (a *MessageAdapter) CountByStatus(ctx context.Context, status domain.MessageStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE status = $1`

	if err := a.db.GetContext(ctx, &count, query, string(status)); err != nil {
		return 0, fmt.Errorf("failed to count messages by status: %w", err)
	}

	return count, nil
}

// FindReadyOrderedByCreatedDesc retrieves the newest READY messages up to limit.
func (a *MessageAdapter) FindReadyOrderedByCreatedDesc(ctx context.Context, limit int) ([]*domain.Message, error) {
	var rows []messageRow
	query := `SELECT * FROM messages WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	if err := a.db.SelectContext(ctx, &rows, query, string(domain.StatusReady), limit); err != nil {
		return nil, fmt.Errorf("failed to list ready messages: %w", err)
	}

	messages := make([]*domain.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toEntity()
	}

	return messages, nil
}

// ConditionalBulkUpdateStatus moves every listed message from one status to
// another in a single statement. Rows already moved by a concurrent writer
// fail the status predicate and are skipped; the returned count is the number
// of rows actually updated.
func (a *MessageAdapter) ConditionalBulkUpdateStatus(ctx context.Context, ids []uuid.UUID, from, to domain.MessageStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE messages
		SET status = $1, updated_at = NOW()
		WHERE id = ANY($2) AND status = $3`

	result, err := a.db.ExecContext(ctx, query, string(to), pq.Array(ids), string(from))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update message status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected, nil
}

// ConditionalUpdateStatus moves a single message from one status to another.
// Returns false without error when the row no longer holds the expected
// status.
func (a *MessageAdapter) ConditionalUpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.MessageStatus) (bool, error) {
	query := `
		UPDATE messages
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	result, err := a.db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update message status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// ConditionalUpdatePreviewMatches writes the provenance list, guarded by the
// expected status so a message pulled back out of review keeps a clean slate.
func (a *MessageAdapter) ConditionalUpdatePreviewMatches(ctx context.Context, id uuid.UUID, expected domain.MessageStatus, matches []string) (bool, error) {
	query := `
		UPDATE messages
		SET preview_matches = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	result, err := a.db.ExecContext(ctx, query, pq.Array(matches), id, string(expected))
	if err != nil {
		return false, fmt.Errorf("failed to update preview matches: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
