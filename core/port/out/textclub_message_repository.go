// Package out defines outbound ports (driven ports) for the application.
// These interfaces represent dependencies that the application needs.
package out

import (
	"context"

	"textclub_server/core/domain"

	"github.com/google/uuid"
)

// =============================================================================
// Message Repository (PostgreSQL)
// =============================================================================

// MessageRepository defines the outbound port for message persistence.
//
// All status writes are conditional on the expected prior status. The capture
// pipeline shares the READY pool with an independent promotion pipeline and
// relies on compare-and-swap semantics instead of locks.
type MessageRepository interface {
	// Reads
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	CountByStatus(ctx context.Context, status domain.MessageStatus) (int, error)
	FindReadyOrderedByCreatedDesc(ctx context.Context, limit int) ([]*domain.Message, error)

	// Conditional writes
	ConditionalBulkUpdateStatus(ctx context.Context, ids []uuid.UUID, from, to domain.MessageStatus) (int64, error)
	ConditionalUpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.MessageStatus) (bool, error)
	ConditionalUpdatePreviewMatches(ctx context.Context, id uuid.UUID, expected domain.MessageStatus, matches []string) (bool, error)
}

// =============================================================================
// Spam Rule Repository (PostgreSQL)
// =============================================================================

// SpamRuleRepository defines the outbound port for spam rule persistence.
// The capture pipeline only reads enabled rules; CRUD serves the admin surface.
type SpamRuleRepository interface {
	ListEnabled(ctx context.Context) ([]*domain.SpamRule, error)

	// CRUD
	GetByID(ctx context.Context, id int64) (*domain.SpamRule, error)
	List(ctx context.Context, limit, offset int) ([]*domain.SpamRule, int, error)
	Create(ctx context.Context, rule *domain.SpamRule) error
	Update(ctx context.Context, rule *domain.SpamRule) error
	Delete(ctx context.Context, id int64) error

	// Stats
	IncrementHitCount(ctx context.Context, id int64) error
}
