package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"textclub_server/core/domain"

	"github.com/jmoiron/sqlx"
)

// =============================================================================
// Spam Rule Adapter
// =============================================================================

// SpamRuleAdapter implements out.SpamRuleRepository.
type SpamRuleAdapter struct {
	db *sqlx.DB
}

// NewSpamRuleAdapter creates a new SpamRuleAdapter.
func NewSpamRuleAdapter(db *sqlx.DB) *SpamRuleAdapter {
	return &SpamRuleAdapter{db: db}
}

// spamRuleRow represents the database row.
type spamRuleRow struct {
	ID          int64          `db:"id"`
	Pattern     string         `db:"pattern"`
	PatternNorm sql.NullString `db:"pattern_norm"`
	Mode        string         `db:"mode"`
	Brand       sql.NullString `db:"brand"`
	Enabled     bool           `db:"enabled"`
	HitCount    int            `db:"hit_count"`
	LastHitAt   sql.NullTime   `db:"last_hit_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *spamRuleRow) toEntity() *domain.SpamRule {
	rule := &domain.SpamRule{
		ID:        r.ID,
		Pattern:   r.Pattern,
		Mode:      domain.RuleMode(r.Mode),
		Enabled:   r.Enabled,
		HitCount:  r.HitCount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.PatternNorm.Valid {
		rule.PatternNorm = r.PatternNorm.String
	}
	if r.Brand.Valid {
		rule.Brand = &r.Brand.String
	}
	if r.LastHitAt.Valid {
		rule.LastHitAt = &r.LastHitAt.Time
	}
	return rule
}

// ListEnabled retrieves all enabled rules.
func (a *SpamRuleAdapter) ListEnabled(ctx context.Context) ([]*domain.SpamRule, error) {
	var rows []spamRuleRow
	query := `SELECT * FROM spam_rules WHERE enabled = TRUE ORDER BY id`

	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list enabled spam rules: %w", err)
	}

	rules := make([]*domain.SpamRule, len(rows))
	for i, row := range rows {
		rules[i] = row.toEntity()
	}

	return rules, nil
}

// GetByID retrieves a rule by ID.
func (a *SpamRuleAdapter) GetByID(ctx context.Context, id int64) (*domain.SpamRule, error) {
	var row spamRuleRow
	query := `SELECT * FROM spam_rules WHERE id = $1`

	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get spam rule: %w", err)
	}

	return row.toEntity(), nil
}

// List retrieves a page of rules with the total count.
func (a *SpamRuleAdapter) List(ctx context.Context, limit, offset int) ([]*domain.SpamRule, int, error) {
	var total int
	if err := a.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM spam_rules`); err != nil {
		return nil, 0, fmt.Errorf("failed to count spam rules: %w", err)
	}

	var rows []spamRuleRow
	query := `SELECT * FROM spam_rules ORDER BY id LIMIT $1 OFFSET $2`

	if err := a.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list spam rules: %w", err)
	}

	rules := make([]*domain.SpamRule, len(rows))
	for i, row := range rows {
		rules[i] = row.toEntity()
	}

	return rules, total, nil
}

// Create creates a new rule.
func (a *SpamRuleAdapter) Create(ctx context.Context, rule *domain.SpamRule) error {
	query := `
		INSERT INTO spam_rules (pattern, pattern_norm, mode, brand, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := a.db.QueryRowContext(ctx, query,
		rule.Pattern, nullString(rule.PatternNorm), string(rule.Mode),
		nullStringPtr(rule.Brand), rule.Enabled,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create spam rule: %w", err)
	}

	return nil
}

// Update updates a rule.
func (a *SpamRuleAdapter) Update(ctx context.Context, rule *domain.SpamRule) error {
	query := `
		UPDATE spam_rules
		SET pattern = $2, pattern_norm = $3, mode = $4, brand = $5, enabled = $6, updated_at = NOW()
		WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query,
		rule.ID, rule.Pattern, nullString(rule.PatternNorm), string(rule.Mode),
		nullStringPtr(rule.Brand), rule.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to update spam rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Delete deletes a rule.
func (a *SpamRuleAdapter) Delete(ctx context.Context, id int64) error {
	result, err := a.db.ExecContext(ctx, `DELETE FROM spam_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete spam rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// IncrementHitCount bumps a rule's hit counter and last-hit timestamp.
func (a *SpamRuleAdapter) IncrementHitCount(ctx context.Context, id int64) error {
	query := `
		UPDATE spam_rules
		SET hit_count = hit_count + 1, last_hit_at = NOW()
		WHERE id = $1`

	if _, err := a.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment spam rule hit count: %w", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
