package domain

import (
	"time"
)

// =============================================================================
// Spam Rule
// =============================================================================

// RuleMode represents how a spam rule's pattern is applied to message text.
type RuleMode string

const (
	// RuleModeContains matches when the pattern appears within the message on
	// a word boundary (fuzzy tolerance for a curated keyword set).
	RuleModeContains RuleMode = "CONTAINS"

	// RuleModeLone matches only when the whole normalized message equals the
	// normalized pattern.
	RuleModeLone RuleMode = "LONE"
)

// IsValid reports whether m is a known rule mode.
func (m RuleMode) IsValid() bool {
	return m == RuleModeContains || m == RuleModeLone
}

// SpamRule is a user-maintained phrase rule. PatternNorm is the pre-normalized
// form and may be empty, in which case Pattern is normalized at match time.
// A nil Brand means the rule applies to all brands.
type SpamRule struct {
	ID          int64    `json:"id"`
	Pattern     string   `json:"pattern"`
	PatternNorm string   `json:"pattern_norm,omitempty"`
	Mode        RuleMode `json:"mode"`
	Brand       *string  `json:"brand,omitempty"`
	Enabled     bool     `json:"enabled"`

	// Stats
	HitCount  int        `json:"hit_count"`
	LastHitAt *time.Time `json:"last_hit_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BrandValue returns the rule's brand scope or "" when it is unscoped.
func (r *SpamRule) BrandValue() string {
	if r.Brand == nil {
		return ""
	}
	return *r.Brand
}
