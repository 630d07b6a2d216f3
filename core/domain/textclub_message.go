// Package domain contains the core entities of the text club service.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Message Status
// =============================================================================

// MessageStatus represents the lifecycle state of an inbound message.
type MessageStatus string

const (
	// StatusReady means the message is awaiting classification.
	StatusReady MessageStatus = "READY"

	// StatusSpamReview means the message was classified as likely spam and is
	// held for human review.
	StatusSpamReview MessageStatus = "SPAM_REVIEW"

	// StatusPromoted means a separate pipeline converted the message into
	// actionable work. Terminal from the capture pipeline's perspective.
	StatusPromoted MessageStatus = "PROMOTED"

	// StatusArchived means the message was resolved without action.
	StatusArchived MessageStatus = "ARCHIVED"
)

// IsValid reports whether s is a known status.
func (s MessageStatus) IsValid() bool {
	switch s {
	case StatusReady, StatusSpamReview, StatusPromoted, StatusArchived:
		return true
	}
	return false
}

// statusTransitions is the directed graph of legal status edges.
var statusTransitions = map[MessageStatus][]MessageStatus{
	StatusReady:      {StatusSpamReview, StatusPromoted, StatusArchived},
	StatusSpamReview: {StatusReady, StatusArchived},
	StatusPromoted:   {},
	StatusArchived:   {},
}

// ValidateTransition checks whether from -> to is a legal status transition.
// Callers must still guard the write itself with a conditional update: between
// validation and write another process may have moved the record.
func ValidateTransition(from, to MessageStatus) error {
	if !from.IsValid() {
		return fmt.Errorf("unknown status %q", from)
	}
	if !to.IsValid() {
		return fmt.Errorf("unknown target status %q", to)
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", from, to)
}

// =============================================================================
// Message
// =============================================================================

// Message is a unit of inbound customer text awaiting classification.
// Brand and Text are nullable: ingestion accepts partial records.
type Message struct {
	ID             uuid.UUID     `json:"id"`
	Brand          *string       `json:"brand,omitempty"`
	Text           *string       `json:"text,omitempty"`
	Status         MessageStatus `json:"status"`
	PreviewMatches []string      `json:"preview_matches,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// BrandValue returns the brand or "" when unset.
func (m *Message) BrandValue() string {
	if m.Brand == nil {
		return ""
	}
	return *m.Brand
}

// TextValue returns the message body or "" when unset.
func (m *Message) TextValue() string {
	if m.Text == nil {
		return ""
	}
	return *m.Text
}
