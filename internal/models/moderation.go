package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	errs "adboard/pkg/errors"
)

// Moderation is one recorded approve/reject judgment. Records are
// append-only: every decision creates a new one, none is ever updated.
type Moderation struct {
	OID             string    `json:"oid" db:"oid"`
	AdvertisementID string    `json:"advertisement_id" db:"advertisement_id"`
	ModeratorID     string    `json:"moderator_id" db:"moderator_id"`
	IsApproved      bool      `json:"is_approved" db:"is_approved"`
	RejectionReason string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// NewModeration validates a decision before anything is persisted. A
// rejection must carry a non-empty reason of at most 250 characters.
func NewModeration(advertisementID, moderatorID string, isApproved bool, rejectionReason string) (*Moderation, error) {
	const op = "models.NewModeration"

	if advertisementID == "" {
		return nil, errs.NewValidation(op, "advertisement id is required", nil)
	}
	if moderatorID == "" {
		return nil, errs.NewValidation(op, "moderator id is required", nil)
	}
	if !isApproved && strings.TrimSpace(rejectionReason) == "" {
		return nil, errs.NewValidation(op, "a rejection requires a reason", nil)
	}
	if utf8.RuneCountInString(rejectionReason) > 250 {
		return nil, errs.NewValidation(op, "rejection reason must be at most 250 characters", nil)
	}

	return &Moderation{
		OID:             uuid.NewString(),
		AdvertisementID: advertisementID,
		ModeratorID:     moderatorID,
		IsApproved:      isApproved,
		RejectionReason: rejectionReason,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
