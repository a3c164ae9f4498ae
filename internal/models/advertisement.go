package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	errs "adboard/pkg/errors"
)

// AdStatus is the advertisement lifecycle state. REMOVED is a sink: no
// transition leaves it.
type AdStatus string

const (
	StatusDraft               AdStatus = "DRAFT"
	StatusOnModeration        AdStatus = "ON_MODERATION"
	StatusRejectedForRevision AdStatus = "REJECTED_FOR_REVISION"
	StatusRemoved             AdStatus = "REMOVED"
	StatusActive              AdStatus = "ACTIVE"
)

func ParseAdStatus(s string) (AdStatus, error) {
	switch AdStatus(s) {
	case StatusDraft, StatusOnModeration, StatusRejectedForRevision, StatusRemoved, StatusActive:
		return AdStatus(s), nil
	}
	return "", errs.NewValidation("models.ParseAdStatus", "unknown advertisement status: "+s, nil)
}

// Editable reports whether the author may change fields in this state.
func (s AdStatus) Editable() bool {
	return s == StatusDraft || s == StatusRejectedForRevision
}

// Terminal reports whether the lifecycle has ended.
func (s AdStatus) Terminal() bool { return s == StatusRemoved }

const (
	minPhotos = 1
	maxPhotos = 10
)

type Advertisement struct {
	OID         string          `json:"oid" db:"oid"`
	Title       string          `json:"title" db:"title"`
	City        string          `json:"city" db:"city"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	Views       int             `json:"views" db:"views"`
	Photos      []string        `json:"photos" db:"photos"`
	Status      AdStatus        `json:"status" db:"status"`
	Author      User            `json:"author"`
	Category    Category        `json:"category"`
}

// NewAdvertisement validates the field invariants and returns a DRAFT owned
// by author.
func NewAdvertisement(title, city, description string, price decimal.Decimal, photos []string, author User, category Category) (*Advertisement, error) {
	const op = "models.NewAdvertisement"

	if err := validateAdFields(op, title, city, description, price, photos); err != nil {
		return nil, err
	}

	return &Advertisement{
		OID:         uuid.NewString(),
		Title:       title,
		City:        city,
		Description: description,
		Price:       price,
		CreatedAt:   time.Now().UTC(),
		Views:       0,
		Photos:      append([]string(nil), photos...),
		Status:      StatusDraft,
		Author:      author,
		Category:    category,
	}, nil
}

func validateAdFields(op, title, city, description string, price decimal.Decimal, photos []string) error {
	if n := utf8.RuneCountInString(title); n < 1 || n > 50 {
		return errs.NewValidation(op, "title must be between 1 and 50 characters", nil)
	}
	if n := utf8.RuneCountInString(city); n < 1 || n > 50 {
		return errs.NewValidation(op, "city must be between 1 and 50 characters", nil)
	}
	if n := utf8.RuneCountInString(description); n < 1 || n > 250 {
		return errs.NewValidation(op, "description must be between 1 and 250 characters", nil)
	}
	if price.IsNegative() {
		return errs.NewValidation(op, "price must not be negative", nil)
	}
	return ValidatePhotos(photos)
}

// ValidatePhotos enforces the 1–10 photo reference invariant.
func ValidatePhotos(photos []string) error {
	if len(photos) < minPhotos || len(photos) > maxPhotos {
		return errs.NewValidation("models.ValidatePhotos",
			"photo count must be between 1 and 10", nil)
	}
	return nil
}

// AdvertisementPatch is a partial field update submitted by the author.
// Status and approval timestamp are never patchable; only the transition
// operations touch them.
type AdvertisementPatch struct {
	Title       *string          `json:"title,omitempty"`
	City        *string          `json:"city,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Photos      []string         `json:"photos,omitempty"`
}

// Apply overlays the patch onto the advertisement, re-validating the merged
// fields. The receiver is untouched on error.
func (a *Advertisement) Apply(patch AdvertisementPatch) error {
	merged := *a
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.City != nil {
		merged.City = *patch.City
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Price != nil {
		merged.Price = *patch.Price
	}
	if patch.Photos != nil {
		merged.Photos = append([]string(nil), patch.Photos...)
	}

	if err := validateAdFields("models.Advertisement.Apply",
		merged.Title, merged.City, merged.Description, merged.Price, merged.Photos); err != nil {
		return err
	}
	*a = merged
	return nil
}

// Submit moves an editable advertisement into the moderation queue.
func (a *Advertisement) Submit() error {
	if !a.Status.Editable() {
		return errs.NewStatusConflict("models.Advertisement.Submit", string(a.Status),
			"only draft or returned advertisements can be submitted for moderation")
	}
	a.Status = StatusOnModeration
	return nil
}

// ApplyDecision performs the moderation transition: approve publishes the
// advertisement and stamps the approval time, reject returns it for
// revision and clears the stamp. REMOVED never transitions.
func (a *Advertisement) ApplyDecision(isApproved bool, now time.Time) error {
	if a.Status.Terminal() {
		return errs.NewStatusConflict("models.Advertisement.ApplyDecision", string(a.Status),
			"removed advertisements cannot be moderated")
	}
	if isApproved {
		a.Status = StatusActive
		at := now.UTC()
		a.ApprovedAt = &at
		return nil
	}
	a.Status = StatusRejectedForRevision
	a.ApprovedAt = nil
	return nil
}

// Remove takes the advertisement off the board. Permitted from ACTIVE,
// DRAFT and REJECTED_FOR_REVISION; a removed ad stays removed.
func (a *Advertisement) Remove() error {
	switch a.Status {
	case StatusActive, StatusDraft, StatusRejectedForRevision:
		a.Status = StatusRemoved
		return nil
	default:
		return errs.NewStatusConflict("models.Advertisement.Remove", string(a.Status),
			"advertisement cannot be removed in its current state")
	}
}

// VisibleTo implements the read-side policy: ACTIVE is public, everything
// else is restricted to the author and privileged roles.
func (a *Advertisement) VisibleTo(actor Actor) bool {
	if a.Status == StatusActive {
		return true
	}
	return actor.ID == a.Author.OID || actor.Role.Privileged()
}
