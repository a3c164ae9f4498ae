// Package events defines the domain events published after moderation
// outcomes and the in-process bus that dispatches them.
package events

import (
	"encoding/json"
	"time"
)

// Event is the base interface for advertisement lifecycle events.
// Keep payloads small, use JSON-friendly fields.
type Event interface {
	Type() string
	AdvertisementID() string
	Timestamp() time.Time
	MarshalData() ([]byte, error)
}

// Base contains common event metadata.
type Base struct {
	Ts   time.Time `json:"ts"`
	AdID string    `json:"advertisement_id"`
}

func (b Base) Timestamp() time.Time    { return b.Ts }
func (b Base) AdvertisementID() string { return b.AdID }

// --- Concrete events ---

const (
	TypeSubmitted = "advertisement.submitted"
	TypeModerated = "advertisement.moderated"
	TypeRemoved   = "advertisement.removed"
)

// AdvertisementSubmitted is emitted when an author sends a draft to the
// moderation queue.
type AdvertisementSubmitted struct {
	Base
	AuthorID string `json:"author_id"`
}

func (e AdvertisementSubmitted) Type() string                 { return TypeSubmitted }
func (e AdvertisementSubmitted) MarshalData() ([]byte, error) { return json.Marshal(e) }

// AdvertisementModerated carries the outcome of one moderation decision.
// IsApproved true means the ad went ACTIVE; false means it was returned
// for revision.
type AdvertisementModerated struct {
	Base
	ModerationID string `json:"moderation_id"`
	ModeratorID  string `json:"moderator_id"`
	IsApproved   bool   `json:"is_approved"`
	Reason       string `json:"reason,omitempty"`
}

func (e AdvertisementModerated) Type() string                 { return TypeModerated }
func (e AdvertisementModerated) MarshalData() ([]byte, error) { return json.Marshal(e) }

// AdvertisementRemoved is emitted when the author takes the ad down.
type AdvertisementRemoved struct {
	Base
	AuthorID string `json:"author_id"`
}

func (e AdvertisementRemoved) Type() string                 { return TypeRemoved }
func (e AdvertisementRemoved) MarshalData() ([]byte, error) { return json.Marshal(e) }
