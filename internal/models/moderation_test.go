package models

import (
	"strings"
	"testing"

	errs "adboard/pkg/errors"
)

func TestNewModerationRejectRequiresReason(t *testing.T) {
	if _, err := NewModeration("ad-1", "mod-1", false, ""); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("empty reason: got %v, want validation error", err)
	}
	if _, err := NewModeration("ad-1", "mod-1", false, "   "); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("blank reason: got %v, want validation error", err)
	}

	m, err := NewModeration("ad-1", "mod-1", false, "price looks fake")
	if err != nil {
		t.Fatalf("NewModeration: %v", err)
	}
	if m.IsApproved {
		t.Error("decision must record the rejection")
	}
}

func TestNewModerationApproveWithoutReason(t *testing.T) {
	m, err := NewModeration("ad-1", "mod-1", true, "")
	if err != nil {
		t.Fatalf("NewModeration: %v", err)
	}
	if !m.IsApproved || m.RejectionReason != "" {
		t.Errorf("unexpected decision: %+v", m)
	}
}

func TestNewModerationReasonLength(t *testing.T) {
	long := strings.Repeat("r", 251)
	if _, err := NewModeration("ad-1", "mod-1", false, long); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("long reason: got %v, want validation error", err)
	}
}

func TestNewModerationRequiresIDs(t *testing.T) {
	if _, err := NewModeration("", "mod-1", true, ""); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("missing advertisement id: got %v, want validation error", err)
	}
	if _, err := NewModeration("ad-1", "", true, ""); !errs.Is(err, errs.ErrValidation) {
		t.Errorf("missing moderator id: got %v, want validation error", err)
	}
}
