package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	base := NewNotFound("svc.Get", "advertisement", "ad-1")
	wrapped := fmt.Errorf("loading listing: %w", base)

	if !Is(wrapped, ErrNotFound) {
		t.Error("wrapped not-found error must match ErrNotFound")
	}
	if Is(wrapped, ErrAccessDenied) {
		t.Error("not-found error must not match ErrAccessDenied")
	}
}

func TestIsDistinguishesKinds(t *testing.T) {
	cases := []struct {
		err    error
		target error
	}{
		{NewNotFound("op", "user", "u1"), ErrNotFound},
		{NewAlreadyExists("op", "category", "dup"), ErrAlreadyExists},
		{NewStatusConflict("op", "REMOVED", "no"), ErrStatusConflict},
		{NewAccessDenied("op", "no"), ErrAccessDenied},
		{NewValidation("op", "bad", nil), ErrValidation},
		{NewStorage("op", "down", nil), ErrStorage},
		{NewExternal("op", "kafka", "down", nil), ErrExternal},
	}
	for _, tc := range cases {
		if !Is(tc.err, tc.target) {
			t.Errorf("%v must match its own kind", tc.err)
		}
	}
	if Is(NewStorage("op", "down", nil), ErrExternal) {
		t.Error("storage error must not match external kind")
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStorage("db.Query", "query failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("storage error must unwrap to its cause")
	}
}

func TestIsNilSafety(t *testing.T) {
	if Is(nil, ErrNotFound) {
		t.Error("nil error matches nothing")
	}
}
