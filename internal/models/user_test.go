package models

import (
	"testing"

	errs "adboard/pkg/errors"
)

func TestNewUserDefaults(t *testing.T) {
	u, err := NewUser("Ivan", "Petrov", nil, "ivan@example.com", "79991234567", nil)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.Role != RoleUser {
		t.Errorf("role = %s, want %s", u.Role, RoleUser)
	}
	if u.Status != UserStatusPending {
		t.Errorf("status = %s, want %s", u.Status, UserStatusPending)
	}
}

func TestNewUserNameValidation(t *testing.T) {
	cases := []struct {
		name   string
		first  string
		wantOK bool
	}{
		{"latin capitalized", "Ivan", true},
		{"cyrillic capitalized", "Иван", true},
		{"lowercase", "ivan", false},
		{"two words", "Ivan Ivan", false},
		{"digits", "Ivan2", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.first, "Petrov", nil, "ivan@example.com", "79991234567", nil)
			if tc.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.wantOK && !errs.Is(err, errs.ErrValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestNewUserPhoneValidation(t *testing.T) {
	cases := []struct {
		name   string
		phone  string
		wantOK bool
	}{
		{"starts with 7", "79991234567", true},
		{"starts with 8", "89991234567", true},
		{"starts with 9", "99991234567", false},
		{"too short", "7999123456", false},
		{"too long", "799912345678", false},
		{"non digits", "7999123456a", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser("Ivan", "Petrov", nil, "ivan@example.com", tc.phone, nil)
			if tc.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.wantOK && !errs.Is(err, errs.ErrValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestNewUserEmailValidation(t *testing.T) {
	for _, bad := range []string{"", "plain", "a@b", "a b@c.d", "@c.d"} {
		if _, err := NewUser("Ivan", "Petrov", nil, bad, "79991234567", nil); !errs.Is(err, errs.ErrValidation) {
			t.Errorf("email %q: got %v, want validation error", bad, err)
		}
	}
}
