package auth

import (
	"testing"
	"time"

	"adboard/internal/models"
	errs "adboard/pkg/errors"
)

func testUser() *models.User {
	return &models.User{
		OID:   "user-1",
		Email: "ivan@example.com",
		Role:  models.RoleUser,
	}
}

func TestIssueAndVerifyAccess(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	pair, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type = %q", pair.TokenType)
	}

	actor, err := m.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if actor.ID != "user-1" || actor.Role != models.RoleUser {
		t.Errorf("actor = %+v", actor)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	pair, err := m.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.VerifyAccess(pair.RefreshToken); !errs.Is(err, errs.ErrAccessDenied) {
		t.Fatalf("got %v, want access denied", err)
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	pair, err := m.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := m.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	actor, err := m.VerifyAccess(fresh.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess on refreshed token: %v", err)
	}
	if actor.ID != "user-1" {
		t.Errorf("actor id = %q", actor.ID)
	}

	// an access token cannot be used to refresh
	if _, err := m.Refresh(pair.AccessToken); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("got %v, want access denied", err)
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	expired := NewManager("test-secret", -time.Minute, 24*time.Hour)
	pair, err := expired.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := expired.VerifyAccess(pair.AccessToken); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("expired token: got %v, want access denied", err)
	}

	other := NewManager("other-secret", 15*time.Minute, 24*time.Hour)
	good := NewManager("test-secret", 15*time.Minute, 24*time.Hour)
	pair, err = other.Issue(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := good.VerifyAccess(pair.AccessToken); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("foreign token: got %v, want access denied", err)
	}
	if _, err := good.VerifyAccess("not-a-token"); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("garbage token: got %v, want access denied", err)
	}
}
