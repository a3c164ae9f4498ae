package service

import (
	"context"
	"testing"

	"adboard/internal/models"
	"adboard/internal/testutil"
	errs "adboard/pkg/errors"
)

type staticIssuer struct{}

func (staticIssuer) Issue(*models.User) (TokenPair, error) {
	return TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}, nil
}

func registerInput() RegisterInput {
	return RegisterInput{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
		Phone:     "79991234567",
		Password:  "correct-horse",
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewUserService(repo, staticIssuer{}, nil)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored := repo.Users[user.OID]
	if stored.PasswordHash == "" || stored.PasswordHash == "correct-horse" {
		t.Error("password must be stored as a hash")
	}
	if stored.Role != models.RoleUser {
		t.Errorf("role = %s, want %s", stored.Role, models.RoleUser)
	}
}

func TestRegisterNormalizesPhone(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewUserService(repo, staticIssuer{}, nil)

	input := registerInput()
	input.Phone = "+7 (999) 123-45-67"
	user, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Phone != "79991234567" {
		t.Errorf("phone = %q, want normalized digits", user.Phone)
	}
}

func TestRegisterDuplicateEmailOrPhone(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewUserService(repo, staticIssuer{}, nil)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatal(err)
	}

	dupEmail := registerInput()
	dupEmail.Phone = "79990000002"
	if _, err := svc.Register(context.Background(), dupEmail); !errs.Is(err, errs.ErrAlreadyExists) {
		t.Errorf("duplicate email: got %v, want already exists", err)
	}

	dupPhone := registerInput()
	dupPhone.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), dupPhone); !errs.Is(err, errs.ErrAlreadyExists) {
		t.Errorf("duplicate phone: got %v, want already exists", err)
	}
}

func TestRegisterPasswordLength(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewUserService(repo, staticIssuer{}, nil)

	input := registerInput()
	input.Password = "short"
	if _, err := svc.Register(context.Background(), input); !errs.Is(err, errs.ErrValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewUserService(repo, staticIssuer{}, nil)

	registered, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatal(err)
	}

	user, pair, err := svc.Authenticate(context.Background(), "ivan@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.OID != registered.OID {
		t.Error("authenticated wrong user")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("token pair not issued")
	}

	if _, _, err := svc.Authenticate(context.Background(), "ivan@example.com", "wrong"); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("wrong password: got %v, want access denied", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct-horse"); !errs.Is(err, errs.ErrAccessDenied) {
		t.Errorf("unknown email: got %v, want access denied", err)
	}
}

func TestAuthenticateBlockedAccount(t *testing.T) {
	repo := testutil.NewInMemoryRepository()
	svc := NewUserService(repo, staticIssuer{}, nil)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatal(err)
	}
	blocked := repo.Users[user.OID]
	blocked.Status = models.UserStatusBlocked
	repo.SeedUser(blocked)

	if _, _, err := svc.Authenticate(context.Background(), "ivan@example.com", "correct-horse"); !errs.Is(err, errs.ErrAccessDenied) {
		t.Fatalf("got %v, want access denied", err)
	}
}
