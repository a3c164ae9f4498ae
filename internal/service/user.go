package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"adboard/internal/domain"
	"adboard/internal/models"
	errs "adboard/pkg/errors"
	"adboard/pkg/logging"
	"adboard/pkg/utils"
)

// TokenPair is an issued access/refresh token set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// TokenIssuer mints token pairs for authenticated users. Implemented by the
// auth package; an interface here keeps the service testable without keys.
type TokenIssuer interface {
	Issue(user *models.User) (TokenPair, error)
}

type UserService struct {
	repo   domain.Repository
	tokens TokenIssuer
	log    *logging.ComponentLogger
}

func NewUserService(repo domain.Repository, tokens TokenIssuer, log *logging.Logger) *UserService {
	s := &UserService{repo: repo, tokens: tokens}
	if log != nil {
		s.log = log.WithComponent("user_service")
	}
	return s
}

func (s *UserService) GetByID(ctx context.Context, oid string) (*models.User, error) {
	const op = "service.UserService.GetByID"

	u, err := s.repo.GetUserCtx(ctx, oid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NewNotFound(op, "user", oid)
	}
	return u, nil
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	FirstName  string
	LastName   string
	MiddleName *string
	Email      string
	Phone      string
	TimeCall   *string
	Password   string
}

// Register creates an account. Email and phone are unique across users; the
// phone is normalized before both the uniqueness check and storage.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	const op = "service.UserService.Register"

	if len(input.Password) < 8 || len(input.Password) > 72 {
		return nil, errs.NewValidation(op, "password must be between 8 and 72 characters", nil)
	}

	phone := utils.NormalizePhone(input.Phone)

	existing, err := s.repo.GetUserByEmailOrPhoneCtx(ctx, input.Email, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.NewAlreadyExists(op, "user", "email or phone is already registered")
	}

	user, err := models.NewUser(input.FirstName, input.LastName, input.MiddleName,
		input.Email, phone, input.TimeCall)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.NewStorage(op, "failed to hash password", err)
	}
	user.PasswordHash = string(hash)

	if err := s.repo.AddUserCtx(ctx, user); err != nil {
		return nil, err
	}

	if s.log != nil {
		s.log.Info("user registered", logging.String("user_id", user.OID))
	}
	return user, nil
}

// Authenticate checks credentials and issues a token pair. Unknown email and
// wrong password produce the same error, so accounts cannot be enumerated.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, TokenPair, error) {
	const op = "service.UserService.Authenticate"

	user, err := s.repo.GetUserByEmailCtx(ctx, email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if user == nil {
		return nil, TokenPair{}, errs.NewAccessDenied(op, "invalid credentials")
	}
	if user.Status == models.UserStatusBlocked {
		return nil, TokenPair{}, errs.NewAccessDenied(op, "account is blocked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, errs.NewAccessDenied(op, "invalid credentials")
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}
