package models

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	errs "adboard/pkg/errors"
)

// Role is the coarse-grained permission tier checked at service boundaries.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleUser      Role = "USER"
	RoleGuest     Role = "GUEST"
)

// Privileged reports whether the role may see and judge non-public ads.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleModerator
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleUser, RoleGuest:
		return Role(s), nil
	}
	return "", errs.NewValidation("models.ParseRole", "unknown user role: "+s, nil)
}

// UserStatus is the account lifecycle state, managed by the identity
// subsystem and consumed here for authorization lookups.
type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case UserStatusPending, UserStatusActive, UserStatusBlocked:
		return UserStatus(s), nil
	}
	return "", errs.NewValidation("models.ParseUserStatus", "unknown user status: "+s, nil)
}

// Actor is the acting principal of a request, passed explicitly to every
// service operation that needs authorization. No ambient request context.
type Actor struct {
	ID   string
	Role Role
}

// nameRegex: one word, uppercase first letter then lowercase, Latin or Cyrillic.
var nameRegex = regexp.MustCompile(`^[А-ЯЁ][а-яё]+$|^[A-Z][a-z]+$`)

// emailRegex keeps the check RFC-shaped rather than RFC-complete.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const maxNameLen = 50

type User struct {
	OID          string     `json:"oid" db:"oid"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	MiddleName   *string    `json:"middle_name,omitempty" db:"middle_name"`
	Email        string     `json:"email" db:"email"`
	Phone        string     `json:"phone" db:"phone"`
	TimeCall     *string    `json:"time_call,omitempty" db:"time_call"`
	Role         Role       `json:"role" db:"role"`
	Status       UserStatus `json:"status" db:"status"`
	PasswordHash string     `json:"-" db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// NewUser builds a registration candidate. New accounts start as USER/PENDING;
// role upgrades come from the moderator bootstrap file or an admin.
func NewUser(firstName, lastName string, middleName *string, email, phone string, timeCall *string) (*User, error) {
	const op = "models.NewUser"

	for _, name := range []string{firstName, lastName} {
		if err := validateNamePart(op, name); err != nil {
			return nil, err
		}
	}
	if middleName != nil {
		if err := validateNamePart(op, *middleName); err != nil {
			return nil, err
		}
	}
	if !emailRegex.MatchString(email) {
		return nil, errs.NewValidation(op, "malformed email address", nil)
	}
	if err := validatePhone(op, phone); err != nil {
		return nil, err
	}
	if timeCall != nil && utf8.RuneCountInString(*timeCall) > 50 {
		return nil, errs.NewValidation(op, "preferred call time must be at most 50 characters", nil)
	}

	return &User{
		OID:        uuid.NewString(),
		FirstName:  firstName,
		LastName:   lastName,
		MiddleName: middleName,
		Email:      email,
		Phone:      phone,
		TimeCall:   timeCall,
		Role:       RoleUser,
		Status:     UserStatusPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func validateNamePart(op, name string) error {
	if utf8.RuneCountInString(name) > maxNameLen || !nameRegex.MatchString(name) {
		return errs.NewValidation(op,
			"name parts must be a single word of at most 50 letters, uppercase first letter then lowercase, Latin or Cyrillic", nil)
	}
	return nil
}

func validatePhone(op, phone string) error {
	if len(phone) != 11 {
		return errs.NewValidation(op, "phone number must contain exactly 11 digits", nil)
	}
	if phone[0] != '7' && phone[0] != '8' {
		return errs.NewValidation(op, "phone number must start with 7 or 8", nil)
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return errs.NewValidation(op, "phone number must contain digits only", nil)
		}
	}
	return nil
}

// Actor returns the principal this user acts as.
func (u *User) Actor() Actor {
	return Actor{ID: u.OID, Role: u.Role}
}
