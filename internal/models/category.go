package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	errs "adboard/pkg/errors"
)

type Category struct {
	OID         string    `json:"oid" db:"oid"`
	Title       string    `json:"title" db:"title"`
	Code        string    `json:"code" db:"code"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NewCategory derives the machine-safe code from the title: transliterated,
// lowercased, hyphen-separated. Same title always yields the same code.
func NewCategory(title, description string) (*Category, error) {
	const op = "models.NewCategory"

	if n := utf8.RuneCountInString(title); n < 1 || n > 50 {
		return nil, errs.NewValidation(op, "title must be between 1 and 50 characters", nil)
	}
	if utf8.RuneCountInString(description) > 250 {
		return nil, errs.NewValidation(op, "description must be at most 250 characters", nil)
	}

	code := slug.Make(title)
	if err := validateCode(op, code); err != nil {
		return nil, err
	}

	return &Category{
		OID:         uuid.NewString(),
		Title:       title,
		Code:        code,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// validateCode accepts ASCII lowercase letters with hyphen separators only.
// Titles that slugify into digits or into nothing are rejected.
func validateCode(op, code string) error {
	if code == "" {
		return errs.NewValidation(op, "category code is empty after slugification", nil)
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= 'a' && c <= 'z' {
			continue
		}
		if c == '-' && i > 0 && i < len(code)-1 {
			continue
		}
		return errs.NewValidation(op, "category code must contain only ASCII letters and inner hyphens: "+code, nil)
	}
	return nil
}
