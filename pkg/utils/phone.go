package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone reduces a phone number to the canonical local form used in
// listings: digits only, "+7..." collapsed to "7...". Validation of the
// resulting shape (leading 7/8, 11 digits) lives on the User entity.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	trimmed := strings.TrimSpace(phone)
	hadPlus7 := strings.HasPrefix(trimmed, "+7")
	clean := nonDigits.ReplaceAllString(trimmed, "")
	if hadPlus7 {
		return clean // "+7xxxxxxxxxx" already reduced to "7xxxxxxxxxx"
	}
	return clean
}

// PhoneDigits returns just the digits in a phone number string.
// Useful for loose comparisons where formatting differences are expected.
func PhoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}
