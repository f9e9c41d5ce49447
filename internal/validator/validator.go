// Package validator provides input validation and sanitization functions
// for the messaging API surface.
package validator

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInputTooLong    = errors.New("input exceeds maximum length")
	ErrEmptyInput      = errors.New("input cannot be empty")
	ErrInvalidRole     = errors.New("invalid participant role")
	ErrContentTooLong  = errors.New("message content exceeds maximum length")
	ErrNameTooLong     = errors.New("display name exceeds maximum length")
	ErrInvalidArchived = errors.New("archived filter must be true or false")
)

// MaxContentLength is the maximum message body length in runes
const MaxContentLength = 10000

// MaxDisplayNameLength is the maximum participant display name length
const MaxDisplayNameLength = 255

// Roles the participant directory accepts
var validRoles = map[string]bool{
	"advertiser": true,
	"partner":    true,
	"operator":   true,
}

// ValidateEmail validates email address format according to RFC 5322.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateDisplayName validates a participant display name
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateRole checks the participant role against the known portal roles
func ValidateRole(role string) error {
	if role == "" {
		return ErrEmptyInput
	}
	if !validRoles[strings.ToLower(role)] {
		return ErrInvalidRole
	}
	return nil
}

// ValidateContent bounds the message body length. Emptiness is not checked
// here: an empty body is legal when the message carries attachments, which
// only the messaging service can decide.
func ValidateContent(content string) error {
	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// ParseArchivedFlag parses the archived query filter. An empty value means
// the inbox view (not archived).
func ParseArchivedFlag(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	archived, err := strconv.ParseBool(value)
	if err != nil {
		return false, ErrInvalidArchived
	}
	return archived, nil
}

// Pagination constants
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination validates and sanitizes pagination parameters.
// Returns sanitized limit and offset values.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// SanitizeFilename removes dangerous characters from filename.
// Prevents path traversal and removes control characters.
func SanitizeFilename(filename string) string {
	// Remove path separators to prevent path traversal
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")

	// Remove null bytes
	filename = strings.ReplaceAll(filename, "\x00", "")

	// Remove control characters (ASCII 0-31 and 127)
	filename = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, filename)

	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "unnamed"
	}

	return filename
}
