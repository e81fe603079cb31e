package model

import (
	"errors"
	"regexp"
	"strings"
)

// Target identifier errors.
var (
	// ErrEmptyTarget is returned when the target identifier is empty.
	ErrEmptyTarget = errors.New("target identifier cannot be empty")
	// ErrInvalidTarget is returned when the identifier does not match its category.
	ErrInvalidTarget = errors.New("target identifier does not match its category")
	// ErrUnknownTargetCategory is returned for a category outside the known set.
	ErrUnknownTargetCategory = errors.New("unknown target category")
)

// TargetCategory classifies the kind of identifier under investigation.
type TargetCategory string

// Target category constants.
const (
	// TargetUsername is a handle used on social platforms.
	TargetUsername TargetCategory = "username"
	// TargetEmail is an email address.
	TargetEmail TargetCategory = "email"
	// TargetPhone is a phone number.
	TargetPhone TargetCategory = "phone"
	// TargetComposite is a bundle of several identifiers investigated together.
	TargetComposite TargetCategory = "composite"
)

// String returns the string representation of the TargetCategory.
func (c TargetCategory) String() string {
	return string(c)
}

// IsValid returns true if this is a known target category.
func (c TargetCategory) IsValid() bool {
	switch c {
	case TargetUsername, TargetEmail, TargetPhone, TargetComposite:
		return true
	default:
		return false
	}
}

// Identifier pairs a raw identifier value with its category.
// Composite investigations carry one Identifier per supplied value.
type Identifier struct {
	// Value is the raw identifier (handle, address, or number).
	Value string `json:"value"`

	// Category classifies the identifier.
	Category TargetCategory `json:"category"`
}

// Validation patterns for target identifiers.
// These are deliberately permissive: the lookup tools are the authority on
// whether an identifier resolves to anything, so validation only rejects
// values that no tool could interpret.
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{4,20}$`)
)

// NewIdentifier creates a validated Identifier.
// The value is trimmed, and email addresses are lowercased since the local
// part is case-insensitive for every provider the lookup tools cover.
func NewIdentifier(value string, category TargetCategory) (Identifier, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Identifier{}, ErrEmptyTarget
	}

	switch category {
	case TargetUsername:
		if !usernamePattern.MatchString(value) {
			return Identifier{}, ErrInvalidTarget
		}
	case TargetEmail:
		value = strings.ToLower(value)
		if !emailPattern.MatchString(value) {
			return Identifier{}, ErrInvalidTarget
		}
	case TargetPhone:
		if !phonePattern.MatchString(value) {
			return Identifier{}, ErrInvalidTarget
		}
	case TargetComposite:
		// Composite is a session-level kind, not a per-identifier category.
		return Identifier{}, ErrInvalidTarget
	default:
		return Identifier{}, ErrUnknownTargetCategory
	}

	return Identifier{Value: value, Category: category}, nil
}

// NormalizePhone strips formatting characters from a phone number,
// keeping only digits and a leading plus sign.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
