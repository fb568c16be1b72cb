// Package validation holds field rules for user input and a struct validator
// that reports failures as a field-keyed message map.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	NameMaxLength     = 150
	PasswordMinLength = 8
	PasswordMaxLength = 128
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

// "me" would shadow the /users/me/ route.
var reservedUsernames = map[string]struct{}{
	"me": {},
}

// ValidateUsername checks length, the allowed character set and reserved names.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if utf8.RuneCountInString(username) > UsernameMaxLength {
		return fmt.Errorf("username must be at most %d characters", UsernameMaxLength)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username may contain only letters, digits and @/./+/-/_")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}

// ValidateEmail checks the address shape and length.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > EmailMaxLength {
		return fmt.Errorf("email must be at most %d characters", EmailMaxLength)
	}
	if err := validate.Var(email, "email"); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}

// ValidatePassword enforces length bounds and rejects all-digit passwords.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters", PasswordMinLength)
	}
	if n > PasswordMaxLength {
		return fmt.Errorf("password must be at most %d characters", PasswordMaxLength)
	}
	if strings.Trim(password, "0123456789") == "" {
		return errors.New("password cannot be entirely numeric")
	}
	return nil
}

// ValidatePersonName checks a first or last name.
func ValidatePersonName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("this field is required")
	}
	if utf8.RuneCountInString(name) > NameMaxLength {
		return fmt.Errorf("must be at most %d characters", NameMaxLength)
	}
	return nil
}
