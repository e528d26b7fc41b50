package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

const (
	minPasswordLength = 8
	minNameLength     = 2
	maxNameLength     = 100
)

// RegisterInput is what a person types into the registration form.
type RegisterInput struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Confirm  string `mapstructure:"confirm"`
	Name     string `mapstructure:"name"`
}

func (in RegisterInput) validate() error {
	switch {
	case !validEmail(in.Email):
		return invalid("Please enter a valid email address")
	case len(in.Password) < minPasswordLength:
		return invalid("Password must be at least 8 characters")
	case in.Confirm != in.Password:
		return invalid("Passwords do not match")
	}

	n := utf8.RuneCountInString(strings.TrimSpace(in.Name))
	if n < minNameLength || n > maxNameLength {
		return invalid("Name must be between 2 and 100 characters")
	}

	return nil
}

func validateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("Email and password are required")
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func invalid(msg string) error {
	return serviceerr.New(serviceerr.CodeValidation, msg)
}

// displayName is the local part of an email address.
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
