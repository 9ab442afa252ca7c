package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxNameLength bounds the user display name, counted in characters.
const MaxNameLength = 100

var (
	ErrEmptyName    = errors.New("name is required")
	ErrNameTooLong  = errors.New("name must be at most 100 characters")
	ErrInvalidEmail = errors.New("email is not a valid address")
)

var emailValidator = validator.New()

// User represents a registered user.
type User struct {
	ID    int64
	Name  string
	Email string
}

// NewUser builds a user ensuring required invariants. The identifier is assigned by the repository.
func NewUser(name, email string) (*User, error) {
	user := &User{}
	if err := user.Rename(name); err != nil {
		return nil, err
	}
	if err := user.ChangeEmail(email); err != nil {
		return nil, err
	}
	return user, nil
}

// Rename trims and validates the display name.
func (u *User) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	u.Name = name
	return nil
}

// ChangeEmail trims and validates the email address syntax.
func (u *User) ChangeEmail(email string) error {
	email = strings.TrimSpace(email)
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if err := u.Rename(u.Name); err != nil {
		return err
	}
	return u.ChangeEmail(u.Email)
}
