package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrPolicyMisconfigured is returned when a delete policy needs order access that was not wired.
	ErrPolicyMisconfigured = errors.New("user delete policy requires order references")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNameTooLong) ||
		errors.Is(err, domain.ErrInvalidEmail) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
