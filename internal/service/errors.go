// Package service holds the domain operations of the booking platform.
// Handlers translate the sentinel errors below into HTTP responses.
package service

import (
	"errors"

	"github.com/iliyamo/hotel-booking/internal/repository"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUnavailable         = errors.New("room not available")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientPayment = errors.New("insufficient payment amount")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrHotelNotApproved    = errors.New("hotel is not approved")

	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account is not verified")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrInvalidResetToken  = errors.New("the reset link is invalid or expired")
)

// fromRepo maps storage sentinels onto domain sentinels.  Unknown errors
// pass through and end up as 500s.
func fromRepo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrForbidden):
		return ErrForbidden
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailExists
	}
	return err
}

// IsDomainError reports whether err is one of the sentinel kinds handlers
// translate into a 4xx response.
func IsDomainError(err error) bool {
	for _, k := range []error{ErrNotFound, ErrUnavailable, ErrInvalidTransition, ErrInsufficientPayment,
		ErrForbidden, ErrInvalidInput, ErrConflict, ErrHotelNotApproved, ErrEmailExists,
		ErrInvalidCredentials, ErrNotVerified, ErrInvalidCode, ErrInvalidResetToken} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
