package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotVerified     = errors.New("email not verified")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrInvalidInput    = errors.New("invalid input")
)
