package repository

import "errors"

var (
	// ErrNotFound is returned when a requested key doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a namespace or key is empty
	ErrInvalidInput = errors.New("invalid input")
)
