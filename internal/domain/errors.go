package domain

import "errors"

var (
	// ErrValidation indicates a record is missing a required field.
	// It is raised before either store is touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a record is absent from every store consulted.
	ErrNotFound = errors.New("record not found")
)
