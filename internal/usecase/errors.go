package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrNormalization         = errors.New("normalization failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
