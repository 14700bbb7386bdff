package engine

import "errors"

var (
	ErrMissingSeed            = errors.New("missing seed")
	ErrInvalidHashLength      = errors.New("invalid hash length")
	ErrInsufficientHashLength = errors.New("insufficient hash length")
	ErrUnsupportedParameter   = errors.New("unsupported parameter")
	ErrInvalidInput           = errors.New("invalid input")
)
