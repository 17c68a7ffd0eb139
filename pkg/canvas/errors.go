package canvas

import "errors"

var (
	// ErrDisposed is returned for any operation against a torn-down document.
	ErrDisposed = errors.New("canvas: document disposed")

	// ErrInvalidSize is returned when a canvas dimension is not positive.
	ErrInvalidSize = errors.New("canvas: size must be positive")
)
