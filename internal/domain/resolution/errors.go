package resolution

import "errors"

var (
	// ErrInvalidURL indicates the input could not be parsed as a URL.
	ErrInvalidURL = errors.New("invalid url")
)
