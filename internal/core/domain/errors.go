package domain

import "errors"

// ErrInvalidInput marks request values that fail validation. Transport layers
// match it with errors.Is to answer with a client error instead of a server
// error.
var ErrInvalidInput = errors.New("invalid input")
