package models

import "errors"

// Pipeline failure classes. Node implementations wrap one of these so callers
// can tell configuration problems from transport and decode failures.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrTransport     = errors.New("transport error")
	ErrDecode        = errors.New("decode error")
)
