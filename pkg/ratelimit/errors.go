package ratelimit

import "errors"

var (
	ErrStoreRequired = errors.New("ratelimit.errors.store_required")
	ErrInvalidLimit  = errors.New("ratelimit.errors.invalid_limit")
	ErrInvalidWindow = errors.New("ratelimit.errors.invalid_window")
	ErrKeyRequired   = errors.New("ratelimit.errors.key_required")
)
