package entitlement

import "errors"

var (
	ErrResolveFailed = errors.New("entitlement.errors.resolve_failed")
)
