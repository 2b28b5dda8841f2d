package quota

import "errors"

var (
	ErrQuotaExceeded = errors.New("quota.errors.quota_exceeded")
)
