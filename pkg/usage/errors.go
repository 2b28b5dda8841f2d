package usage

import "errors"

// Domain errors for usage store operations
var (
	ErrRecordNotFound      = errors.New("usage.errors.record_not_found")
	ErrInvalidMetric       = errors.New("usage.errors.invalid_metric")
	ErrInvalidCount        = errors.New("usage.errors.invalid_count")
	ErrInvalidScore        = errors.New("usage.errors.invalid_score")
	ErrConcurrencyConflict = errors.New("usage.errors.concurrency_conflict")
	ErrFailedToReset       = errors.New("usage.errors.failed_to_reset")
)
