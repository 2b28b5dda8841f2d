package catalog

import "errors"

// Domain errors for catalog operations
var (
	ErrPlanNotFound             = errors.New("catalog.errors.plan_not_found")
	ErrInvalidPlanConfiguration = errors.New("catalog.errors.invalid_plan_configuration")
	ErrFailedToLoadPlans        = errors.New("catalog.errors.failed_to_load_plans")
)
