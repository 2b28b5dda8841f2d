package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is an immutable, read-only registry of plan tiers.
// It is safe for concurrent use: the plan map is never modified after New.
type Catalog struct {
	plans map[string]Plan
}

// New loads plans from the given Source and validates them.
// Construction fails fast if the free tier is missing, so Default can never fail.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	if _, ok := plans[PlanFree]; !ok {
		return nil, errors.Join(ErrInvalidPlanConfiguration,
			fmt.Errorf("default plan %q is missing", PlanFree))
	}

	return &Catalog{plans: maps.Clone(plans)}, nil
}

// Get returns the plan with the given id or ErrPlanNotFound.
func (c *Catalog) Get(planID string) (Plan, error) {
	plan, ok := c.plans[planID]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// Default returns the free tier. It never fails: New guarantees the free plan exists.
func (c *Catalog) Default() Plan {
	return c.plans[PlanFree]
}

// Has reports whether a plan id is part of the catalog.
func (c *Catalog) Has(planID string) bool {
	_, ok := c.plans[planID]
	return ok
}

// validatePlans checks plan configurations for internal consistency.
func validatePlans(plans map[string]Plan) error {
	for planID, plan := range plans {
		if plan.ID != planID {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", planID, plan.ID))
		}
		if plan.MaxCourses < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative max courses: %d", planID, plan.MaxCourses))
		}
		if plan.MaxModulesPerCourse < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative max modules per course: %d", planID, plan.MaxModulesPerCourse))
		}
	}
	return nil
}
