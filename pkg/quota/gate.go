package quota

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/quotakit/pkg/entitlement"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// Gate answers admission questions for metered actions by comparing usage
// counters to the resolved plan's limits. It never mutates counters; recording
// consumption is the store's job after the action actually happened.
type Gate struct {
	resolver *entitlement.Resolver
}

// New returns a Gate. Panics on a nil resolver to fail fast at startup.
func New(resolver *entitlement.Resolver) *Gate {
	if resolver == nil {
		panic("quota: entitlement resolver is required")
	}
	return &Gate{resolver: resolver}
}

// CanCreate reports whether the user may consume count more units of the
// metric. Entitlement is resolved first, so the check always runs against the
// user's current plan. A denial is ErrQuotaExceeded; it is an expected
// outcome, not a failure.
//
// Only courses_created is enforced globally. The module cap is scoped to a
// single course (MaxModulesPerCourse) and cannot be evaluated against the
// global counter, so module admission is deferred to the course-generation
// collaborator, which has the per-course context.
func (g *Gate) CanCreate(ctx context.Context, userID uuid.UUID, email string, metric usage.Metric, count int64) error {
	if _, err := usage.ParseMetric(string(metric)); err != nil {
		return err
	}
	if count <= 0 {
		return usage.ErrInvalidCount
	}

	rec, plan, err := g.resolver.Resolve(ctx, userID, email)
	if err != nil {
		return err
	}

	switch metric {
	case usage.MetricCoursesCreated:
		if rec.CoursesCreated+count > plan.MaxCourses {
			return ErrQuotaExceeded
		}
	case usage.MetricModulesCreated:
		// Deferred: enforced per course by the generation collaborator.
	}
	return nil
}

// Stats is the per-user usage summary exposed to the dashboard.
type Stats struct {
	PlanName            string `json:"plan_name"`
	CoursesCreated      int64  `json:"courses_created"`
	MaxCourses          int64  `json:"max_courses"`
	ModulesCreated      int64  `json:"modules_created"`
	MaxModulesPerCourse int64  `json:"max_modules_per_course"`
	RemainingCourses    int64  `json:"remaining_courses"`
}

// Stats resolves the user's entitlement and returns counters alongside the
// plan limits. First access classifies the user as a side effect, so a brand
// new edu-eligible user already sees edu limits here.
func (g *Gate) Stats(ctx context.Context, userID uuid.UUID, email string) (Stats, error) {
	rec, plan, err := g.resolver.Resolve(ctx, userID, email)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		PlanName:            plan.Name,
		CoursesCreated:      rec.CoursesCreated,
		MaxCourses:          plan.MaxCourses,
		ModulesCreated:      rec.ModulesCreated,
		MaxModulesPerCourse: plan.MaxModulesPerCourse,
		RemainingCourses:    plan.MaxCourses - rec.CoursesCreated,
	}, nil
}
