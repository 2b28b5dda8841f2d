package entitlement

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/quotakit/pkg/catalog"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// defaultEligibleSuffix is the educational-domain suffix granting the edu tier.
const defaultEligibleSuffix = ".edu.in"

// Option configures the Resolver.
type Option func(*Resolver)

// WithEligibleSuffix overrides the email suffix used by the eligibility
// predicate. Matching is case-insensitive.
func WithEligibleSuffix(suffix string) Option {
	return func(r *Resolver) {
		if suffix != "" {
			r.eligibleSuffix = strings.ToLower(suffix)
		}
	}
}

// Resolver decides and updates a user's plan assignment from identity
// attributes and current state. It is invoked at the top of every operation
// that needs plan context, so the assignment always reflects current
// eligibility.
type Resolver struct {
	store          usage.Store
	catalog        *catalog.Catalog
	eligibleSuffix string
}

// New returns a Resolver. Panics on nil dependencies to fail fast at startup.
func New(store usage.Store, cat *catalog.Catalog, opts ...Option) *Resolver {
	if store == nil {
		panic("entitlement: usage.Store is required")
	}
	if cat == nil {
		panic("entitlement: catalog is required")
	}

	r := &Resolver{
		store:          store,
		catalog:        cat,
		eligibleSuffix: defaultEligibleSuffix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the user's usage record with a guaranteed plan assignment,
// together with the resolved plan.
//
// Rules, applied in order:
//   - an unclassified user gets edu if eligible, free otherwise
//   - a free user who became eligible is upgraded to edu
//   - edu and pro assignments are never touched: the resolver never
//     downgrades and never overrides a paid plan
//
// Repeated calls with unchanged inputs produce no additional writes, so the
// method is safe on every read path.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, email string) (usage.Record, catalog.Plan, error) {
	rec, err := r.store.GetOrCreate(ctx, userID)
	if err != nil {
		return usage.Record{}, catalog.Plan{}, errors.Join(ErrResolveFailed, err)
	}

	planID := rec.PlanID
	drifted := planID != "" && !r.catalog.Has(planID)
	if drifted {
		// A stored plan id the catalog no longer knows is treated as unset
		// and re-resolved from scratch.
		planID = ""
	}

	if planID == "" || planID == catalog.PlanFree {
		target := catalog.PlanFree
		if r.Eligible(email) {
			target = catalog.PlanEdu
		}

		if target != planID {
			if drifted {
				// Compare-and-swap against the drifted value, so the repair
				// can never override a concurrent assignment (a payment
				// landing between the read and the repair wins). Re-read to
				// learn which write took effect.
				if err := r.store.ReplacePlan(ctx, userID, rec.PlanID, target); err != nil {
					return usage.Record{}, catalog.Plan{}, errors.Join(ErrResolveFailed, err)
				}
				if rec, err = r.store.Get(ctx, userID); err != nil {
					return usage.Record{}, catalog.Plan{}, errors.Join(ErrResolveFailed, err)
				}
			} else {
				if err := r.store.UpgradePlan(ctx, userID, target); err != nil {
					return usage.Record{}, catalog.Plan{}, errors.Join(ErrResolveFailed, err)
				}
				rec.PlanID = target
			}
		}
	}

	plan, err := r.catalog.Get(rec.PlanID)
	if err != nil {
		// Lost a race with a concurrent assignment to a plan this catalog
		// snapshot doesn't know; fall back to the free tier limits.
		plan = r.catalog.Default()
	}
	return rec, plan, nil
}

// Eligible reports whether the email matches the educational-domain predicate.
func (r *Resolver) Eligible(email string) bool {
	return email != "" && strings.HasSuffix(strings.ToLower(email), r.eligibleSuffix)
}
