// Package catalog provides an immutable registry of subscription plan tiers.
//
// The catalog is constructed once at startup from a Source (built-in defaults,
// a YAML file, or the seeded plans table) and is read-only afterwards. Every
// other component resolves limits and entitlement flags through it.
//
// Basic usage:
//
//	cat, err := catalog.New(ctx, catalog.NewDefaultSource())
//	if err != nil {
//	    // handle startup failure
//	}
//
//	plan, err := cat.Get(catalog.PlanEdu)
//	free := cat.Default() // never fails
package catalog
