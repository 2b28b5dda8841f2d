// Package entitlement resolves a user's plan assignment from identity
// attributes and existing state.
//
// The resolver implements the automatic upgrade heuristic: users with an
// email under the configured educational domain suffix are placed on the edu
// tier, everyone else defaults to free. The policy is upgrade-only and
// idempotent, which makes it cheap to run at the top of every request that
// needs plan context.
package entitlement
