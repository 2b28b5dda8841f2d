// Package quota gates metered actions against plan limits.
//
// The gate is read-only: it resolves the user's entitlement, compares the
// relevant counter to the plan cap and either admits or denies. Counter
// accounting happens separately through the usage store once the action
// succeeded, which keeps the gate safe to call speculatively.
package quota
