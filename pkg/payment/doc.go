// Package payment implements the mock checkout flow.
//
// There is no billing provider behind it: CreateCheckout hands back a success
// URL immediately and ConfirmPayment trusts the caller, writes a payment
// ledger row and assigns the purchased plan unconditionally. The entitlement
// resolver never downgrades that assignment afterwards.
package payment
