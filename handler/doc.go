// Package handler is the HTTP transport for the usage quota service.
//
// It is deliberately thin: identity arrives verified from the auth
// collaborator, handlers decode input, delegate to the quota gate, the usage
// store, the leaderboard and the payment service, and encode the result.
package handler
