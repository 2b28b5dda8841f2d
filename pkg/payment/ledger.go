package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/quotakit/pkg/catalog"
)

// Payment statuses and providers recorded in the ledger.
const (
	ProviderMockStripe = "mock_stripe"

	StatusSucceeded = "succeeded"
	StatusPending   = "pending"
	StatusFailed    = "failed"
)

// Payment is one ledger row, written when a checkout is confirmed.
type Payment struct {
	UserID    uuid.UUID
	Amount    catalog.Money
	Provider  string
	Status    string
	CreatedAt time.Time
}

// Ledger persists payment records. Append-only: rows are never updated or
// deleted by this service.
type Ledger interface {
	Record(ctx context.Context, p Payment) error

	// ListByUser returns a user's payments, newest first. Used by the
	// administrative listing surface.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Payment, error)
}
