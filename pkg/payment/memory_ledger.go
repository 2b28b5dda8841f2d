package payment

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is an in-memory Ledger for tests and local development.
type MemoryLedger struct {
	mu       sync.RWMutex
	payments []Payment
}

// NewMemoryLedger returns an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Record(_ context.Context, p Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.payments = append(l.payments, p)
	return nil
}

func (l *MemoryLedger) ListByUser(_ context.Context, userID uuid.UUID) ([]Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Payment
	for _, p := range l.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	slices.Reverse(out)
	return out, nil
}
