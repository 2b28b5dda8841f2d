package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGLedger is the PostgreSQL Ledger implementation backed by the payments table.
type PGLedger struct {
	pool *pgxpool.Pool
}

// NewPGLedger returns a Ledger backed by the given connection pool.
func NewPGLedger(pool *pgxpool.Pool) *PGLedger {
	if pool == nil {
		panic("payment: pgxpool is required")
	}
	return &PGLedger{pool: pool}
}

func (l *PGLedger) Record(ctx context.Context, p Payment) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO payments (user_id, amount_cents, currency, provider, status)
		VALUES ($1, $2, $3, $4, $5)`,
		p.UserID, p.Amount.Amount, p.Amount.Currency, p.Provider, p.Status)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (l *PGLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]Payment, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT user_id, amount_cents, currency, provider, status, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.UserID, &p.Amount.Amount, &p.Amount.Currency,
			&p.Provider, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return out, nil
}
