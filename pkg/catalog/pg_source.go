package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pgSource loads plans from the goose-seeded plans table.
type pgSource struct {
	pool *pgxpool.Pool
}

// NewPGSource returns a Source that reads plan definitions from PostgreSQL.
func NewPGSource(pool *pgxpool.Pool) Source {
	if pool == nil {
		panic("catalog: pgxpool is required")
	}
	return &pgSource{pool: pool}
}

func (s *pgSource) Load(ctx context.Context) (map[string]Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT plan_id, plan_name, price_cents, currency, duration_days,
		       max_courses, max_modules_per_course, regeneration_limit, certificate_access
		FROM plans`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := make(map[string]Plan)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price.Amount, &p.Price.Currency, &p.DurationDays,
			&p.MaxCourses, &p.MaxModulesPerCourse, &p.RegenerationLimit, &p.CertificateAccess,
		); err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		plans[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan rows: %w", err)
	}

	return plans, nil
}
