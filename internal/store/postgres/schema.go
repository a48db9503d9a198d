// Package postgres provides pgx-backed persistence for the rate series and
// payment schedules.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Schema for the engine's tables. The composite uniqueness on
// (indicator, announcement_date) backs the idempotent upsert, and the
// per-credit uniqueness on period_number backs schedule ordering.
const schema = `
CREATE TABLE IF NOT EXISTS rate_points (
    id               BIGSERIAL PRIMARY KEY,
    indicator        TEXT NOT NULL,
    announcement_date DATE NOT NULL,
    effective_date   DATE NOT NULL,
    rate             DOUBLE PRECISION NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (indicator, announcement_date)
);

CREATE INDEX IF NOT EXISTS rate_points_effective_idx
    ON rate_points (indicator, effective_date);

CREATE TABLE IF NOT EXISTS payment_periods (
    id               BIGSERIAL PRIMARY KEY,
    credit_name      TEXT NOT NULL,
    period_number    INT NOT NULL,
    period_start_date DATE NOT NULL,
    period_end_date  DATE NOT NULL,
    payment_date     DATE NOT NULL,
    principal_amount DOUBLE PRECISION NOT NULL,
    base_rate        DOUBLE PRECISION NOT NULL,
    spread           DOUBLE PRECISION NOT NULL,
    interest_rate    DOUBLE PRECISION NOT NULL,
    period_days      INT NOT NULL,
    interest_amount  DOUBLE PRECISION NOT NULL,
    total_payment    DOUBLE PRECISION NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (credit_name, period_number)
);
`

// EnsureSchema creates the engine's tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
