package postgres

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	sq "github.com/Masterminds/squirrel"
	"github.com/finplan/credit-engine/pkg/schedule"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// PeriodStore persists generated payment schedules per credit, preserving
// ordering by period number.
type PeriodStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPeriodStore creates a Postgres-backed period store.
func NewPeriodStore(pool *pgxpool.Pool, logger *zap.Logger) *PeriodStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodStore{pool: pool, logger: logger}
}

// Replace swaps a credit's schedule for the given periods in one
// transaction. Regeneration always replaces the full set; periods are never
// partially deleted.
func (s *PeriodStore) Replace(ctx context.Context, creditName string, periods []schedule.PaymentPeriod) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql.Delete("payment_periods").
		Where(sq.Eq{"credit_name": creditName}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting existing schedule: %w", err)
	}

	for _, p := range periods {
		query, args, err := psql.Insert("payment_periods").
			Columns("credit_name", "period_number", "period_start_date", "period_end_date",
				"payment_date", "principal_amount", "base_rate", "spread",
				"interest_rate", "period_days", "interest_amount", "total_payment").
			Values(creditName, p.PeriodNumber, dateArg(p.PeriodStartDate), dateArg(p.PeriodEndDate),
				dateArg(p.PaymentDate), p.PrincipalAmount, p.BaseRate, p.Spread,
				p.InterestRate, p.PeriodDays, p.InterestAmount, p.TotalPayment).
			ToSql()
		if err != nil {
			return fmt.Errorf("building period insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting period %d: %w", p.PeriodNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing replace transaction: %w", err)
	}

	s.logger.Debug("replaced payment schedule",
		zap.String("op", "postgres.Replace"),
		zap.String("credit", creditName),
		zap.Int("periods", len(periods)),
	)
	return nil
}

// Load returns a credit's schedule ordered by period number.
func (s *PeriodStore) Load(ctx context.Context, creditName string) ([]schedule.PaymentPeriod, error) {
	query, args, err := psql.Select("period_number", "period_start_date", "period_end_date",
		"payment_date", "principal_amount", "base_rate", "spread",
		"interest_rate", "period_days", "interest_amount", "total_payment").
		From("payment_periods").
		Where(sq.Eq{"credit_name": creditName}).
		OrderBy("period_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building load query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	defer rows.Close()

	var periods []schedule.PaymentPeriod
	for rows.Next() {
		var p schedule.PaymentPeriod
		var start, end, payment time.Time
		if err := rows.Scan(&p.PeriodNumber, &start, &end, &payment,
			&p.PrincipalAmount, &p.BaseRate, &p.Spread,
			&p.InterestRate, &p.PeriodDays, &p.InterestAmount, &p.TotalPayment); err != nil {
			return nil, fmt.Errorf("scanning period: %w", err)
		}
		p.PeriodStartDate = civil.DateOf(start)
		p.PeriodEndDate = civil.DateOf(end)
		p.PaymentDate = civil.DateOf(payment)
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule: %w", err)
	}
	return periods, nil
}

// UpdateRates rewrites only the rate and interest fields of each period,
// leaving period identity untouched.
func (s *PeriodStore) UpdateRates(ctx context.Context, creditName string, periods []schedule.PaymentPeriod) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning update transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, p := range periods {
		query, args, err := psql.Update("payment_periods").
			Set("base_rate", p.BaseRate).
			Set("interest_rate", p.InterestRate).
			Set("interest_amount", p.InterestAmount).
			Set("total_payment", p.TotalPayment).
			Set("updated_at", sq.Expr("now()")).
			Where(sq.Eq{"credit_name": creditName, "period_number": p.PeriodNumber}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building period update: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("updating period %d: %w", p.PeriodNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing update transaction: %w", err)
	}
	return nil
}
