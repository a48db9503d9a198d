package postgres

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	sq "github.com/Masterminds/squirrel"
	"github.com/finplan/credit-engine/pkg/rateseries"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RateStore is a Postgres-backed rateseries.Store for one indicator.
// Upserts run in one transaction per batch; reads fail soft with a logged
// error, matching the engine's fallback-to-default contract.
type RateStore struct {
	pool      *pgxpool.Pool
	indicator string
	logger    *zap.Logger
}

var _ rateseries.Store = &RateStore{}

// NewRateStore creates a store bound to the given indicator's series.
func NewRateStore(pool *pgxpool.Pool, indicator string, logger *zap.Logger) *RateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateStore{pool: pool, indicator: indicator, logger: logger}
}

// Upsert inserts or overwrites points keyed by (indicator, announcement
// date) within a single transaction.
func (s *RateStore) Upsert(points []rateseries.RatePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, p := range points {
		query, args, err := psql.Insert("rate_points").
			Columns("indicator", "announcement_date", "effective_date", "rate").
			Values(s.indicator, dateArg(p.AnnouncementDate), dateArg(p.EffectiveDate), p.Rate).
			Suffix(`ON CONFLICT (indicator, announcement_date) DO UPDATE
				SET effective_date = EXCLUDED.effective_date,
				    rate = EXCLUDED.rate,
				    updated_at = now()`).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("building upsert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upserting rate point %s: %w", p.AnnouncementDate, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing upsert transaction: %w", err)
	}
	return len(points), nil
}

// Latest returns the point with the greatest effective date.
func (s *RateStore) Latest() (rateseries.RatePoint, bool) {
	query, args, err := s.selectPoints().
		OrderBy("effective_date DESC").
		Limit(1).
		ToSql()
	if err != nil {
		s.logger.Error("building latest query", zap.String("op", "postgres.Latest"), zap.Error(err))
		return rateseries.RatePoint{}, false
	}
	return s.queryOne(query, args)
}

// AtOrBefore returns the point with the greatest effective date not after
// the given date.
func (s *RateStore) AtOrBefore(date civil.Date) (rateseries.RatePoint, bool) {
	query, args, err := s.selectPoints().
		Where(sq.LtOrEq{"effective_date": dateArg(date)}).
		OrderBy("effective_date DESC").
		Limit(1).
		ToSql()
	if err != nil {
		s.logger.Error("building at-or-before query", zap.String("op", "postgres.AtOrBefore"), zap.Error(err))
		return rateseries.RatePoint{}, false
	}
	return s.queryOne(query, args)
}

// Range returns points effective in [from, to], ascending.
func (s *RateStore) Range(from, to civil.Date) []rateseries.RatePoint {
	query, args, err := s.selectPoints().
		Where(sq.GtOrEq{"effective_date": dateArg(from)}).
		Where(sq.LtOrEq{"effective_date": dateArg(to)}).
		OrderBy("effective_date ASC").
		ToSql()
	if err != nil {
		s.logger.Error("building range query", zap.String("op", "postgres.Range"), zap.Error(err))
		return nil
	}

	rows, err := s.pool.Query(context.Background(), query, args...)
	if err != nil {
		s.logger.Error("querying rate range", zap.String("op", "postgres.Range"), zap.Error(err))
		return nil
	}
	defer rows.Close()

	var points []rateseries.RatePoint
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			s.logger.Error("scanning rate point", zap.String("op", "postgres.Range"), zap.Error(err))
			return nil
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("iterating rate range", zap.String("op", "postgres.Range"), zap.Error(err))
		return nil
	}
	return points
}

func (s *RateStore) selectPoints() sq.SelectBuilder {
	return psql.Select("announcement_date", "effective_date", "rate").
		From("rate_points").
		Where(sq.Eq{"indicator": s.indicator})
}

func (s *RateStore) queryOne(query string, args []interface{}) (rateseries.RatePoint, bool) {
	row := s.pool.QueryRow(context.Background(), query, args...)
	p, err := scanPoint(row)
	if err != nil {
		if err != pgx.ErrNoRows {
			s.logger.Error("querying rate point", zap.String("op", "postgres.queryOne"), zap.Error(err))
		}
		return rateseries.RatePoint{}, false
	}
	return p, true
}

func scanPoint(row pgx.Row) (rateseries.RatePoint, error) {
	var announced, effective time.Time
	var p rateseries.RatePoint
	if err := row.Scan(&announced, &effective, &p.Rate); err != nil {
		return rateseries.RatePoint{}, err
	}
	p.AnnouncementDate = civil.DateOf(announced)
	p.EffectiveDate = civil.DateOf(effective)
	return p, nil
}

// dateArg renders a civil date for the date columns.
func dateArg(d civil.Date) string {
	return d.String()
}
