// Package rateseries maintains a date-indexed time series of a floating
// reference rate and answers point and time-weighted range queries over it.
package rateseries

import (
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/constants"
)

// RatePoint is one immutable reference-rate fact: the rate announced on
// AnnouncementDate which legally takes effect on EffectiveDate.
type RatePoint struct {
	AnnouncementDate civil.Date
	EffectiveDate    civil.Date
	Rate             float64
}

// NewRatePoint builds a point from an announcement date and rate, deriving
// the effective date from the fixed announcement lag.
func NewRatePoint(announced civil.Date, rate float64) RatePoint {
	return RatePoint{
		AnnouncementDate: announced,
		EffectiveDate:    announced.AddDays(constants.EffectiveLagDays),
		Rate:             rate,
	}
}

// Store is the authoritative series of rate points for one indicator. At
// most one point exists per announcement date. Read methods fail soft so
// that callers fall back to defaults rather than abort.
type Store interface {
	// Upsert inserts or overwrites points keyed by announcement date and
	// returns the number of points affected. Empty input is not an error.
	Upsert(points []RatePoint) (int, error)
	// Latest returns the point with the greatest effective date.
	Latest() (RatePoint, bool)
	// AtOrBefore returns the point with the greatest effective date that is
	// not after the given date.
	AtOrBefore(date civil.Date) (RatePoint, bool)
	// Range returns points whose effective date falls in [from, to],
	// ascending by effective date.
	Range(from, to civil.Date) []RatePoint
}

// MemoryStore is an in-memory Store implementation. It is safe for
// concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[civil.Date]RatePoint // keyed by announcement date
}

var _ Store = &MemoryStore{}

// NewMemoryStore creates an empty in-memory rate store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		points: make(map[civil.Date]RatePoint),
	}
}

// Upsert inserts new points and overwrites the rate and effective date of
// points that share an announcement date with an existing one.
func (s *MemoryStore) Upsert(points []RatePoint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		s.points[p.AnnouncementDate] = p
	}
	return len(points), nil
}

// Latest returns the point with the greatest effective date.
func (s *MemoryStore) Latest() (RatePoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest RatePoint
	found := false
	for _, p := range s.points {
		if !found || p.EffectiveDate.After(latest.EffectiveDate) {
			latest = p
			found = true
		}
	}
	return latest, found
}

// AtOrBefore returns the point with the greatest effective date that is not
// after the given date.
func (s *MemoryStore) AtOrBefore(date civil.Date) (RatePoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best RatePoint
	found := false
	for _, p := range s.points {
		if p.EffectiveDate.After(date) {
			continue
		}
		if !found || p.EffectiveDate.After(best.EffectiveDate) {
			best = p
			found = true
		}
	}
	return best, found
}

// Range returns points whose effective date falls in [from, to], ascending
// by effective date.
func (s *MemoryStore) Range(from, to civil.Date) []RatePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var points []RatePoint
	for _, p := range s.points {
		if p.EffectiveDate.Before(from) || p.EffectiveDate.After(to) {
			continue
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].EffectiveDate.Before(points[j].EffectiveDate)
	})
	return points
}
