package timeseries

import (
	"sort"
	"strings"
	"sync"
	"time"

	"AgriPulse/internal/domain/models"
	"AgriPulse/pkg/util"
)

// Store holds raw dated price observations in memory and serves
// filtered and aggregated views of them. All methods are safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	points []models.PricePoint
	now    func() time.Time
}

// StoreOption configures Store.
type StoreOption func(*Store)

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty observation store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest appends observations. Points are immutable once stored.
func (s *Store) Ingest(points ...models.PricePoint) {
	if len(points) == 0 {
		return
	}
	s.mu.Lock()
	s.points = append(s.points, points...)
	s.mu.Unlock()
}

// Len returns the number of stored observations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Query returns observations for a commodity filtered by optional region
// and market, restricted to the trailing window, ascending by date.
// Matching is case-insensitive; no match returns an empty slice.
func (s *Store) Query(commodity, region, market string, windowDays int) []models.PricePoint {
	cutoff := s.cutoff(windowDays)

	s.mu.RLock()
	out := make([]models.PricePoint, 0)
	for _, p := range s.points {
		if !matchToken(p.Commodity, commodity) {
			continue
		}
		if region != "" && !matchToken(p.Region, region) {
			continue
		}
		if market != "" && !matchToken(p.Market, market) {
			continue
		}
		if p.Date.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// AggregateForModeling returns one price per day for a series, averaging
// the modal price across markets when market is unset. Output is ascending
// by date and suitable as model training input.
func (s *Store) AggregateForModeling(commodity, region, market string, windowDays int) []models.DatedPrice {
	points := s.Query(commodity, region, market, windowDays)
	if len(points) == 0 {
		return nil
	}

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, p := range points {
		day := util.DayFloor(p.Date)
		sums[day] += p.ModalPrice
		counts[day]++
	}

	out := make([]models.DatedPrice, 0, len(sums))
	for day, sum := range sums {
		out = append(out, models.DatedPrice{
			Date:  day,
			Price: sum / float64(counts[day]),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (s *Store) cutoff(windowDays int) time.Time {
	if windowDays <= 0 {
		windowDays = 30
	}
	return s.now().AddDate(0, 0, -windowDays)
}

func matchToken(have, want string) bool {
	return strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want))
}
