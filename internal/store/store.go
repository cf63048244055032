// Package store keeps every entity of the dashboard in memory and answers the
// lookups, filters and joins the services need.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// ErrInvalidReference indicates a row points at a crop, market or user that does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// Option customizes a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// WithClock replaces time.Now for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the in-memory database. The zero value is not usable; call New.
// A single RWMutex guards all collections.
type Store struct {
	mu sync.RWMutex

	users           *table[models.User]
	crops           *table[models.Crop]
	markets         *table[models.Market]
	prices          *table[models.MarketPrice]
	history         *table[models.PriceHistory]
	recommendations *table[models.Recommendation]

	newID  func() string
	now    func() time.Time
	logger *zap.Logger
}

// New builds an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		users:           newTable[models.User](),
		crops:           newTable[models.Crop](),
		markets:         newTable[models.Market](),
		prices:          newTable[models.MarketPrice](),
		history:         newTable[models.PriceHistory](),
		recommendations: newTable[models.Recommendation](),
		newID:           uuid.NewString,
		now:             time.Now,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Counts reports the size of each collection.
type Counts struct {
	Users           int `json:"users"`
	Crops           int `json:"crops"`
	Markets         int `json:"markets"`
	Prices          int `json:"prices"`
	History         int `json:"history"`
	Recommendations int `json:"recommendations"`
}

// Counts returns the number of rows per collection.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Users:           s.users.len(),
		Crops:           s.crops.len(),
		Markets:         s.markets.len(),
		Prices:          s.prices.len(),
		History:         s.history.len(),
		Recommendations: s.recommendations.len(),
	}
}

// table is a map that remembers insertion order.
type table[T any] struct {
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) insert(id string, row T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) len() int { return len(t.order) }

// filter returns rows matching keep in insertion order. A nil keep returns all rows.
func (t *table[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}
