// Package pricing advances the synthetic market prices.
package pricing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/seed"
)

const (
	maxStepRatio   = 0.04 // full width of the random step, relative to the price
	stableBandPct  = 0.5
	quoteHalfRange = 50
)

// Store is the subset of the store the refresher writes to.
type Store interface {
	CurrentPrices() ([]models.MarketPriceWithDetails, error)
	UpdateMarketPrice(id string, patch models.MarketPricePatch) (models.MarketPrice, bool)
	CreatePriceHistory(in models.NewPriceHistory) (models.PriceHistory, error)
}

// RefreshResult describes one refresh run.
type RefreshResult struct {
	Message         string    `json:"message"`
	Updated         int       `json:"updated"`
	HistoryAppended int       `json:"historyAppended"`
	LastSync        time.Time `json:"lastSync"`
}

// Service applies a bounded random walk to every current price.
type Service struct {
	store   Store
	catalog seed.Catalog
	logger  *zap.Logger
	now     func() time.Time

	mu  sync.Mutex
	rng seed.Random
}

// NewService wires a refresher. Crop price bands come from catalog.
func NewService(store Store, catalog seed.Catalog, rng seed.Random, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, catalog: catalog, rng: rng, now: now, logger: logger}
}

// Refresh moves every current price one step, keeps it inside its crop band
// and records the new price in the history.
func (s *Service) Refresh(ctx context.Context) (RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prices, err := s.store.CurrentPrices()
	if err != nil {
		return RefreshResult{}, fmt.Errorf("load current prices: %w", err)
	}

	result := RefreshResult{LastSync: now}
	for _, p := range prices {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		next := s.step(p)
		if _, ok := s.store.UpdateMarketPrice(p.ID, next); !ok {
			s.logger.Warn("price vanished during refresh", zap.String("price_id", p.ID))
			continue
		}
		result.Updated++

		_, err := s.store.CreatePriceHistory(models.NewPriceHistory{
			CropID:   p.CropID,
			MarketID: p.MarketID,
			Price:    *next.Price,
			Date:     now,
		})
		if err != nil {
			return result, fmt.Errorf("append history for %s@%s: %w", p.Crop.Name, p.Market.Name, err)
		}
		result.HistoryAppended++
	}

	result.Message = "Price data refreshed successfully"
	s.logger.Info("prices refreshed", zap.Int("updated", result.Updated), zap.Time("last_sync", now))
	return result, nil
}

func (s *Service) step(p models.MarketPriceWithDetails) models.MarketPricePatch {
	band, ok := s.catalog.Band(p.Crop.Name)
	if !ok {
		band = seed.PriceBand{Base: p.Price, Min: p.Price * 0.9, Max: p.Price * 1.1}
	}

	delta := (s.rng.Float64() - 0.5) * maxStepRatio * p.Price
	price := math.Round(band.Clamp(p.Price + delta))
	change := math.Round((price-p.Price)/p.Price*1000) / 10
	trend := TrendOf(change)
	now := s.now()

	return models.MarketPricePatch{
		Price:         models.Float(price),
		MinPrice:      models.Float(price - quoteHalfRange),
		MaxPrice:      models.Float(price + quoteHalfRange),
		Date:          &now,
		Trend:         &trend,
		ChangePercent: models.Float(change),
	}
}

// TrendOf tags a percent change.
func TrendOf(changePercent float64) models.Trend {
	switch {
	case changePercent > stableBandPct:
		return models.TrendRising
	case changePercent < -stableBandPct:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}
