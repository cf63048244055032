package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// CreateMarketPrice stores the current price of a crop at a market. Both
// references must exist.
func (s *Store) CreateMarketPrice(in models.NewMarketPrice) (models.MarketPrice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPair(in.CropID, in.MarketID); err != nil {
		return models.MarketPrice{}, err
	}

	price := models.MarketPrice{
		ID:            s.newID(),
		CropID:        in.CropID,
		MarketID:      in.MarketID,
		Price:         in.Price,
		MinPrice:      in.MinPrice,
		MaxPrice:      in.MaxPrice,
		Trend:         in.Trend,
		ChangePercent: in.ChangePercent,
		Date:          s.now(),
	}
	if in.Date != nil {
		price.Date = *in.Date
	}

	s.prices.insert(price.ID, price)
	return price, nil
}

// GetMarketPrice returns the raw price row with the given id.
func (s *Store) GetMarketPrice(id string) (models.MarketPrice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices.get(id)
}

// UpdateMarketPrice merges patch into the stored row and returns the result.
// The boolean is false when no row has the id.
func (s *Store) UpdateMarketPrice(id string, patch models.MarketPricePatch) (models.MarketPrice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.prices.get(id)
	if !ok {
		return models.MarketPrice{}, false
	}

	updated := patch.Apply(existing)
	s.prices.insert(id, updated)
	s.logger.Debug("market price updated", zap.String("price_id", id), zap.Float64("price", updated.Price))
	return updated, true
}

// CurrentPrices returns every current price joined with its crop and market.
func (s *Store) CurrentPrices() ([]models.MarketPriceWithDetails, error) {
	return s.joinedPrices(nil)
}

// PricesByMarket returns the joined current prices quoted at one market.
func (s *Store) PricesByMarket(marketID string) ([]models.MarketPriceWithDetails, error) {
	return s.joinedPrices(func(p models.MarketPrice) bool { return p.MarketID == marketID })
}

// PricesByCrop returns the joined current prices of one crop across markets.
func (s *Store) PricesByCrop(cropID string) ([]models.MarketPriceWithDetails, error) {
	return s.joinedPrices(func(p models.MarketPrice) bool { return p.CropID == cropID })
}

func (s *Store) joinedPrices(keep func(models.MarketPrice) bool) ([]models.MarketPriceWithDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.prices.filter(keep)
	out := make([]models.MarketPriceWithDetails, 0, len(rows))
	for _, row := range rows {
		crop, ok := s.crops.get(row.CropID)
		if !ok {
			return nil, fmt.Errorf("price %s: crop %s: %w", row.ID, row.CropID, ErrInvalidReference)
		}
		market, ok := s.markets.get(row.MarketID)
		if !ok {
			return nil, fmt.Errorf("price %s: market %s: %w", row.ID, row.MarketID, ErrInvalidReference)
		}
		out = append(out, models.MarketPriceWithDetails{MarketPrice: row, Crop: crop, Market: market})
	}
	return out, nil
}

// checkPair must be called with the lock held.
func (s *Store) checkPair(cropID, marketID string) error {
	if !s.crops.has(cropID) {
		return fmt.Errorf("crop %s: %w", cropID, ErrInvalidReference)
	}
	if !s.markets.has(marketID) {
		return fmt.Errorf("market %s: %w", marketID, ErrInvalidReference)
	}
	return nil
}
