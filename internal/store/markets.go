package store

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// DefaultNearbyLimit caps NearbyMarkets when no positive limit is given.
const DefaultNearbyLimit = 10

// CreateMarket stores a new market, defaulting the market type.
func (s *Store) CreateMarket(in models.NewMarket) models.Market {
	market := models.Market{
		Name:       in.Name,
		Location:   in.Location,
		District:   in.District,
		State:      in.State,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		DistanceKm: in.DistanceKm,
		MarketType: in.MarketType,
	}
	if market.MarketType == "" {
		market.MarketType = models.DefaultMarketType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	market.ID = s.newID()
	s.markets.insert(market.ID, market)
	s.logger.Debug("market created", zap.String("market_id", market.ID), zap.String("name", market.Name))
	return market
}

// GetMarket returns the market with the given id.
func (s *Store) GetMarket(id string) (models.Market, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markets.get(id)
}

// ListMarkets returns every market in insertion order.
func (s *Store) ListMarkets() []models.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markets.filter(nil)
}

// NearbyMarkets returns up to limit markets closest first, using the distance
// stored on each market. The location is not geocoded: stored distances are
// already relative to the farmer's region. Markets without a distance come last.
func (s *Store) NearbyMarkets(location string, limit int) []models.Market {
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	markets := s.ListMarkets()
	sort.SliceStable(markets, func(i, j int) bool {
		a, b := markets[i].DistanceKm, markets[j].DistanceKm
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})

	if len(markets) > limit {
		markets = markets[:limit]
	}
	return markets
}
