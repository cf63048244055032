// Package seed fills a store with synthetic market data.
package seed

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/store"
)

// Random is the source of randomness used to generate prices. *rand.Rand from
// math/rand/v2 satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Seeder expands a Catalog into a populated store.
type Seeder struct {
	catalog Catalog
	rng     Random
	now     func() time.Time
	logger  *zap.Logger
}

// NewSeeder wires a seeder. A nil now defaults to time.Now.
func NewSeeder(catalog Catalog, rng Random, now func() time.Time, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Seeder{catalog: catalog, rng: rng, now: now, logger: logger}
}

// Catalog returns the data set the seeder loads.
func (s *Seeder) Catalog() Catalog { return s.catalog }

// Load writes the catalog and the generated prices, history and
// recommendations into st.
func (s *Seeder) Load(st *store.Store) error {
	now := s.now()

	crops := make([]models.Crop, 0, len(s.catalog.Crops))
	bands := make(map[string]PriceBand, len(s.catalog.Crops))
	for _, spec := range s.catalog.Crops {
		crop := st.CreateCrop(spec.Crop)
		crops = append(crops, crop)
		bands[crop.ID] = spec.Band
	}

	markets := make([]models.Market, 0, len(s.catalog.Markets))
	for _, in := range s.catalog.Markets {
		markets = append(markets, st.CreateMarket(in))
	}

	users := make([]models.User, 0, len(s.catalog.Users))
	for _, in := range s.catalog.Users {
		users = append(users, st.CreateUser(in))
	}

	for _, crop := range crops {
		band := bands[crop.ID]
		for _, market := range markets {
			if err := s.loadPair(st, crop, market, band, now); err != nil {
				return err
			}
		}
	}

	for _, spec := range s.catalog.Recommendations {
		if err := s.loadRecommendation(st, spec, users); err != nil {
			return err
		}
	}

	counts := st.Counts()
	s.logger.Info("store seeded",
		zap.Int("crops", counts.Crops),
		zap.Int("markets", counts.Markets),
		zap.Int("prices", counts.Prices),
		zap.Int("history", counts.History),
		zap.Int("recommendations", counts.Recommendations))
	return nil
}

func (s *Seeder) loadPair(st *store.Store, crop models.Crop, market models.Market, band PriceBand, now time.Time) error {
	price := band.Clamp(math.Round(band.Base + s.spread(200)))
	change := math.Round(s.spread(20)*10) / 10
	trend := models.Trends[s.rng.IntN(len(models.Trends))]

	_, err := st.CreateMarketPrice(models.NewMarketPrice{
		CropID:        crop.ID,
		MarketID:      market.ID,
		Price:         price,
		MinPrice:      models.Float(price - 50),
		MaxPrice:      models.Float(price + 50),
		Date:          &now,
		Trend:         &trend,
		ChangePercent: models.Float(change),
	})
	if err != nil {
		return fmt.Errorf("seed price %s@%s: %w", crop.Name, market.Name, err)
	}

	for day := 0; day < s.catalog.HistoryDays; day++ {
		_, err := st.CreatePriceHistory(models.NewPriceHistory{
			CropID:   crop.ID,
			MarketID: market.ID,
			Price:    band.Clamp(math.Round(band.Base + s.spread(300))),
			Date:     now.AddDate(0, 0, -day),
		})
		if err != nil {
			return fmt.Errorf("seed history %s@%s: %w", crop.Name, market.Name, err)
		}
	}
	return nil
}

func (s *Seeder) loadRecommendation(st *store.Store, spec RecommendationSpec, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	crop, ok := st.GetCropByName(spec.CropName)
	if !ok {
		s.logger.Warn("skip recommendation for unknown crop", zap.String("crop", spec.CropName))
		return nil
	}

	in := models.NewRecommendation{
		UserID:        &users[0].ID,
		CropID:        crop.ID,
		Text:          spec.Text,
		Confidence:    spec.Confidence,
		ExpectedPrice: models.Float(spec.ExpectedPrice),
		Timeframe:     models.String(spec.Timeframe),
	}
	if spec.Alert != "" {
		alertType := spec.AlertType
		in.Alert = models.String(spec.Alert)
		in.AlertType = &alertType
	}
	for _, market := range st.ListMarkets() {
		if market.Name == spec.MarketName {
			in.RecommendedMarketID = &market.ID
			break
		}
	}

	if _, err := st.CreateRecommendation(in); err != nil {
		return fmt.Errorf("seed recommendation for %s: %w", spec.CropName, err)
	}
	return nil
}

// spread returns a uniform value in [-width/2, width/2).
func (s *Seeder) spread(width float64) float64 {
	return (s.rng.Float64() - 0.5) * width
}
