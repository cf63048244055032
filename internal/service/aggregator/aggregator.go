// Package aggregator derives the dashboard views from raw store rows.
package aggregator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

const (
	// BenchmarkCrop is the crop whose prices headline the dashboard.
	BenchmarkCrop = "Wheat"
	// SecondaryCrop is compared next to the benchmark in the nearby markets table.
	SecondaryCrop = "Rice"
	// DashboardPriceRows is how many joined prices the dashboard carries.
	DashboardPriceRows = 3
)

var (
	// ErrNoData indicates an aggregate was requested over zero rows.
	ErrNoData = errors.New("no data")
	// ErrUserNotFound indicates the dashboard owner does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrCropNotFound indicates the requested crop does not exist.
	ErrCropNotFound = errors.New("crop not found")
)

// Reader is the subset of the store the aggregator reads from.
type Reader interface {
	GetUser(id string) (models.User, bool)
	ListUsers() []models.User
	CreateUser(in models.NewUser) models.User
	GetCrop(id string) (models.Crop, bool)
	GetCropByName(name string) (models.Crop, bool)
	CurrentPrices() ([]models.MarketPriceWithDetails, error)
	PricesByCrop(cropID string) ([]models.MarketPriceWithDetails, error)
	PriceHistory(cropID, marketID string, since time.Time) []models.PriceHistory
	NearbyMarkets(location string, limit int) []models.Market
	ActiveRecommendations(userID string) []models.Recommendation
}

// DefaultUser is registered when the default dashboard is requested on an empty store.
var DefaultUser = models.NewUser{
	Name:              "Rajesh Kumar",
	Location:          "Bangalore, Karnataka",
	Phone:             models.String("+919876543210"),
	PreferredLanguage: models.DefaultLanguage,
}

// Service assembles dashboard aggregates.
type Service struct {
	reader      Reader
	nearbyLimit int
	location    *time.Location
	logger      *zap.Logger
}

// NewService wires a new aggregator. nearbyLimit bounds the market comparison
// table. Chart days are cut in UTC until InLocation says otherwise.
func NewService(reader Reader, nearbyLimit int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, nearbyLimit: nearbyLimit, location: time.UTC, logger: logger}
}

// InLocation sets the timezone whose calendar days the charts are bucketed by.
func (s *Service) InLocation(loc *time.Location) *Service {
	if loc != nil {
		s.location = loc
	}
	return s
}

// PriceSummary is the best price and average trend of one crop across markets.
type PriceSummary struct {
	Crop          models.Crop   `json:"crop"`
	BestPrice     float64       `json:"bestPrice"`
	BestMarket    models.Market `json:"bestMarket"`
	AverageChange float64       `json:"averageChange"`
	Quotes        int           `json:"quotes"`
}

// BestPrice summarizes the current prices of the named crop. It returns
// ErrNoData when the crop is unknown or has no price rows.
func (s *Service) BestPrice(cropName string) (PriceSummary, error) {
	crop, ok := s.reader.GetCropByName(cropName)
	if !ok {
		return PriceSummary{}, fmt.Errorf("crop %q: %w", cropName, ErrNoData)
	}

	rows, err := s.reader.PricesByCrop(crop.ID)
	if err != nil {
		return PriceSummary{}, fmt.Errorf("load prices for %s: %w", crop.Name, err)
	}

	summary, err := Summarize(rows)
	if err != nil {
		return PriceSummary{}, fmt.Errorf("crop %q: %w", cropName, err)
	}
	summary.Crop = crop
	return summary, nil
}

// Summarize computes the maximum price and the mean change percent of rows,
// counting a missing change percent as zero.
func Summarize(rows []models.MarketPriceWithDetails) (PriceSummary, error) {
	if len(rows) == 0 {
		return PriceSummary{}, ErrNoData
	}

	best := rows[0]
	var totalChange float64
	for _, row := range rows {
		if row.Price > best.Price {
			best = row
		}
		if row.ChangePercent != nil {
			totalChange += *row.ChangePercent
		}
	}

	return PriceSummary{
		Crop:          best.Crop,
		BestPrice:     best.Price,
		BestMarket:    best.Market,
		AverageChange: totalChange / float64(len(rows)),
		Quotes:        len(rows),
	}, nil
}

// Chart derives the trend chart of a crop, optionally restricted to one market.
func (s *Service) Chart(cropID, marketID string) (models.PriceChartData, error) {
	if _, ok := s.reader.GetCrop(cropID); !ok {
		return models.PriceChartData{}, fmt.Errorf("crop %s: %w", cropID, ErrCropNotFound)
	}
	history := s.reader.PriceHistory(cropID, marketID, time.Time{})
	return BuildChart(history, s.location), nil
}

// CompareMarkets lists nearby markets with their benchmark and secondary crop quotes.
func (s *Service) CompareMarkets(location string, limit int) ([]models.MarketComparison, error) {
	prices, err := s.reader.CurrentPrices()
	if err != nil {
		return nil, fmt.Errorf("load current prices: %w", err)
	}
	return compare(s.reader.NearbyMarkets(location, limit), prices), nil
}

func compare(markets []models.Market, prices []models.MarketPriceWithDetails) []models.MarketComparison {
	out := make([]models.MarketComparison, 0, len(markets))
	for _, market := range markets {
		row := models.MarketComparison{Market: market, Trend: models.TrendStable}

		if wheat, ok := quoteAt(prices, market.ID, BenchmarkCrop); ok {
			row.WheatPrice = models.Float(wheat.Price)
			row.WheatChange = valueOrZero(wheat.ChangePercent)
			if wheat.Trend != nil {
				row.Trend = *wheat.Trend
			}
		}
		if rice, ok := quoteAt(prices, market.ID, SecondaryCrop); ok {
			row.RicePrice = models.Float(rice.Price)
			row.RiceChange = valueOrZero(rice.ChangePercent)
		}

		out = append(out, row)
	}
	return out
}

func quoteAt(prices []models.MarketPriceWithDetails, marketID, cropName string) (models.MarketPriceWithDetails, bool) {
	for _, p := range prices {
		if p.MarketID == marketID && strings.EqualFold(p.Crop.Name, cropName) {
			return p, true
		}
	}
	return models.MarketPriceWithDetails{}, false
}

// Dashboard assembles the landing page of a user.
func (s *Service) Dashboard(userID string) (models.Dashboard, error) {
	user, ok := s.reader.GetUser(userID)
	if !ok {
		return models.Dashboard{}, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	return s.assemble(user)
}

// DefaultDashboard assembles the dashboard of the first registered user,
// registering DefaultUser when the store has none.
func (s *Service) DefaultDashboard() (models.Dashboard, error) {
	users := s.reader.ListUsers()
	if len(users) == 0 {
		user := s.reader.CreateUser(DefaultUser)
		s.logger.Info("default user registered", zap.String("user_id", user.ID))
		return s.assemble(user)
	}
	return s.assemble(users[0])
}

func (s *Service) assemble(user models.User) (models.Dashboard, error) {
	prices, err := s.reader.CurrentPrices()
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("load current prices: %w", err)
	}

	dashboard := models.Dashboard{
		User:             user,
		BestPriceDisplay: FormatRupees(nil),
		MarketPrices:     prices[:min(DashboardPriceRows, len(prices))],
		Recommendations:  s.reader.ActiveRecommendations(user.ID),
		PriceChart:       models.EmptyChart(),
		NearbyMarkets:    compare(s.reader.NearbyMarkets(user.Location, s.nearbyLimit), prices),
	}

	summary, err := s.BestPrice(BenchmarkCrop)
	switch {
	case err == nil:
		dashboard.TodaysBestPrice = models.Float(summary.BestPrice)
		dashboard.PriceTrend = models.Float(summary.AverageChange)
		dashboard.BestPriceDisplay = FormatRupees(dashboard.TodaysBestPrice)
	case errors.Is(err, ErrNoData):
		s.logger.Warn("benchmark prices unavailable", zap.String("crop", BenchmarkCrop))
	default:
		return models.Dashboard{}, err
	}

	if crop, ok := s.reader.GetCropByName(BenchmarkCrop); ok {
		dashboard.PriceChart = BuildChart(s.reader.PriceHistory(crop.ID, "", time.Time{}), s.location)
	}

	return dashboard, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
