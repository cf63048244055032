// Package reporting turns aggregates into daily snapshots and short text summaries.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/service/aggregator"
)

const dateLayout = "2006-01-02"

// SnapshotSink archives daily snapshots.
type SnapshotSink interface {
	SaveDailySnapshot(ctx context.Context, snapshot models.DailySnapshot) error
}

// Aggregates is the part of the aggregator the reports are built from.
type Aggregates interface {
	BestPrice(cropName string) (aggregator.PriceSummary, error)
	CompareMarkets(location string, limit int) ([]models.MarketComparison, error)
}

// Reader is the part of the store the text summaries read.
type Reader interface {
	GetCropByName(name string) (models.Crop, bool)
	GetMarket(id string) (models.Market, bool)
	PricesByCrop(cropID string) ([]models.MarketPriceWithDetails, error)
	ActiveRecommendations(userID string) []models.Recommendation
}

// Service exposes the reporting operations.
type Service struct {
	aggregates Aggregates
	reader     Reader
	sinks      []SnapshotSink
	logger     *zap.Logger
}

// NewService wires a new reporting service instance. Sinks may be empty.
func NewService(aggregates Aggregates, reader Reader, sinks []SnapshotSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{aggregates: aggregates, reader: reader, sinks: sinks, logger: logger}
}

// BuildDailySnapshot captures the benchmark crop's market picture at now.
func (s *Service) BuildDailySnapshot(ctx context.Context, now time.Time) (models.DailySnapshot, error) {
	y, m, d := now.Date()
	snapshot := models.DailySnapshot{
		Date:      time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		CropName:  aggregator.BenchmarkCrop,
		CreatedAt: now,
	}

	summary, err := s.aggregates.BestPrice(aggregator.BenchmarkCrop)
	switch {
	case err == nil:
		snapshot.BestPrice = models.Float(summary.BestPrice)
		snapshot.AverageChange = models.Float(summary.AverageChange)
	case errors.Is(err, aggregator.ErrNoData):
		s.logger.Warn("snapshot without benchmark prices", zap.Error(err))
	default:
		return models.DailySnapshot{}, fmt.Errorf("benchmark summary: %w", err)
	}

	rows, err := s.aggregates.CompareMarkets("", 0)
	if err != nil {
		return models.DailySnapshot{}, fmt.Errorf("market comparison: %w", err)
	}
	snapshot.Markets = make([]models.SnapshotMarket, 0, len(rows))
	for _, row := range rows {
		snapshot.Markets = append(snapshot.Markets, models.SnapshotMarket{
			MarketID:      row.ID,
			MarketName:    row.Name,
			Price:         row.WheatPrice,
			ChangePercent: row.WheatChange,
			Trend:         row.Trend,
		})
	}

	return snapshot, ctx.Err()
}

// PublishDailySnapshot builds the snapshot and writes it to every sink
// concurrently. All sinks are attempted; the first failure is returned.
func (s *Service) PublishDailySnapshot(ctx context.Context, now time.Time) (models.DailySnapshot, error) {
	snapshot, err := s.BuildDailySnapshot(ctx, now)
	if err != nil {
		return models.DailySnapshot{}, err
	}

	var g errgroup.Group
	for _, sink := range s.sinks {
		g.Go(func() error {
			if err := sink.SaveDailySnapshot(ctx, snapshot); err != nil {
				s.logger.Error("failed to save daily snapshot", zap.Error(err))
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return snapshot, err
	}

	s.logger.Info("daily snapshot published",
		zap.String("date", snapshot.Date.Format(dateLayout)),
		zap.Int("sinks", len(s.sinks)))
	return snapshot, nil
}

// CropPricesText lists the current prices of a crop across markets.
func (s *Service) CropPricesText(cropName string) (string, error) {
	crop, ok := s.reader.GetCropByName(cropName)
	if !ok {
		return fmt.Sprintf("No crop named %q. Try wheat, rice or maize.", cropName), nil
	}

	rows, err := s.reader.PricesByCrop(crop.ID)
	if err != nil {
		return "", fmt.Errorf("load %s prices: %w", crop.Name, err)
	}
	if len(rows) == 0 {
		return fmt.Sprintf("%s: no prices recorded yet.", crop.Name), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s prices (per %s):", crop.Name, crop.Unit)
	for _, row := range rows {
		fmt.Fprintf(&b, "\n- %s: %s", row.Market.Name, aggregator.FormatRupees(models.Float(row.Price)))
		if row.Trend != nil {
			fmt.Fprintf(&b, " %s", *row.Trend)
		}
		if row.ChangePercent != nil {
			fmt.Fprintf(&b, " (%+.1f%%)", *row.ChangePercent)
		}
	}
	return b.String(), nil
}

// BestPriceText reports the benchmark crop's best price and average trend.
func (s *Service) BestPriceText() (string, error) {
	summary, err := s.aggregates.BestPrice(aggregator.BenchmarkCrop)
	if errors.Is(err, aggregator.ErrNoData) {
		return fmt.Sprintf("Best %s price today: %s.", aggregator.BenchmarkCrop, aggregator.NotAvailable), nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Best %s price today: %s at %s. Average change %+.1f%% across %d markets.",
		summary.Crop.Name,
		aggregator.FormatRupees(models.Float(summary.BestPrice)),
		summary.BestMarket.Name,
		summary.AverageChange,
		summary.Quotes), nil
}

// MarketsText renders the nearby markets comparison.
func (s *Service) MarketsText(location string) (string, error) {
	rows, err := s.aggregates.CompareMarkets(location, 0)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "No markets available.", nil
	}

	var b strings.Builder
	b.WriteString("Nearby markets:")
	for _, row := range rows {
		distance := aggregator.NotAvailable
		if row.DistanceKm != nil {
			distance = fmt.Sprintf("%d km", *row.DistanceKm)
		}
		fmt.Fprintf(&b, "\n- %s (%s): %s %s, %s %s, %s",
			row.Name, distance,
			aggregator.BenchmarkCrop, aggregator.FormatRupees(row.WheatPrice),
			aggregator.SecondaryCrop, aggregator.FormatRupees(row.RicePrice),
			row.Trend)
	}
	return b.String(), nil
}

// AdviceText renders the active recommendations of a user.
func (s *Service) AdviceText(userID string) string {
	recs := s.reader.ActiveRecommendations(userID)
	if len(recs) == 0 {
		return "No advice for you right now."
	}

	var b strings.Builder
	for i, rec := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s] %s", rec.Confidence, rec.Text)
		if rec.RecommendedMarketID != nil {
			if market, ok := s.reader.GetMarket(*rec.RecommendedMarketID); ok {
				fmt.Fprintf(&b, "\nMarket: %s", market.Name)
			}
		}
		if rec.Alert != nil {
			fmt.Fprintf(&b, "\nAlert: %s", *rec.Alert)
		}
	}
	return b.String()
}
