package store

import (
	"sort"
	"time"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// CreatePriceHistory appends one observation to a (crop, market) series.
func (s *Store) CreatePriceHistory(in models.NewPriceHistory) (models.PriceHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPair(in.CropID, in.MarketID); err != nil {
		return models.PriceHistory{}, err
	}

	row := models.PriceHistory{
		ID:       s.newID(),
		CropID:   in.CropID,
		MarketID: in.MarketID,
		Price:    in.Price,
		Date:     in.Date,
	}
	s.history.insert(row.ID, row)
	return row, nil
}

// PriceHistory returns the observations of a crop dated at or after since,
// oldest first. An empty marketID spans all markets; a zero since returns
// the full series.
func (s *Store) PriceHistory(cropID, marketID string, since time.Time) []models.PriceHistory {
	s.mu.RLock()
	rows := s.history.filter(func(h models.PriceHistory) bool {
		if h.CropID != cropID {
			return false
		}
		if marketID != "" && h.MarketID != marketID {
			return false
		}
		return !h.Date.Before(since)
	})
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// PriceHistoryDays is PriceHistory restricted to the last days days.
func (s *Store) PriceHistoryDays(cropID, marketID string, days int) []models.PriceHistory {
	since := s.now().AddDate(0, 0, -days)
	return s.PriceHistory(cropID, marketID, since)
}
