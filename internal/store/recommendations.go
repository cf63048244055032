package store

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// CreateRecommendation publishes an advisory. The crop, and the user and
// market when given, must exist.
func (s *Store) CreateRecommendation(in models.NewRecommendation) (models.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.crops.has(in.CropID) {
		return models.Recommendation{}, fmt.Errorf("crop %s: %w", in.CropID, ErrInvalidReference)
	}
	if in.UserID != nil && !s.users.has(*in.UserID) {
		return models.Recommendation{}, fmt.Errorf("user %s: %w", *in.UserID, ErrInvalidReference)
	}
	if in.RecommendedMarketID != nil && !s.markets.has(*in.RecommendedMarketID) {
		return models.Recommendation{}, fmt.Errorf("market %s: %w", *in.RecommendedMarketID, ErrInvalidReference)
	}

	rec := models.Recommendation{
		ID:                  s.newID(),
		UserID:              in.UserID,
		CropID:              in.CropID,
		RecommendedMarketID: in.RecommendedMarketID,
		Text:                in.Text,
		Confidence:          in.Confidence,
		ExpectedPrice:       in.ExpectedPrice,
		Timeframe:           in.Timeframe,
		Alert:               in.Alert,
		AlertType:           in.AlertType,
		CreatedAt:           s.now(),
		Active:              in.Active == nil || *in.Active,
	}
	s.recommendations.insert(rec.ID, rec)
	return rec, nil
}

// GetRecommendation returns the recommendation with the given id, active or not.
func (s *Store) GetRecommendation(id string) (models.Recommendation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recommendations.get(id)
}

// ActiveRecommendations returns active recommendations newest first. A non-empty
// userID keeps only that user's recommendations.
func (s *Store) ActiveRecommendations(userID string) []models.Recommendation {
	s.mu.RLock()
	recs := s.recommendations.filter(func(r models.Recommendation) bool {
		if !r.Active {
			return false
		}
		return userID == "" || (r.UserID != nil && *r.UserID == userID)
	})
	s.mu.RUnlock()

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs
}

// DeactivateRecommendation hides a recommendation for good. Deactivating an
// inactive recommendation is a no-op.
func (s *Store) DeactivateRecommendation(id string) (models.Recommendation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recommendations.get(id)
	if !ok {
		return models.Recommendation{}, false
	}
	if rec.Active {
		rec.Active = false
		s.recommendations.insert(id, rec)
		s.logger.Info("recommendation deactivated", zap.String("recommendation_id", id))
	}
	return rec, true
}
