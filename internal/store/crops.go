package store

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// CreateCrop stores a new crop, defaulting unit and icon.
func (s *Store) CreateCrop(in models.NewCrop) models.Crop {
	crop := models.Crop{
		Name:      in.Name,
		NameLocal: in.NameLocal,
		Category:  in.Category,
		Unit:      in.Unit,
		Icon:      in.Icon,
	}
	if crop.Unit == "" {
		crop.Unit = models.DefaultCropUnit
	}
	if crop.Icon == nil || *crop.Icon == "" {
		crop.Icon = models.String(models.DefaultCropIcon)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	crop.ID = s.newID()
	s.crops.insert(crop.ID, crop)
	s.logger.Debug("crop created", zap.String("crop_id", crop.ID), zap.String("name", crop.Name))
	return crop
}

// GetCrop returns the crop with the given id.
func (s *Store) GetCrop(id string) (models.Crop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.crops.get(id)
}

// GetCropByName returns the first crop whose name matches, ignoring case.
func (s *Store) GetCropByName(name string) (models.Crop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.crops.filter(func(c models.Crop) bool {
		return strings.EqualFold(c.Name, name)
	})
	if len(matches) == 0 {
		return models.Crop{}, false
	}
	return matches[0], true
}

// ListCrops returns every crop in insertion order.
func (s *Store) ListCrops() []models.Crop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.crops.filter(nil)
}
