package store

import (
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// CreateUser stores a new user, defaulting the preferred language.
func (s *Store) CreateUser(in models.NewUser) models.User {
	user := models.User{
		Name:              in.Name,
		Location:          in.Location,
		Phone:             in.Phone,
		PreferredLanguage: in.PreferredLanguage,
	}
	if user.PreferredLanguage == "" {
		user.PreferredLanguage = models.DefaultLanguage
	}
	if user.Phone != nil && *user.Phone == "" {
		user.Phone = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.newID()
	s.users.insert(user.ID, user)
	s.logger.Debug("user created", zap.String("user_id", user.ID))
	return user
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.get(id)
}

// GetUserByPhone returns the first user registered with phone.
func (s *Store) GetUserByPhone(phone string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.users.filter(func(u models.User) bool {
		return u.Phone != nil && *u.Phone == phone
	})
	if len(matches) == 0 {
		return models.User{}, false
	}
	return matches[0], true
}

// ListUsers returns every user in insertion order.
func (s *Store) ListUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.filter(nil)
}
