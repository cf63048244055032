package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/store"
)

// RecommendationStore holds advisories.
type RecommendationStore interface {
	CreateRecommendation(in models.NewRecommendation) (models.Recommendation, error)
	ActiveRecommendations(userID string) []models.Recommendation
	DeactivateRecommendation(id string) (models.Recommendation, bool)
}

// RecommendationHandler serves selling advisories.
type RecommendationHandler struct {
	store  RecommendationStore
	logger *zap.Logger
}

// NewRecommendationHandler constructs the recommendation handler.
func NewRecommendationHandler(store RecommendationStore, logger *zap.Logger) *RecommendationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationHandler{store: store, logger: logger}
}

// List returns active recommendations newest first, for ?userId= when given.
func (h *RecommendationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ActiveRecommendations(c.Query("userId")))
}

// Create publishes a recommendation.
func (h *RecommendationHandler) Create(c *gin.Context) {
	var in models.NewRecommendation
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Debug("invalid recommendation payload", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.store.CreateRecommendation(in)
	if errors.Is(err, store.ErrInvalidReference) {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to create recommendation", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to create recommendation")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Deactivate hides a recommendation.
func (h *RecommendationHandler) Deactivate(c *gin.Context) {
	rec, ok := h.store.DeactivateRecommendation(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "recommendation not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}
