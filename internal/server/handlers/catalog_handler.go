package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

// CatalogStore holds the reference entities.
type CatalogStore interface {
	CreateUser(in models.NewUser) models.User
	GetUser(id string) (models.User, bool)
	ListUsers() []models.User
	CreateCrop(in models.NewCrop) models.Crop
	GetCrop(id string) (models.Crop, bool)
	ListCrops() []models.Crop
	CreateMarket(in models.NewMarket) models.Market
	GetMarket(id string) (models.Market, bool)
	ListMarkets() []models.Market
	NearbyMarkets(location string, limit int) []models.Market
}

// MarketComparer builds the nearby markets table.
type MarketComparer interface {
	CompareMarkets(location string, limit int) ([]models.MarketComparison, error)
}

// CatalogHandler serves users, crops and markets.
type CatalogHandler struct {
	store       CatalogStore
	comparer    MarketComparer
	nearbyLimit int
	logger      *zap.Logger
}

// NewCatalogHandler constructs the catalog handler. nearbyLimit is the default
// page size of the nearby market endpoints.
func NewCatalogHandler(store CatalogStore, comparer MarketComparer, nearbyLimit int, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{store: store, comparer: comparer, nearbyLimit: nearbyLimit, logger: logger}
}

// ListUsers returns every user.
func (h *CatalogHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListUsers())
}

// CreateUser registers a user.
func (h *CatalogHandler) CreateUser(c *gin.Context) {
	var in models.NewUser
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Debug("invalid user payload", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	c.JSON(http.StatusCreated, h.store.CreateUser(in))
}

// GetUser returns one user.
func (h *CatalogHandler) GetUser(c *gin.Context) {
	user, ok := h.store.GetUser(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListCrops returns every crop.
func (h *CatalogHandler) ListCrops(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListCrops())
}

// CreateCrop registers a crop.
func (h *CatalogHandler) CreateCrop(c *gin.Context) {
	var in models.NewCrop
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Debug("invalid crop payload", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	c.JSON(http.StatusCreated, h.store.CreateCrop(in))
}

// GetCrop returns one crop.
func (h *CatalogHandler) GetCrop(c *gin.Context) {
	crop, ok := h.store.GetCrop(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "crop not found")
		return
	}
	c.JSON(http.StatusOK, crop)
}

// ListMarkets returns every market.
func (h *CatalogHandler) ListMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListMarkets())
}

// CreateMarket registers a market.
func (h *CatalogHandler) CreateMarket(c *gin.Context) {
	var in models.NewMarket
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Debug("invalid market payload", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}
	c.JSON(http.StatusCreated, h.store.CreateMarket(in))
}

// GetMarket returns one market.
func (h *CatalogHandler) GetMarket(c *gin.Context) {
	market, ok := h.store.GetMarket(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "market not found")
		return
	}
	c.JSON(http.StatusOK, market)
}

// NearbyMarkets returns the markets closest to ?location=.
func (h *CatalogHandler) NearbyMarkets(c *gin.Context) {
	limit, err := queryInt(c, "limit", h.nearbyLimit)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.store.NearbyMarkets(c.Query("location"), limit))
}

// CompareMarkets returns the nearby markets with their wheat and rice quotes.
func (h *CatalogHandler) CompareMarkets(c *gin.Context) {
	limit, err := queryInt(c, "limit", h.nearbyLimit)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.comparer.CompareMarkets(c.Query("location"), limit)
	if err != nil {
		h.logger.Error("failed to compare markets", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to compare markets")
		return
	}
	c.JSON(http.StatusOK, rows)
}
