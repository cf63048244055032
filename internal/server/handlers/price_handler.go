package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/service/aggregator"
	"github.com/mamadbah2/mandi/internal/service/export"
	"github.com/mamadbah2/mandi/internal/service/pricing"
	"github.com/mamadbah2/mandi/internal/store"
)

// DefaultHistoryDays is the history window when ?days= is absent.
const DefaultHistoryDays = 30

// PriceStore holds prices and their history.
type PriceStore interface {
	GetCrop(id string) (models.Crop, bool)
	GetMarket(id string) (models.Market, bool)
	CreateMarketPrice(in models.NewMarketPrice) (models.MarketPrice, error)
	UpdateMarketPrice(id string, patch models.MarketPricePatch) (models.MarketPrice, bool)
	CurrentPrices() ([]models.MarketPriceWithDetails, error)
	PricesByMarket(marketID string) ([]models.MarketPriceWithDetails, error)
	PricesByCrop(cropID string) ([]models.MarketPriceWithDetails, error)
	CreatePriceHistory(in models.NewPriceHistory) (models.PriceHistory, error)
	PriceHistoryDays(cropID, marketID string, days int) []models.PriceHistory
}

// PriceAggregates derives price summaries and charts.
type PriceAggregates interface {
	BestPrice(cropName string) (aggregator.PriceSummary, error)
	Chart(cropID, marketID string) (models.PriceChartData, error)
}

// Refresher advances the synthetic prices on demand.
type Refresher interface {
	Refresh(ctx context.Context) (pricing.RefreshResult, error)
}

// PriceHandler serves current prices, history and charts.
type PriceHandler struct {
	store      PriceStore
	aggregates PriceAggregates
	refresher  Refresher
	logger     *zap.Logger
}

// NewPriceHandler constructs the price handler.
func NewPriceHandler(store PriceStore, aggregates PriceAggregates, refresher Refresher, logger *zap.Logger) *PriceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceHandler{store: store, aggregates: aggregates, refresher: refresher, logger: logger}
}

// List returns every current price joined with its crop and market.
func (h *PriceHandler) List(c *gin.Context) {
	h.respondJoined(c, h.store.CurrentPrices)
}

// ByMarket returns the current prices at one market.
func (h *PriceHandler) ByMarket(c *gin.Context) {
	marketID := c.Param("marketId")
	h.respondJoined(c, func() ([]models.MarketPriceWithDetails, error) { return h.store.PricesByMarket(marketID) })
}

// ByCrop returns the current prices of one crop.
func (h *PriceHandler) ByCrop(c *gin.Context) {
	cropID := c.Param("cropId")
	h.respondJoined(c, func() ([]models.MarketPriceWithDetails, error) { return h.store.PricesByCrop(cropID) })
}

func (h *PriceHandler) respondJoined(c *gin.Context, load func() ([]models.MarketPriceWithDetails, error)) {
	rows, err := load()
	if err != nil {
		h.logger.Error("failed to join prices", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to load prices")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Create records a current price.
func (h *PriceHandler) Create(c *gin.Context) {
	var in models.NewMarketPrice
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Debug("invalid price payload", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := h.store.CreateMarketPrice(in)
	if errors.Is(err, store.ErrInvalidReference) {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to create price", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to create price")
		return
	}
	c.JSON(http.StatusCreated, price)
}

// Update patches a current price.
func (h *PriceHandler) Update(c *gin.Context) {
	var patch models.MarketPricePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Debug("invalid price patch", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	price, ok := h.store.UpdateMarketPrice(c.Param("id"), patch)
	if !ok {
		errorJSON(c, http.StatusNotFound, "price not found")
		return
	}
	c.JSON(http.StatusOK, price)
}

// Best summarizes the best price of ?crop=, wheat by default.
func (h *PriceHandler) Best(c *gin.Context) {
	cropName := c.DefaultQuery("crop", aggregator.BenchmarkCrop)

	summary, err := h.aggregates.BestPrice(cropName)
	switch {
	case errors.Is(err, aggregator.ErrNoData):
		errorJSON(c, http.StatusNotFound, aggregator.ErrNoData.Error())
		return
	case err != nil:
		h.logger.Error("failed to summarize prices", zap.Error(err), zap.String("crop", cropName))
		errorJSON(c, http.StatusInternalServerError, "failed to summarize prices")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"crop":          summary.Crop,
		"bestPrice":     summary.BestPrice,
		"bestMarket":    summary.BestMarket,
		"averageChange": summary.AverageChange,
		"quotes":        summary.Quotes,
		"display":       aggregator.FormatRupees(models.Float(summary.BestPrice)),
	})
}

// Refresh advances every current price one step.
func (h *PriceHandler) Refresh(c *gin.Context) {
	result, err := h.refresher.Refresh(c.Request.Context())
	if err != nil {
		h.logger.Error("price refresh failed", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to refresh prices")
		return
	}
	c.JSON(http.StatusOK, result)
}

// History returns the last ?days= days of a crop's history, optionally for one ?marketId=.
func (h *PriceHandler) History(c *gin.Context) {
	crop, history, ok := h.loadHistory(c)
	if !ok {
		return
	}
	h.logger.Debug("history served", zap.String("crop", crop.Name), zap.Int("points", len(history)))
	c.JSON(http.StatusOK, history)
}

// Export streams the same history as History as an xlsx workbook.
func (h *PriceHandler) Export(c *gin.Context) {
	crop, history, ok := h.loadHistory(c)
	if !ok {
		return
	}

	marketName := func(id string) (string, bool) {
		market, ok := h.store.GetMarket(id)
		return market.Name, ok
	}

	var buf bytes.Buffer
	if err := export.WritePriceHistory(&buf, crop, history, marketName); err != nil {
		h.logger.Error("failed to export history", zap.Error(err), zap.String("crop", crop.Name))
		errorJSON(c, http.StatusInternalServerError, "failed to export history")
		return
	}

	filename := fmt.Sprintf("%s-price-history.xlsx", strings.ToLower(strings.ReplaceAll(crop.Name, " ", "-")))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *PriceHandler) loadHistory(c *gin.Context) (models.Crop, []models.PriceHistory, bool) {
	crop, ok := h.store.GetCrop(c.Param("cropId"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "crop not found")
		return models.Crop{}, nil, false
	}

	days, err := queryInt(c, "days", DefaultHistoryDays)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return models.Crop{}, nil, false
	}

	return crop, h.store.PriceHistoryDays(crop.ID, c.Query("marketId"), days), true
}

// CreateHistory appends a history point.
func (h *PriceHandler) CreateHistory(c *gin.Context) {
	var in models.NewPriceHistory
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Debug("invalid history payload", zap.Error(err))
		errorJSON(c, http.StatusBadRequest, "invalid request body")
		return
	}

	row, err := h.store.CreatePriceHistory(in)
	if errors.Is(err, store.ErrInvalidReference) {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to append history", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to append history")
		return
	}
	c.JSON(http.StatusCreated, row)
}

// Chart returns the chart series of a crop, optionally for one ?marketId=.
func (h *PriceHandler) Chart(c *gin.Context) {
	chart, err := h.aggregates.Chart(c.Param("cropId"), c.Query("marketId"))
	switch {
	case errors.Is(err, aggregator.ErrCropNotFound):
		errorJSON(c, http.StatusNotFound, "crop not found")
		return
	case err != nil:
		h.logger.Error("failed to build chart", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "failed to build chart")
		return
	}
	c.JSON(http.StatusOK, chart)
}
