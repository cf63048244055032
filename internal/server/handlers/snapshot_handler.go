package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/service/aggregator"
)

const defaultSnapshotLimit = 7

// SnapshotArchive reads archived daily snapshots.
type SnapshotArchive interface {
	RecentSnapshots(ctx context.Context, cropName string, limit int64) ([]models.DailySnapshot, error)
}

// SnapshotHandler serves the snapshot archive. A nil archive answers 503.
type SnapshotHandler struct {
	archive SnapshotArchive
	logger  *zap.Logger
}

// NewSnapshotHandler constructs the snapshot handler.
func NewSnapshotHandler(archive SnapshotArchive, logger *zap.Logger) *SnapshotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotHandler{archive: archive, logger: logger}
}

// Recent returns the latest ?limit= snapshots of ?crop=, wheat by default.
func (h *SnapshotHandler) Recent(c *gin.Context) {
	if h.archive == nil {
		errorJSON(c, http.StatusServiceUnavailable, "snapshot archive disabled")
		return
	}

	limit, err := queryInt(c, "limit", defaultSnapshotLimit)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	cropName := c.DefaultQuery("crop", aggregator.BenchmarkCrop)
	snapshots, err := h.archive.RecentSnapshots(c.Request.Context(), cropName, int64(limit))
	if err != nil {
		h.logger.Error("failed to read snapshots", zap.Error(err), zap.String("crop", cropName))
		errorJSON(c, http.StatusInternalServerError, "failed to read snapshots")
		return
	}
	c.JSON(http.StatusOK, snapshots)
}
