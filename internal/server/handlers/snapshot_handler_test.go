package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

type memoryArchive struct {
	crop  string
	limit int64
}

func (a *memoryArchive) RecentSnapshots(_ context.Context, cropName string, limit int64) ([]models.DailySnapshot, error) {
	a.crop, a.limit = cropName, limit
	return []models.DailySnapshot{{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), CropName: cropName}}, nil
}

func snapshotEngine(archive SnapshotArchive) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/snapshots", NewSnapshotHandler(archive, nil).Recent)
	return r
}

func TestRecentSnapshots(t *testing.T) {
	archive := &memoryArchive{}
	r := snapshotEngine(archive)

	rec := serve(r, http.MethodGet, "/api/snapshots?crop=Rice&limit=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rice", archive.crop)
	assert.Equal(t, int64(3), archive.limit)

	var got []models.DailySnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Rice", got[0].CropName)

	rec = serve(r, http.MethodGet, "/api/snapshots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Wheat", archive.crop)
	assert.Equal(t, int64(defaultSnapshotLimit), archive.limit)
}

func TestRecentSnapshotsWithoutArchive(t *testing.T) {
	rec := serve(snapshotEngine(nil), http.MethodGet, "/api/snapshots", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
