package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/server/handlers"
	"github.com/mamadbah2/mandi/internal/service/reporting"
)

var (
	_ reporting.SnapshotSink   = (*MongoDBRepository)(nil)
	_ handlers.SnapshotArchive = (*MongoDBRepository)(nil)
)

func TestSnapshotFilterMatchesIndexedFields(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	snapshot := models.DailySnapshot{Date: day, CropName: "Wheat", BestPrice: models.Float(2950)}

	filter := snapshotFilter(snapshot)
	assert.Equal(t, bson.M{"date": day, "crop_name": "Wheat"}, filter)

	raw, err := bson.Marshal(snapshot)
	require.NoError(t, err)
	doc := bson.Raw(raw)
	for _, key := range snapshotKeys() {
		_, err := doc.LookupErr(key.Key)
		assert.NoError(t, err, "snapshot document lacks indexed field %s", key.Key)
	}
}
