package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
)

const snapshotCollection = "daily_snapshots"

// MongoDBRepository keeps one document per (date, crop) in daily_snapshots.
type MongoDBRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoDBRepository connects, pings and makes sure the snapshot index exists.
func NewMongoDBRepository(ctx context.Context, uri, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:     client,
		collection: client.Database(dbName).Collection(snapshotCollection),
		logger:     logger,
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("mongodb connected", zap.String("database", dbName), zap.String("collection", snapshotCollection))
	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    snapshotKeys(),
		Options: options.Index().SetUnique(true).SetName("date_crop"),
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}
	return nil
}

// SaveDailySnapshot upserts the snapshot of a (date, crop) pair; a rerun on
// the same day replaces the earlier document.
func (r *MongoDBRepository) SaveDailySnapshot(ctx context.Context, snapshot models.DailySnapshot) error {
	res, err := r.collection.ReplaceOne(ctx, snapshotFilter(snapshot), snapshot, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert daily snapshot: %w", err)
	}
	r.logger.Debug("snapshot saved",
		zap.Time("date", snapshot.Date),
		zap.String("crop", snapshot.CropName),
		zap.Bool("replaced", res.MatchedCount > 0))
	return nil
}

// RecentSnapshots returns up to limit snapshots of a crop, newest first.
func (r *MongoDBRepository) RecentSnapshots(ctx context.Context, cropName string, limit int64) ([]models.DailySnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)
	cur, err := r.collection.Find(ctx, bson.M{"crop_name": cropName}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.DailySnapshot, 0, limit)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func snapshotKeys() bson.D {
	return bson.D{{Key: "date", Value: 1}, {Key: "crop_name", Value: 1}}
}

func snapshotFilter(snapshot models.DailySnapshot) bson.M {
	return bson.M{"date": snapshot.Date, "crop_name": snapshot.CropName}
}
