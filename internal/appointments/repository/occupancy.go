package repository

import (
	"context"
	"errors"
	"fmt"

	appointmenterrors "mediops/internal/appointments/errors"
	"mediops/pkg/config"
	"mediops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OccupancyCollectionName = "SlotOccupancy"
)

// OccupancyRepository maintains the per-bucket booking counters. Reserve is
// the only admission path, so Count can never pass Capacity.
type OccupancyRepository interface {
	Reserve(ctx context.Context, key string, capacity int) error
	Release(ctx context.Context, key string) error
}

type mongoOccupancyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOccupancyRepository(cfg *config.Config) OccupancyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOccupancyRepository{
		cfg:        cfg,
		collection: db.Collection(OccupancyCollectionName),
	}
}

// Reserve takes one seat in the bucket with a filtered upsert: the filter
// only matches a counter still below capacity, and the upsert path creates
// the counter at one. A full bucket fails the filter, making the upsert
// collide on _id, which Mongo reports as a duplicate key. That collision is
// also what two racing first inserts produce, so the loser re-reads the
// counter to tell a genuinely full bucket from a lost race worth retrying.
func (r *mongoOccupancyRepository) Reserve(ctx context.Context, key string, capacity int) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	for attempt := 0; attempt < r.cfg.CapacityRetryAttempts; attempt++ {
		filter := bson.M{
			"_id":   key,
			"count": bson.M{"$lt": capacity},
		}
		update := bson.M{
			"$inc":         bson.M{"count": 1},
			"$setOnInsert": bson.M{"capacity": capacity},
		}

		_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to reserve slot capacity: %w", err)
		}

		full, readErr := r.isFull(ctx, key, capacity)
		if readErr != nil {
			return readErr
		}
		if full {
			return fmt.Errorf("%w: %s", appointmenterrors.ErrCapacityFull, key)
		}
	}

	// Every attempt lost its upsert race while the bucket still had room.
	// That is contention, not a full bucket.
	return fmt.Errorf("%w: %s", appointmenterrors.ErrReserveContention, key)
}

func (r *mongoOccupancyRepository) isFull(ctx context.Context, key string, capacity int) (bool, error) {
	var occ model.SlotOccupancy
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&occ)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Counter vanished between the write and the read; retry.
			return false, nil
		}
		return false, fmt.Errorf("failed to read slot occupancy: %w", err)
	}
	return occ.Count >= capacity, nil
}

// Release gives a seat back. The count guard keeps the counter from going
// negative when a compensation races a concurrent release.
func (r *mongoOccupancyRepository) Release(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":   key,
		"count": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"count": -1},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release slot capacity: %w", err)
	}
	return nil
}
