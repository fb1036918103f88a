package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleserrors "mediops/internal/schedules/errors"
	"mediops/pkg/config"
	mongotx "mediops/pkg/db/mongo"
	"mediops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "DoctorSchedules"
)

type mongoScheduleRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ScheduleRepository interface {
	Upsert(ctx context.Context, ws *model.WeeklySchedule) error
	FindByDoctorHospital(ctx context.Context, doctorID, hospitalID string) (*model.WeeklySchedule, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoScheduleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Upsert replaces the whole week for one (doctor, hospital) pair, inserting
// when no document exists. No partial-day patching.
func (r *mongoScheduleRepository) Upsert(ctx context.Context, ws *model.WeeklySchedule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id":   ws.DoctorID,
		"hospital_id": ws.HospitalID,
	}
	replacement := bson.M{
		"doctor_id":            ws.DoctorID,
		"hospital_id":          ws.HospitalID,
		"weekly_schedule":      ws.Week,
		"max_normal_patients":  ws.MaxNormalPatients,
		"max_premium_patients": ws.MaxPremiumPatients,
	}
	if ws.EffectiveFrom != "" {
		replacement["effective_from"] = ws.EffectiveFrom
	}
	if ws.EffectiveUntil != "" {
		replacement["effective_until"] = ws.EffectiveUntil
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, replacement, opts); err != nil {
		return fmt.Errorf("failed to upsert weekly schedule: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepository) FindByDoctorHospital(ctx context.Context, doctorID, hospitalID string) (*model.WeeklySchedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id":   doctorID,
		"hospital_id": hospitalID,
	}

	var ws model.WeeklySchedule
	err := r.collection.FindOne(ctx, filter).Decode(&ws)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s/%s", scheduleserrors.ErrNotFound, doctorID, hospitalID)
		}
		return nil, fmt.Errorf("failed to find weekly schedule: %w", err)
	}

	return &ws, nil
}

func (r *mongoScheduleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
