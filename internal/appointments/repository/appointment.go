package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmenterrors "mediops/internal/appointments/errors"
	"mediops/pkg/config"
	mongotx "mediops/pkg/db/mongo"
	"mediops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"
)

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AppointmentRepository interface {
	Insert(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindRawByPatient(ctx context.Context, patientID string) ([]bson.M, error)
	UpdateStatus(ctx context.Context, id string, from, to model.AppointmentStatus) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Insert stores the appointment with its token as _id. The primary key
// constraint is what makes the token unique; callers regenerate the token
// and retry on ErrDuplicateID.
func (r *mongoAppointmentRepository) Insert(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", appointmenterrors.ErrDuplicateID, appt.ID)
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// FindByID reads the stored document raw and converts it through the row
// parser, so a corrupt record surfaces as INVALID_DATA instead of a decode
// panic or silent zero values.
func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var row bson.M
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return model.ParseAppointmentRow(row)
}

// FindRawByPatient returns the patient's appointment documents unparsed,
// sorted by date then slot. The service converts them row by row so one
// bad record never fails the whole list.
func (r *mongoAppointmentRepository) FindRawByPatient(ctx context.Context, patientID string) ([]bson.M, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "slot_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"patient_id": patientID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return rows, nil
}

// UpdateStatus performs the transition as a conditional write: the filter
// pins the status the caller saw, so a concurrent transition makes this
// match nothing instead of clobbering it.
func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, from, to model.AppointmentStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": from,
	}
	update := bson.M{
		"$set": bson.M{"status": to},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrStatusConflict, id)
	}

	return nil
}

func (r *mongoAppointmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
