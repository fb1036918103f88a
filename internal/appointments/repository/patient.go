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
)

const (
	PatientCollectionName = "Patients"
)

// PatientRepository resolves the slice of the patient record booking needs.
// Patient documents are keyed by an internal storage id; the PAT display
// identifier appointment rows reference is a separate indexed field.
type PatientRepository interface {
	FindByDisplayID(ctx context.Context, displayID string) (*model.Patient, error)
}

type mongoPatientRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPatientRepository(cfg *config.Config) PatientRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPatientRepository{
		cfg:        cfg,
		collection: db.Collection(PatientCollectionName),
	}
}

func (r *mongoPatientRepository) FindByDisplayID(ctx context.Context, displayID string) (*model.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var row bson.M
	err := r.collection.FindOne(ctx, bson.M{"patient_id": displayID}).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", appointmenterrors.ErrPatientNotFound, displayID)
		}
		return nil, fmt.Errorf("failed to find patient: %w", err)
	}

	return model.ParsePatientRow(row)
}
