package model

import (
	"fmt"

	apperrors "mediops/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
)

// Patient is the slice of the patient record booking needs. ID is the
// internal storage key; DisplayID is the externally visible PAT identifier
// appointment rows reference. The two are distinct on purpose: the display
// form is resolved from the record, never assumed equal to the key.
type Patient struct {
	ID        string `json:"id" bson:"_id" validate:"required"`
	DisplayID string `json:"patient_id" bson:"patient_id" validate:"required,patient_id"`
	Name      string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	IsPremium bool   `json:"is_premium" bson:"is_premium"`
}

// ParsePatientRow converts a raw stored patient document. Same degrade
// contract as appointments: identity fields are critical, the rest default.
func ParsePatientRow(row bson.M) (*Patient, error) {
	p := &Patient{}

	id, exists := row["_id"]
	if !exists {
		return nil, apperrors.InvalidData("patient record missing _id", nil)
	}
	s, ok := id.(string)
	if !ok || s == "" {
		return nil, apperrors.InvalidData(fmt.Sprintf("patient record has invalid _id: %v", id), nil)
	}
	p.ID = s

	displayID, ok := row["patient_id"].(string)
	if !ok || displayID == "" {
		return nil, apperrors.InvalidData(fmt.Sprintf("patient record %s has invalid patient_id", p.ID), nil)
	}
	p.DisplayID = displayID

	if name, ok := row["name"].(string); ok {
		p.Name = name
	}
	if premium, ok := row["is_premium"].(bool); ok {
		p.IsPremium = premium
	}

	return p, nil
}
