package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrPatientNotFound = errors.New("patient not found")

	ErrDuplicateID = errors.New("appointment ID already exists")

	ErrCapacityFull = errors.New("slot capacity exhausted")

	ErrReserveContention = errors.New("slot reservation lost too many races")

	ErrStatusConflict = errors.New("appointment status changed concurrently")
)
