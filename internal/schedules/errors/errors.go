package errors

import "errors"

var (
	ErrNotFound = errors.New("weekly schedule not found")
)
