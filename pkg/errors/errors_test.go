package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := Internal("store write failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable through errors.Is")
	}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("status = %d", err.StatusCode())
	}
}

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("completed", "upcoming")

	if err.Code != CodeInvalidTransition {
		t.Errorf("code = %s", err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("status = %d", err.HTTPStatus)
	}
	if err.Details["from"] != "completed" || err.Details["to"] != "upcoming" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestIsCode(t *testing.T) {
	err := CapacityExceeded("premium bucket full", nil)

	if !IsCode(err, CodeCapacityExceeded) {
		t.Error("IsCode should match the error's own code")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("IsCode should not match a different code")
	}

	wrapped := fmt.Errorf("booking: %w", err)
	if !IsCode(wrapped, CodeCapacityExceeded) {
		t.Error("IsCode should see through fmt.Errorf wrapping")
	}
	if IsCode(errors.New("plain"), CodeCapacityExceeded) {
		t.Error("plain errors carry no code")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFoundWithID("Patient", "PAT00042")
	if got := AsAppError(appErr); got != appErr {
		t.Error("AsAppError should return the original AppError")
	}

	got := AsAppError(errors.New("boom"))
	if got.Code != CodeInternal {
		t.Errorf("non-app errors should map to internal, got %s", got.Code)
	}
}
