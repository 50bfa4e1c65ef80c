package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownOperationError(t *testing.T) {
	err := NewUnknownOperationError("render-graph")

	assert.True(t, IsUnknownOperation(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "unknown operation: render-graph", Message(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestGetAppErrorThroughWrapping(t *testing.T) {
	base := NewValidationError("node id is required")
	wrapped := fmt.Errorf("query validation failed: %w", base)

	assert.True(t, IsAppError(wrapped))
	assert.True(t, IsValidation(wrapped))
	assert.Same(t, base, GetAppError(wrapped))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
}

func TestMessageFallsBackToPlainErrors(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestOnlyInternalErrorsCarryAStack(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		wantStack bool
	}{
		{"internal", NewInternalError("no handler"), true},
		{"validation", NewValidationError("bad"), false},
		{"timeout", NewTimeoutError("critical-path"), false},
		{"unauthorized", NewUnauthorizedError(""), false},
		{"external", NewExternalError("eventbridge", errors.New("throttled")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantStack {
				assert.Contains(t, tt.err.StackTrace, "TestOnlyInternalErrorsCarryAStack")
			} else {
				assert.Empty(t, tt.err.StackTrace)
			}
		})
	}
}

func TestUnauthorizedAndExternalErrors(t *testing.T) {
	unauthorized := NewUnauthorizedError("")
	assert.Equal(t, "unauthorized", Message(unauthorized))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(unauthorized))

	external := NewExternalError("eventbridge", errors.New("throttled"))
	assert.True(t, IsType(external, ErrorTypeExternal))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(external))
	assert.ErrorContains(t, external, "caused by: throttled")
}
