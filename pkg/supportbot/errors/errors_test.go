package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeGenerationFailed, "provider failed", nil)

	assert.NotNil(t, err)
	assert.Equal(t, ErrCodeGenerationFailed, err.Code)
	assert.Equal(t, "provider failed", err.Message)
	assert.Nil(t, err.Cause)
}

func TestAppError_Error_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(ErrCodeStorageUnavailable, "append failed", cause)
	errorString := err.Error()

	assert.Contains(t, errorString, ErrCodeStorageUnavailable)
	assert.Contains(t, errorString, "append failed")
	assert.Contains(t, errorString, "connection refused")
}

func TestAppError_NilCause(t *testing.T) {
	err := New(ErrCodeInvalidRequest, "missing sessionId", nil)
	errorString := err.Error()

	assert.NotContains(t, errorString, "nil")
	assert.Equal(t, "INVALID_REQUEST: missing sessionId", errorString)
}

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrCodeInvalidRequest,
		ErrCodeStorageUnavailable,
		ErrCodeGenerationFailed,
		ErrCodeResponseParseFailed,
		ErrCodeConfigInvalid,
		ErrCodeRequestFailed,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code)
		assert.False(t, seen[code], "duplicate error code: %s", code)
		seen[code] = true
	}
}

func TestAppError_Is(t *testing.T) {
	cause := errors.New("specific error")
	err := New(ErrCodeStorageUnavailable, "read failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), ""},
		{"direct", New(ErrCodeGenerationFailed, "x", nil), ErrCodeGenerationFailed},
		{"wrapped", fmt.Errorf("handle chat: %w", New(ErrCodeInvalidRequest, "x", nil)), ErrCodeInvalidRequest},
		{"outermost wins", New(ErrCodeStorageUnavailable, "outer", New(ErrCodeInvalidRequest, "inner", nil)), ErrCodeStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", New(ErrCodeStorageUnavailable, "down", nil))

	assert.True(t, IsCode(err, ErrCodeStorageUnavailable))
	assert.False(t, IsCode(err, ErrCodeGenerationFailed))
	assert.False(t, IsCode(nil, ""))
}
