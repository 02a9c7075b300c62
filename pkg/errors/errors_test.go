package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrConflict, "slot taken"))

	got := FromError(wrapped)
	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "slot taken", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("disk full"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
	assert.EqualError(t, got, "internal server error: disk full")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "teacher not found")
	assert.Equal(t, "teacher not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestIs(t *testing.T) {
	assert.True(t, Is(Internal(errors.New("boom"), "failed"), ErrInternal.Code))
	assert.False(t, Is(nil, ErrInternal.Code))
	assert.False(t, Is(ErrValidation, ErrConflict.Code))
}
