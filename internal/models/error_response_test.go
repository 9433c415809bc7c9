package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKindErrorStatus(t *testing.T) {
	tests := map[ErrorKind]int{
		KindForbidden:         http.StatusForbidden,
		KindUnauthorized:      http.StatusUnauthorized,
		KindInvalidPayload:    http.StatusBadRequest,
		KindIncompleteDetail:  http.StatusBadRequest,
		KindInvalidDetailKeys: http.StatusBadRequest,
		KindDetailNotFound:    http.StatusBadRequest,
		KindInvalidQuery:      http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindConflict:          http.StatusForbidden,
		KindInternal:          http.StatusInternalServerError,
		ErrorKind("unknown"):  http.StatusInternalServerError,
	}
	for kind, status := range tests {
		err := NewKindError(kind, "message")
		assert.Equal(t, status, err.StatusCode, kind)
		assert.Equal(t, "message", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", NewKindError(KindDetailNotFound, "detail was not found"))
	assert.Equal(t, KindDetailNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindNotFound, KindOf(NewErrorResponse(http.StatusNotFound, "missing")))
}
