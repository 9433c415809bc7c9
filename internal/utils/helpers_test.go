package utils

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	limit, offset, err := ParsePage("", "", 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 0, offset)

	limit, offset, err = ParsePage("3", "10", 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	for _, tc := range [][2]string{{"0", ""}, {"-1", ""}, {"x", ""}, {"", "0"}, {"", "101"}, {"", "ten"}} {
		_, _, err := ParsePage(tc[0], tc[1], 5, 100)
		assert.Error(t, err, tc)
	}
}

func TestParsePageRejectsOverflowingPage(t *testing.T) {
	_, _, err := ParsePage("4611686018427387904", "2", 5, 100)
	assert.Error(t, err)

	_, _, err = ParsePage("9223372036854775807", "", 5, 100)
	assert.Error(t, err)

	limit, offset, err := ParsePage("1000", "100", 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 99900, offset)
}

func TestParseOptionalInt(t *testing.T) {
	value, err := ParseOptionalInt("min_price", "")
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = ParseOptionalInt("min_price", "42")
	require.NoError(t, err)
	assert.Equal(t, 42, *value)

	_, err = ParseOptionalInt("min_price", "4.2")
	assert.EqualError(t, err, "invalid min_price parameter, must be an integer")
}

func TestPageLinks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/offers/?search=logo&page=2&page_size=5", nil)

	next, previous := PageLinks(req, 5, 5, 12)
	require.NotNil(t, next)
	require.NotNil(t, previous)
	assert.Equal(t, "/api/offers/?page=3&page_size=5&search=logo", *next)
	assert.Equal(t, "/api/offers/?page=1&page_size=5&search=logo", *previous)

	next, previous = PageLinks(req, 5, 10, 12)
	assert.Nil(t, next)
	assert.NotNil(t, previous)

	next, previous = PageLinks(req, 5, 0, 3)
	assert.Nil(t, next)
	assert.Nil(t, previous)
}

func TestHandleServiceError(t *testing.T) {
	logger := log.New(&bytes.Buffer{}, "", 0)

	rec := httptest.NewRecorder()
	HandleServiceError(rec, logger, models.NewKindError(models.KindDetailNotFound, "detail was not found"), "failed")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"reason": "detail was not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	HandleServiceError(rec, logger, errors.New("connection refused"), "failed to update offer")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"reason": "failed to update offer"}`, rec.Body.String())
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("9b2d7a3c-4f0e-4c7b-9a53-0f8a2b1d6e4c"))
	assert.False(t, IsValidID("42"))
	assert.False(t, IsValidID(""))
}
