package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError("op", nil))
	assert.ErrorIs(t, wrapError("select", pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, wrapError("insert", &pgconn.PgError{Code: "23505"}), ErrConflict)

	boom := errors.New("boom")
	err := wrapError("insert", boom)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "insert: boom")
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%logo%", likePattern("logo"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestUniqueTitles(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, uniqueTitles([]string{"A", "B", "A"}))
	assert.Empty(t, uniqueTitles(nil))
}

func TestReviewOrderingAllowed(t *testing.T) {
	assert.True(t, ReviewOrderingAllowed("-rating"))
	assert.False(t, ReviewOrderingAllowed("title"))
}
