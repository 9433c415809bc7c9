package services

import (
	"context"
	"testing"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/permissions"
	"github.com/senyabanana/marketplace-service/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycle(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	service := NewReviewService(store, store)
	business := addSubject(store, models.BusinessProfile)
	customer := addSubject(store, models.CustomerProfile)
	otherCustomer := addSubject(store, models.CustomerProfile)

	payload := []byte(`{"business_user": "` + business.Profile.ID + `", "rating": 4, "description": "Alles gut"}`)

	_, err := service.CreateReview(ctx, business, payload)
	assert.Equal(t, models.KindForbidden, models.KindOf(err))

	review, err := service.CreateReview(ctx, customer, payload)
	require.NoError(t, err)
	assert.Equal(t, customer.Profile.ID, review.ReviewerID)
	assert.Equal(t, 4, review.Rating)

	_, err = service.CreateReview(ctx, customer, payload)
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	_, err = service.UpdateReview(ctx, otherCustomer, review.ID, []byte(`{"rating": 1, "description": "x"}`))
	assert.Equal(t, models.KindForbidden, models.KindOf(err))

	updated, err := service.UpdateReview(ctx, customer, review.ID, []byte(`{"rating": 5, "description": "Noch besser"}`))
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Noch besser", updated.Description)

	fetched, err := service.GetReview(ctx, otherCustomer, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "Noch besser", fetched.Description)

	_, err = service.GetReview(ctx, permissions.Subject{}, review.ID)
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))

	reviews, err := service.ListReviews(ctx, otherCustomer, models.ReviewFilter{BusinessUserID: business.Profile.ID, Ordering: "-rating"})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, review.ID, reviews[0].ID)

	err = service.DeleteReview(ctx, otherCustomer, review.ID)
	assert.Equal(t, models.KindForbidden, models.KindOf(err))
	require.NoError(t, service.DeleteReview(ctx, customer, review.ID))

	err = service.DeleteReview(ctx, customer, review.ID)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	_, err = service.GetReview(ctx, customer, review.ID)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestCreateReviewValidation(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	service := NewReviewService(store, store)
	business := addSubject(store, models.BusinessProfile)
	customer := addSubject(store, models.CustomerProfile)

	invalid := []string{
		`{"rating": 4, "description": "x"}`,
		`{"business_user": "` + business.Profile.ID + `", "description": "x"}`,
		`{"business_user": "` + business.Profile.ID + `", "rating": 4}`,
		`{"business_user": "` + business.Profile.ID + `", "rating": 0, "description": "x"}`,
		`{"business_user": "` + business.Profile.ID + `", "rating": 6, "description": "x"}`,
	}
	for _, payload := range invalid {
		_, err := service.CreateReview(ctx, customer, []byte(payload))
		assert.Equal(t, models.KindInvalidPayload, models.KindOf(err), payload)
	}

	_, err := service.CreateReview(ctx, customer, []byte(`{"business_user": "`+customer.Profile.ID+`", "rating": 3, "description": "x"}`))
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	_, err = service.ListReviews(ctx, customer, models.ReviewFilter{Ordering: "title"})
	assert.Equal(t, models.KindInvalidQuery, models.KindOf(err))
}
