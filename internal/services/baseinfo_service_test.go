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

func TestGetBaseInfo(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	business := addSubject(store, models.BusinessProfile)
	addSubject(store, models.BusinessProfile)

	reviews := NewReviewService(store, store)
	for _, rating := range []string{"4", "5", "5"} {
		customer := addSubject(store, models.CustomerProfile)
		_, err := reviews.CreateReview(ctx, customer, []byte(`{"business_user": "`+business.Profile.ID+`", "rating": `+rating+`, "description": "ok"}`))
		require.NoError(t, err)
	}
	_, err := NewOfferService(store, false).CreateOffer(ctx, business, []byte(offerPayload))
	require.NoError(t, err)

	info, err := NewBaseInfoService(store).GetBaseInfo(ctx, permissions.Subject{})
	require.NoError(t, err)
	assert.Equal(t, models.BaseInfo{
		ReviewCount:          3,
		AverageRating:        4.7,
		BusinessProfileCount: 2,
		OfferCount:           1,
	}, *info)
}
