package services

import (
	"context"
	"testing"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSubject(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	service := NewProfileService(store)
	profile := store.AddProfile(models.Profile{Type: models.BusinessProfile})

	subject, err := service.ResolveSubject(ctx, profile.UserID, false)
	require.NoError(t, err)
	require.NotNil(t, subject.Profile)
	assert.Equal(t, profile.ID, subject.Profile.ID)

	subject, err = service.ResolveSubject(ctx, "unknown-user", true)
	require.NoError(t, err)
	assert.Nil(t, subject.Profile)
	assert.True(t, subject.IsStaff)

	subject, err = service.ResolveSubject(ctx, "", false)
	require.NoError(t, err)
	assert.Empty(t, subject.UserID)
}

func TestEditProfile(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	service := NewProfileService(store)
	owner := addSubject(store, models.BusinessProfile)
	other := addSubject(store, models.CustomerProfile)

	updated, err := service.EditProfile(ctx, owner, owner.Profile.ID, []byte(`{"location": "Berlin", "working_hours": "9-17"}`))
	require.NoError(t, err)
	assert.Equal(t, "Berlin", updated.Location)
	assert.Equal(t, "9-17", updated.WorkingHours)

	_, err = service.EditProfile(ctx, other, owner.Profile.ID, []byte(`{"location": "Hamburg"}`))
	assert.Equal(t, models.KindForbidden, models.KindOf(err))

	for _, payload := range []string{`{}`, `{"type": "customer"}`, `{"tel": 123}`, `[]`} {
		_, err = service.EditProfile(ctx, owner, owner.Profile.ID, []byte(payload))
		assert.Equal(t, models.KindInvalidPayload, models.KindOf(err), payload)
	}

	_, err = service.GetProfile(ctx, owner, "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	profiles, err := service.ListProfiles(ctx, owner, models.CustomerProfile)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, other.Profile.ID, profiles[0].ID)
}
